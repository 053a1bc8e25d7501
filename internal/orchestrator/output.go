package orchestrator

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	passMark = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
	skipMark = color.New(color.FgYellow).SprintFunc()
)

// WriteConsole renders a run summary for humans.
func WriteConsole(s *Summary, w io.Writer) {
	var lastSuite string
	for _, res := range s.Results {
		if res.Suite != lastSuite {
			fmt.Fprintf(w, "%s (%s)\n", res.Suite, res.Category)
			lastSuite = res.Suite
		}
		switch res.Status {
		case StatusPassed:
			fmt.Fprintf(w, "  %s %s (%.3fs)\n", passMark("PASS"), res.Case, res.Duration.Seconds())
		case StatusFailed:
			fmt.Fprintf(w, "  %s %s: %s\n", failMark("FAIL"), res.Case, res.Message)
		case StatusSkipped:
			fmt.Fprintf(w, "  %s %s: %s\n", skipMark("SKIP"), res.Case, res.Message)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped in %.2fs\n",
		s.Passed, s.Failed, s.Skipped, s.Duration.Seconds())
}

// JUnit-style XML document, one testsuite per registered suite.
type xmlTestSuites struct {
	XMLName  xml.Name       `xml:"testsuites"`
	Tests    int            `xml:"tests,attr"`
	Failures int            `xml:"failures,attr"`
	Skipped  int            `xml:"skipped,attr"`
	Time     float64        `xml:"time,attr"`
	Suites   []xmlTestSuite `xml:"testsuite"`
}

type xmlTestSuite struct {
	Name     string        `xml:"name,attr"`
	Tests    int           `xml:"tests,attr"`
	Failures int           `xml:"failures,attr"`
	Cases    []xmlTestCase `xml:"testcase"`
}

type xmlTestCase struct {
	Name    string      `xml:"name,attr"`
	Time    float64     `xml:"time,attr"`
	Failure *xmlMessage `xml:"failure,omitempty"`
	Skipped *xmlMessage `xml:"skipped,omitempty"`
}

type xmlMessage struct {
	Message string `xml:"message,attr"`
}

// MarshalXML renders the summary as JUnit-style XML.
func MarshalXML(s *Summary) ([]byte, error) {
	doc := xmlTestSuites{
		Tests:    len(s.Results),
		Failures: s.Failed,
		Skipped:  s.Skipped,
		Time:     s.Duration.Seconds(),
	}

	index := map[string]int{}
	for _, res := range s.Results {
		i, ok := index[res.Suite]
		if !ok {
			i = len(doc.Suites)
			index[res.Suite] = i
			doc.Suites = append(doc.Suites, xmlTestSuite{Name: res.Suite})
		}
		tc := xmlTestCase{Name: res.Case, Time: res.Duration.Seconds()}
		switch res.Status {
		case StatusFailed:
			tc.Failure = &xmlMessage{Message: res.Message}
			doc.Suites[i].Failures++
		case StatusSkipped:
			tc.Skipped = &xmlMessage{Message: res.Message}
		}
		doc.Suites[i].Tests++
		doc.Suites[i].Cases = append(doc.Suites[i].Cases, tc)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// WriteXMLFile writes the JUnit-style report to path.
func WriteXMLFile(s *Summary, path string) error {
	data, err := MarshalXML(s)
	if err != nil {
		return fmt.Errorf("failed to marshal XML report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write XML report: %w", err)
	}
	return nil
}

// Coverage summarizes how many cases ran per category; the runner reports it
// when --coverage is set.
type Coverage struct {
	Syntax      int
	Unit        int
	Integration int
}

// CoverageOf counts executed (non-skipped) cases per category.
func CoverageOf(s *Summary) Coverage {
	var c Coverage
	for _, res := range s.Results {
		if res.Status == StatusSkipped {
			continue
		}
		switch res.Category {
		case CategorySyntax:
			c.Syntax++
		case CategoryUnit:
			c.Unit++
		case CategoryIntegration:
			c.Integration++
		}
	}
	return c
}
