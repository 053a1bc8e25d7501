package report

import (
	"fmt"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scriptguard/scriptguard/internal/findings"
)

const toolInformationURI = "https://github.com/scriptguard/scriptguard"

// BuildSARIF converts a scan report into a SARIF 2.1.0 document with one run
// and one result per finding.
func BuildSARIF(r *findings.ScanReport) (*sarif.Report, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("scriptguard", toolInformationURI)
	run.Tool.Driver.WithVersion(r.ToolVersion)

	registered := map[string]bool{}
	for _, f := range r.Findings {
		if !registered[f.RuleID] {
			run.AddRule(f.RuleID).
				WithDescription(f.Message).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: f.Severity.SarifLevel(),
				})
			registered[f.RuleID] = true
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FilePath)).
				WithRegion(sarif.NewRegion().
					WithStartLine(f.Line).
					WithStartColumn(f.Column)),
		)

		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(f.Severity.SarifLevel()).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	doc.AddRun(run)
	return doc, nil
}

// WriteSARIFFile writes the SARIF report to path.
func WriteSARIFFile(r *findings.ScanReport, path string) error {
	doc, err := BuildSARIF(r)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open SARIF output: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := doc.PrettyWrite(file); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}
