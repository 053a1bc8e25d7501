package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/scriptguard/scriptguard/internal/findings"
)

var (
	criticalBadge = color.New(color.FgRed, color.Bold).SprintFunc()
	highBadge     = color.New(color.FgYellow, color.Bold).SprintFunc()
	mediumBadge   = color.New(color.FgCyan).SprintFunc()
	pathStyle     = color.New(color.Underline).SprintFunc()
)

// WriteConsole renders the report grouped by severity with remediation
// hints, most severe first.
func WriteConsole(r *findings.ScanReport, w io.Writer) {
	fmt.Fprintf(w, "scriptguard %s: scan of %s\n", r.ToolVersion, r.Target)
	if r.Partial {
		fmt.Fprintln(w, "warning: scan timed out, results are partial")
	}
	fmt.Fprintln(w)

	for _, sev := range []findings.Severity{findings.SeverityCritical, findings.SeverityHigh, findings.SeverityMedium} {
		group := filterBySeverity(r.Findings, sev)
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", badge(sev), len(group))
		for _, f := range group {
			fmt.Fprintf(w, "  [%s] %s\n", f.RuleID, pathStyle(fmt.Sprintf("%s:%d:%d", f.FilePath, f.Line, f.Column)))
			fmt.Fprintf(w, "      %s\n", f.Message)
			if f.SuggestedFix != "" {
				fmt.Fprintf(w, "      fix: %s\n", f.SuggestedFix)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: critical=%d high=%d medium=%d total=%d (%.2fs)\n",
		r.Summary.Critical, r.Summary.High, r.Summary.Medium, r.Summary.Total,
		r.Duration.Seconds())
}

func badge(sev findings.Severity) string {
	switch sev {
	case findings.SeverityCritical:
		return criticalBadge("CRITICAL")
	case findings.SeverityHigh:
		return highBadge("HIGH")
	default:
		return mediumBadge("MEDIUM")
	}
}

func filterBySeverity(fs []findings.Finding, sev findings.Severity) []findings.Finding {
	var out []findings.Finding
	for _, f := range fs {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
