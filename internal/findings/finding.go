package findings

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Severity classifies a finding. Higher values are more severe.
type Severity int

const (
	SeverityMedium Severity = iota + 1
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "unknown"
	}
}

// SarifLevel maps the severity onto the fixed SARIF 2.1.0 level table.
func (s Severity) SarifLevel() string {
	switch s {
	case SeverityCritical:
		return "error"
	case SeverityHigh:
		return "warning"
	default:
		return "note"
	}
}

// ParseSeverity converts a config/flag string to a Severity.
func ParseSeverity(level string) (Severity, error) {
	switch strings.ToLower(level) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	}
	return 0, fmt.Errorf("invalid severity level: %s", level)
}

// MeetsThreshold reports whether s is at least as severe as threshold.
func (s Severity) MeetsThreshold(threshold Severity) bool {
	return s >= threshold
}

// Finding is one diagnostic produced by a rule. Value type, never mutated
// after creation.
type Finding struct {
	RuleID       string   `json:"ruleId"`
	Severity     Severity `json:"-"`
	SeverityName string   `json:"severity"`
	FilePath     string   `json:"filePath"`
	Line         int      `json:"line"`
	Column       int      `json:"column"`
	Message      string   `json:"message"`
	SuggestedFix string   `json:"suggestedFix,omitempty"`
}

// New builds a Finding with the severity name pre-rendered for export.
func New(ruleID string, sev Severity, filePath string, line, column int, message, fix string) Finding {
	return Finding{
		RuleID:       ruleID,
		Severity:     sev,
		SeverityName: sev.String(),
		FilePath:     filePath,
		Line:         line,
		Column:       column,
		Message:      message,
		SuggestedFix: fix,
	}
}

// Summary holds per-severity counts for one scan.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Total    int `json:"total"`
}

// ScanReport aggregates the findings of one scan invocation. Findings are
// append-only; Finalize freezes the order and computes the summary.
type ScanReport struct {
	ID          string        `json:"id"`
	Target      string        `json:"target"`
	ToolVersion string        `json:"toolVersion"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
	Partial     bool          `json:"partial,omitempty"`
	Findings    []Finding     `json:"findings"`
	Summary     Summary       `json:"summary"`
}

// NewReport creates an empty report for one scan invocation.
func NewReport(id, target, toolVersion string, startedAt time.Time) *ScanReport {
	return &ScanReport{
		ID:          id,
		Target:      target,
		ToolVersion: toolVersion,
		StartedAt:   startedAt,
		Findings:    []Finding{},
	}
}

// Add appends findings to the report.
func (r *ScanReport) Add(fs ...Finding) {
	r.Findings = append(r.Findings, fs...)
}

// Finalize sorts findings by file path (stable, preserving the engine's
// deterministic per-file ordering) and computes the summary counts.
func (r *ScanReport) Finalize(duration time.Duration) {
	r.Duration = duration
	sort.SliceStable(r.Findings, func(i, j int) bool {
		return r.Findings[i].FilePath < r.Findings[j].FilePath
	})
	r.Summary = Summary{}
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityCritical:
			r.Summary.Critical++
		case SeverityHigh:
			r.Summary.High++
		case SeverityMedium:
			r.Summary.Medium++
		}
		r.Summary.Total++
	}
}

// Exit codes for the scanner CLI.
const (
	ExitClean         = 0
	ExitCritical      = 1
	ExitHigh          = 2
	ExitInternalError = 3
)

// ExitCode applies the build-breaking policy: any critical finding breaks the
// build, highs alone return a distinct non-zero code, mediums are advisory.
func (r *ScanReport) ExitCode() int {
	switch {
	case r.Summary.Critical > 0:
		return ExitCritical
	case r.Summary.High > 0:
		return ExitHigh
	default:
		return ExitClean
	}
}
