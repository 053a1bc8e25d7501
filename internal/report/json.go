package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/scriptguard/scriptguard/internal/findings"
)

// jsonDocument is the machine-readable report layout.
type jsonDocument struct {
	ScanMetadata jsonMetadata       `json:"scanMetadata"`
	Summary      findings.Summary   `json:"summary"`
	AllFindings  []findings.Finding `json:"allFindings"`
}

type jsonMetadata struct {
	ID          string    `json:"id"`
	Target      string    `json:"target"`
	ToolVersion string    `json:"toolVersion"`
	StartedAt   time.Time `json:"startedAt"`
	DurationMS  int64     `json:"durationMs"`
	Partial     bool      `json:"partial"`
}

// MarshalJSONReport renders the report as indented JSON.
func MarshalJSONReport(r *findings.ScanReport) ([]byte, error) {
	doc := jsonDocument{
		ScanMetadata: jsonMetadata{
			ID:          r.ID,
			Target:      r.Target,
			ToolVersion: r.ToolVersion,
			StartedAt:   r.StartedAt,
			DurationMS:  r.Duration.Milliseconds(),
			Partial:     r.Partial,
		},
		Summary:     r.Summary,
		AllFindings: r.Findings,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteJSONFile writes the JSON report to path.
func WriteJSONFile(r *findings.ScanReport, path string) error {
	data, err := MarshalJSONReport(r)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
