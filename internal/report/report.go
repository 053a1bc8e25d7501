package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scriptguard/scriptguard/internal/findings"
)

// Format names one exporter.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatSARIF   Format = "sarif"
	FormatAll     Format = "all"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatConsole, FormatJSON, FormatSARIF, FormatAll:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported report format: %s", s)
}

// Write fans one scan report out to the selected exporters. File-based
// exporters write into outDir; console always writes to stdout. The returned
// exit code follows the console contract regardless of format.
func Write(r *findings.ScanReport, format Format, outDir string) (int, error) {
	if format == FormatConsole || format == FormatAll {
		WriteConsole(r, os.Stdout)
	}

	if format == FormatJSON || format == FormatSARIF || format == FormatAll {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return findings.ExitInternalError, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if format == FormatJSON || format == FormatAll {
		name := fmt.Sprintf("security-report-%s.json", r.StartedAt.UTC().Format("20060102-150405"))
		if err := WriteJSONFile(r, filepath.Join(outDir, name)); err != nil {
			return findings.ExitInternalError, err
		}
	}

	if format == FormatSARIF || format == FormatAll {
		if err := WriteSARIFFile(r, filepath.Join(outDir, "security-report.sarif")); err != nil {
			return findings.ExitInternalError, err
		}
	}

	return r.ExitCode(), nil
}
