package scan

import (
	"fmt"
	"os"
	"time"

	"github.com/scriptguard/scriptguard/internal/findings"
	"github.com/scriptguard/scriptguard/internal/report"
	"github.com/scriptguard/scriptguard/pkg/shared/config"
)

// scanSettings is the validated, config-merged view of the flags.
type scanSettings struct {
	Format      report.Format
	MinSeverity findings.Severity
	OutputDir   string
	Threads     int
	Timeout     time.Duration
}

// validateScanArgs merges flags with config defaults and validates them.
func validateScanArgs(cfg *config.Config, opts *RunOptionsScan, args []string) (*scanSettings, string, error) {
	if len(args) > 1 {
		return nil, "", fmt.Errorf("scan accepts at most one target path, got %d", len(args))
	}
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	if _, err := os.Stat(target); err != nil {
		return nil, "", fmt.Errorf("invalid scan target: %w", err)
	}

	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return nil, "", err
	}

	severityName := opts.Severity
	if severityName == "" {
		severityName = cfg.Scanner.MinSeverity
	}
	if severityName == "" {
		severityName = "medium"
	}
	minSeverity, err := findings.ParseSeverity(severityName)
	if err != nil {
		return nil, "", err
	}

	settings := &scanSettings{
		Format:      format,
		MinSeverity: minSeverity,
		OutputDir:   opts.OutputDir,
		Threads:     opts.Threads,
		Timeout:     opts.Timeout,
	}
	if settings.OutputDir == "" {
		settings.OutputDir = cfg.Reports.OutputDir
	}
	if settings.Threads <= 0 {
		settings.Threads = cfg.Scanner.Threads
	}
	if settings.Threads <= 0 {
		settings.Threads = 1
	}
	if settings.Timeout <= 0 {
		settings.Timeout = cfg.Scanner.Timeout
	}
	return settings, target, nil
}
