package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scriptguard/scriptguard/cmd/version"
	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/audit"
	"github.com/scriptguard/scriptguard/internal/engine"
	"github.com/scriptguard/scriptguard/internal/findings"
	"github.com/scriptguard/scriptguard/internal/report"
	"github.com/scriptguard/scriptguard/internal/rules"
	"github.com/scriptguard/scriptguard/pkg/shared/config"
	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
	"github.com/scriptguard/scriptguard/pkg/shared/logger"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	Format    string
	Severity  string
	OutputDir string
	Threads   int
	Timeout   time.Duration
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning the current directory with console output
  scriptguard scan

  # Scanning a script directory and writing JSON and SARIF reports
  scriptguard scan /path/to/scripts --format all --out /path/to/reports

  # Reporting only critical findings
  scriptguard scan /path/to/scripts --severity critical

  # Bounding a long scan; completed files still report
  scriptguard scan /path/to/scripts --timeout 30s -j 8`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [path] [--format/-f FORMAT] [--severity/-s LEVEL] [--out/-o DIR] [-j THREADS]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Runs the static security rules over automation scripts and exports findings",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "scan")
	auditLog := audit.NewLog(filepath.Join(AppConfig.Reports.OutputDir, "audit.log"))

	opts, target, err := validateScanArgs(AppConfig, &scanOptions, args)
	if err != nil {
		log.Error("invalid scan arguments", "error", err)
		return err
	}

	paths, err := discoverScripts(target, AppConfig)
	if err != nil {
		log.Error("failed to discover scan targets", "error", err)
		_ = auditLog.Append("scan.discover", target, err)
		return sgerrors.NewExitError(findings.ExitInternalError, err.Error())
	}
	log.Info("starting scan", "target", target, "files", len(paths), "threads", opts.Threads)

	units := make([]*ast.SourceUnit, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("failed to read script", "path", path, "error", err)
			_ = auditLog.Append("scan.read", path, err)
			continue
		}
		unit, parseErrs := ast.Parse(path, string(data))
		for _, pe := range parseErrs {
			log.Warn("syntax error", "error", pe)
		}
		units = append(units, unit)
	}

	registry := rules.Defaults(AppConfig.Scanner.EnabledRules)
	eng := engine.New(registry, opts.Threads, log.Named("engine"))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	scanReport := findings.NewReport(uuid.NewString(), target, version.CoreVersion, started)

	results, partial := eng.Scan(ctx, units, opts.MinSeverity)
	scanReport.Add(results...)
	scanReport.Partial = partial
	scanReport.Finalize(time.Since(started))

	for _, f := range scanReport.Findings {
		if f.RuleID == engine.RuleFaultID {
			_ = auditLog.Append("scan.rule-fault", f.FilePath+": "+f.Message, nil)
		}
	}

	code, err := report.Write(scanReport, opts.Format, opts.OutputDir)
	if err != nil {
		log.Error("failed to write report", "error", err)
		_ = auditLog.Append("scan.report", string(opts.Format), err)
		return sgerrors.NewExitError(findings.ExitInternalError, err.Error())
	}

	log.Info("scan completed", "critical", scanReport.Summary.Critical,
		"high", scanReport.Summary.High, "medium", scanReport.Summary.Medium,
		"partial", partial)

	if code != findings.ExitClean {
		return sgerrors.NewExitError(code, "")
	}
	return nil
}

// discoverScripts walks target and returns the script files to scan, sorted
// so the report order is reproducible.
func discoverScripts(target string, cfg *config.Config) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	var paths []string
	err = filepath.WalkDir(target, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".ps1" && ext != ".psm1" {
			return nil
		}
		if cfg.Excluded(filepath.ToSlash(path)) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", "console", "Report format: console, json, sarif, or all.")
	ScanCmd.Flags().StringVarP(&scanOptions.Severity, "severity", "s", "", "Minimum severity to report: critical, high, or medium.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputDir, "out", "o", "", "Directory for file-based reports.")
	ScanCmd.Flags().IntVarP(&scanOptions.Threads, "threads", "j", 0, "Number of concurrent workers.")
	ScanCmd.Flags().DurationVar(&scanOptions.Timeout, "timeout", 0, "Overall scan timeout; completed files still report.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
