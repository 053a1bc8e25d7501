package testrun

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptguard/scriptguard/internal/orchestrator"
	"github.com/scriptguard/scriptguard/pkg/shared/config"
	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
	"github.com/scriptguard/scriptguard/pkg/shared/logger"
)

// RunOptionsTest holds the arguments for the test command.
type RunOptionsTest struct {
	Type     string
	Format   string
	Output   string
	Coverage bool
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	testOptions      RunOptionsTest
	exampleTestUsage = `  # Running every registered suite
  scriptguard test

  # Running only the integration suites against the mock backend
  scriptguard test --type integration

  # Writing machine-readable results for CI
  scriptguard test --format xml --out results.xml`
)

// TestCmd represents the test command.
var TestCmd = &cobra.Command{
	Use:                   "test [--type CATEGORY] [--format console|xml] [--out PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleTestUsage,
	Short:                 "Runs the mock-backed test suites by category",
	RunE:                  runTestCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runTestCommand executes the test command.
func runTestCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "testrun")

	category, outPath, err := validateTestArgs(AppConfig, &testOptions)
	if err != nil {
		log.Error("invalid test arguments", "error", err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner := orchestrator.NewRunner(log.Named("runner"))
	summary, err := runner.Run(ctx, category)
	if err != nil {
		log.Error("test run aborted", "error", err)
		return sgerrors.NewExitError(orchestrator.ExitRunnerError, err.Error())
	}

	switch testOptions.Format {
	case "xml":
		if err := orchestrator.WriteXMLFile(summary, outPath); err != nil {
			log.Error("failed to write XML results", "error", err)
			return sgerrors.NewExitError(orchestrator.ExitRunnerError, err.Error())
		}
		log.Info("wrote test results", "path", outPath)
	default:
		orchestrator.WriteConsole(summary, os.Stdout)
	}

	if testOptions.Coverage {
		cov := orchestrator.CoverageOf(summary)
		fmt.Fprintf(os.Stdout, "Coverage: syntax=%d unit=%d integration=%d cases\n",
			cov.Syntax, cov.Unit, cov.Integration)
	}

	if code := summary.ExitCode(); code != orchestrator.ExitAllPassed {
		return sgerrors.NewExitError(code, "")
	}
	return nil
}

// Initialize flags for the test command.
func init() {
	TestCmd.Flags().StringVarP(&testOptions.Type, "type", "t", "", "Test category to run: all, syntax, unit, or integration.")
	TestCmd.Flags().StringVarP(&testOptions.Format, "format", "f", "console", "Result format: console or xml.")
	TestCmd.Flags().StringVarP(&testOptions.Output, "out", "o", "", "Path for the XML results file.")
	TestCmd.Flags().BoolVar(&testOptions.Coverage, "coverage", false, "Print per-category case coverage.")
	TestCmd.Flags().BoolP("help", "h", false, "Show help for the test command.")
}
