package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptguard/scriptguard/cmd/scan"
	"github.com/scriptguard/scriptguard/cmd/testrun"
	"github.com/scriptguard/scriptguard/cmd/version"
	"github.com/scriptguard/scriptguard/internal/findings"
	"github.com/scriptguard/scriptguard/pkg/shared/config"
	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "scriptguard [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Scriptguard verifies identity-infrastructure automation scripts without touching live systems.",
		Long: `Scriptguard is a test-and-verification harness for automation scripts that
drive certificate authorities and directory services. It combines a static
security scanner with an in-memory simulation of the backend systems, so
scripts can be exercised deterministically and without live infrastructure.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults apply without one)")
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(testrun.TestCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and maps errors onto process exit codes:
// scan findings and test failures carry their own codes, configuration and
// internal faults exit with the distinct internal-error code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		var exitErr *sgerrors.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			return exitErr.Code
		}
		var cfgErr *sgerrors.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, cfgErr)
			return findings.ExitInternalError
		}
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return findings.ExitInternalError
	}
	return 0
}

func initConfig() {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(findings.ExitInternalError)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(findings.ExitInternalError)
	}

	scan.Init(AppConfig)
	testrun.Init(AppConfig)
	version.Init(AppConfig)
}
