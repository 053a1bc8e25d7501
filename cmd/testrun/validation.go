package testrun

import (
	"fmt"

	"github.com/scriptguard/scriptguard/internal/orchestrator"
	"github.com/scriptguard/scriptguard/pkg/shared/config"
)

// validateTestArgs merges flags with config defaults and validates them.
func validateTestArgs(cfg *config.Config, opts *RunOptionsTest) (orchestrator.Category, string, error) {
	categoryName := opts.Type
	if categoryName == "" {
		categoryName = cfg.Tests.DefaultCategory
	}
	if categoryName == "" {
		categoryName = "all"
	}
	category, err := orchestrator.ParseCategory(categoryName)
	if err != nil {
		return "", "", err
	}

	switch opts.Format {
	case "", "console", "xml":
	default:
		return "", "", fmt.Errorf("unsupported result format: %s", opts.Format)
	}

	outPath := opts.Output
	if opts.Format == "xml" && outPath == "" {
		outPath = "test-results.xml"
	}
	return category, outPath, nil
}
