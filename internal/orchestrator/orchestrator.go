// Package orchestrator discovers and runs test suites against the mock
// backend, isolating every case behind a full store reset.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scriptguard/scriptguard/internal/backend"
	"github.com/scriptguard/scriptguard/internal/mock"
)

// Category groups suites by what they exercise.
type Category string

const (
	CategoryAll         Category = "all"
	CategorySyntax      Category = "syntax"
	CategoryUnit        Category = "unit"
	CategoryIntegration Category = "integration"
)

// ParseCategory validates a --type flag value.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryAll, CategorySyntax, CategoryUnit, CategoryIntegration:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown test category: %s", s)
}

// Env is what a test case gets to work with: a fresh mock store, the gateway
// bound to it, and a logger.
type Env struct {
	Store   *mock.Store
	Gateway backend.Gateway
	Logger  hclog.Logger
}

// Case is one test. Run returns nil for pass; a non-empty Skip marks the
// case skipped without running it.
type Case struct {
	Name string
	Skip string
	Run  func(env *Env) error
}

// Suite is a named group of cases in one category.
type Suite struct {
	Name     string
	Category Category
	Cases    []Case
}

// CaseResult records one executed case.
type CaseResult struct {
	Suite    string
	Case     string
	Category Category
	Status   Status
	Message  string
	Duration time.Duration
}

// Status is the outcome of one case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Summary aggregates a whole run.
type Summary struct {
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	Results  []CaseResult
}

// Exit codes for the test runner CLI.
const (
	ExitAllPassed   = 0
	ExitFailures    = 1
	ExitRunnerError = 2
)

// ExitCode distinguishes test failures from runner faults; runner faults are
// reported separately by Run returning an error.
func (s *Summary) ExitCode() int {
	if s.Failed > 0 {
		return ExitFailures
	}
	return ExitAllPassed
}

// Runner executes registered suites. It owns one store per run; the store
// is fully reset before every case, so nothing leaks between tests.
type Runner struct {
	suites []Suite
	logger hclog.Logger
}

// NewRunner creates a Runner with the built-in suites registered.
func NewRunner(logger hclog.Logger) *Runner {
	r := &Runner{logger: logger}
	registerBuiltinSuites(r)
	return r
}

// Register adds a suite to the run set.
func (r *Runner) Register(s Suite) {
	r.suites = append(r.suites, s)
}

// Run executes every suite in the selected category sequentially. The mock
// store is not thread-safe, and sequencing between cases is the only
// synchronization the store needs.
func (r *Runner) Run(ctx context.Context, category Category) (*Summary, error) {
	gw := backend.NewMockGateway(mock.NewStore())
	env := &Env{
		Store:   gw.Store(),
		Gateway: gw,
		Logger:  r.logger,
	}

	summary := &Summary{}
	start := time.Now()

	for _, suite := range r.suites {
		if category != CategoryAll && suite.Category != category {
			continue
		}
		for _, c := range suite.Cases {
			if err := ctx.Err(); err != nil {
				return summary, fmt.Errorf("test run aborted: %w", err)
			}
			summary.Results = append(summary.Results, r.runCase(env, suite, c))
		}
	}

	summary.Duration = time.Since(start)
	for _, res := range summary.Results {
		switch res.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
	}
	return summary, nil
}

func (r *Runner) runCase(env *Env, suite Suite, c Case) CaseResult {
	result := CaseResult{
		Suite:    suite.Name,
		Case:     c.Name,
		Category: suite.Category,
	}
	if c.Skip != "" {
		result.Status = StatusSkipped
		result.Message = c.Skip
		return result
	}

	// Hard isolation requirement: every case starts from empty state.
	env.Store.Reset()

	start := time.Now()
	err := runIsolated(c, env)
	result.Duration = time.Since(start)

	if err != nil {
		result.Status = StatusFailed
		result.Message = err.Error()
		r.logger.Error("test case failed", "suite", suite.Name, "case", c.Name, "error", err)
	} else {
		result.Status = StatusPassed
	}
	return result
}

// runIsolated converts a panicking case into a failure instead of taking
// down the whole run.
func runIsolated(c Case, env *Env) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Run(env)
}
