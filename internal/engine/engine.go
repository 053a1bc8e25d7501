package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/findings"
	"github.com/scriptguard/scriptguard/internal/rules"
	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

// RuleFaultID is the synthetic rule id reported when a rule implementation
// faults on a file.
const RuleFaultID = "rule-execution-error"

// Engine runs every registered rule over every source unit with a bounded
// worker pool. Rules are stateless, so each rule/unit pair is independent.
type Engine struct {
	registry *rules.Registry
	workers  int
	logger   hclog.Logger
}

// New creates an Engine. workers < 1 is clamped to 1.
func New(registry *rules.Registry, workers int, logger hclog.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		registry: registry,
		workers:  workers,
		logger:   logger,
	}
}

// Scan checks all units and returns the findings at or above minSeverity.
// Findings keep a deterministic order: units in input order, and within a
// unit rule-registration order then line order. When ctx expires, completed
// units are returned and partial is true.
func (e *Engine) Scan(ctx context.Context, units []*ast.SourceUnit, minSeverity findings.Severity) (results []findings.Finding, partial bool) {
	perUnit := make([][]findings.Finding, len(units))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				perUnit[idx] = e.checkUnit(units[idx], minSeverity)
			}
		}()
	}

dispatch:
	for i := range units {
		if ctx.Err() != nil {
			partial = true
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			partial = true
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for _, fs := range perUnit {
		results = append(results, fs...)
	}
	return results, partial
}

// checkUnit runs every rule against one unit, isolating rule faults.
func (e *Engine) checkUnit(u *ast.SourceUnit, minSeverity findings.Severity) []findings.Finding {
	var out []findings.Finding
	for _, rule := range e.registry.Rules() {
		fs, err := e.runRule(rule, u)
		if err != nil {
			e.logger.Error("rule execution failed", "rule", rule.ID(), "file", u.Path, "error", err)
			out = append(out, findings.New(RuleFaultID, findings.SeverityHigh,
				u.Path, 1, 1, err.Error(), ""))
			continue
		}
		sort.SliceStable(fs, func(i, j int) bool {
			if fs[i].Line != fs[j].Line {
				return fs[i].Line < fs[j].Line
			}
			return fs[i].Column < fs[j].Column
		})
		for _, f := range fs {
			if f.Severity.MeetsThreshold(minSeverity) {
				out = append(out, f)
			}
		}
	}
	return out
}

// runRule executes one rule over one unit, converting panics into a
// RuleExecutionError so a broken rule cannot abort the scan.
func (e *Engine) runRule(rule rules.Rule, u *ast.SourceUnit) (fs []findings.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = sgerrors.NewRuleExecutionError(rule.ID(), u.Path, fmt.Errorf("panic: %v", r))
			fs = nil
		}
	}()
	return rule.Check(u), nil
}
