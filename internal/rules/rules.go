package rules

import (
	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/findings"
)

// Rule is a pure predicate over one parsed source unit. Implementations hold
// no mutable state, so a single instance is safe to run from many workers.
type Rule interface {
	ID() string
	Severity() findings.Severity
	Check(u *ast.SourceUnit) []findings.Finding
}

// Registry holds rules in registration order, which fixes the ordering of
// findings within a file.
type Registry struct {
	rules []Rule
	ids   map[string]bool
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{ids: map[string]bool{}}
}

// Register adds a rule. A duplicate ID silently replaces nothing; the first
// registration wins.
func (r *Registry) Register(rule Rule) {
	if r.ids[rule.ID()] {
		return
	}
	r.ids[rule.ID()] = true
	r.rules = append(r.rules, rule)
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Defaults builds a registry with the baseline rules. A non-empty enabled
// list restricts the set by rule ID.
func Defaults(enabled []string) *Registry {
	reg := NewRegistry()
	allow := map[string]bool{}
	for _, id := range enabled {
		allow[id] = true
	}
	for _, rule := range []Rule{
		NewHardcodedSecretRule(),
		NewWeakCredentialTypeRule(),
		NewDynamicCodeRule(),
		NewIdentityConsistencyRule(),
	} {
		if len(allow) == 0 || allow[rule.ID()] {
			reg.Register(rule)
		}
	}
	return reg
}
