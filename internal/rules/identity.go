package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/findings"
)

// IdentityConsistencyRule flags malformed hierarchical security-identifier
// literals and scripts that accept multiple domain parameters without ever
// checking them against each other.
type IdentityConsistencyRule struct {
	sidPrefix  *regexp.Regexp
	domainName *regexp.Regexp
}

// NewIdentityConsistencyRule creates the rule.
func NewIdentityConsistencyRule() *IdentityConsistencyRule {
	return &IdentityConsistencyRule{
		sidPrefix:  regexp.MustCompile(`^S-\d`),
		domainName: regexp.MustCompile(`(?i)domain`),
	}
}

func (r *IdentityConsistencyRule) ID() string { return "SG004" }

func (r *IdentityConsistencyRule) Severity() findings.Severity { return findings.SeverityHigh }

func (r *IdentityConsistencyRule) Check(u *ast.SourceUnit) []findings.Finding {
	var out []findings.Finding

	for _, lit := range u.Tree.Literals() {
		v := strings.TrimSpace(lit.Value)
		if r.sidPrefix.MatchString(v) && !IsSecurityIdentifier(v) {
			out = append(out, findings.New(r.ID(), r.Severity(), u.Path,
				lit.Span.Line, lit.Span.Column,
				fmt.Sprintf("malformed security identifier literal %q", v),
				"security identifiers must match S-<revision>-<authority>-<subauthorities>"))
		}
	}

	out = append(out, r.checkDomainParams(u)...)
	return out
}

// checkDomainParams reports a script that declares two or more domain
// parameters but never compares them in a single statement.
func (r *IdentityConsistencyRule) checkDomainParams(u *ast.SourceUnit) []findings.Finding {
	var domainParams []*ast.Node
	for _, p := range u.Tree.Parameters() {
		if r.domainName.MatchString(p.Value) {
			domainParams = append(domainParams, p)
		}
	}
	if len(domainParams) < 2 {
		return nil
	}

	names := map[string]bool{}
	for _, p := range domainParams {
		names[strings.ToLower(p.Value)] = true
	}

	// A consistency check is any single statement outside the param block
	// that references at least two of the domain parameters.
	for _, stmt := range u.Tree.Children {
		if stmt.Kind == ast.KindParamBlock {
			continue
		}
		seen := map[string]bool{}
		ast.Walk(stmt, func(n *ast.Node) bool {
			if n.Kind == ast.KindVariable && names[strings.ToLower(n.Value)] {
				seen[strings.ToLower(n.Value)] = true
			}
			return true
		})
		if len(seen) >= 2 {
			return nil
		}
	}

	second := domainParams[1]
	return []findings.Finding{findings.New(r.ID(), r.Severity(), u.Path,
		second.Span.Line, second.Span.Column,
		fmt.Sprintf("%d domain parameters declared without a consistency check between them", len(domainParams)),
		"validate that related domain parameters agree before using them")}
}
