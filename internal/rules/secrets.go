package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/findings"
)

// HardcodedSecretRule flags secret-shaped string literals: password
// assignments, API-key-like tokens, credentials embedded in URLs, and
// connection strings carrying passwords. Identity references (SIDs,
// distinguished names, well-known template names) are whitelisted.
type HardcodedSecretRule struct {
	secretName *regexp.Regexp
	urlCreds   *regexp.Regexp
	connString *regexp.Regexp
	tokenShape *regexp.Regexp
}

// NewHardcodedSecretRule creates the rule.
func NewHardcodedSecretRule() *HardcodedSecretRule {
	return &HardcodedSecretRule{
		secretName: regexp.MustCompile(`(?i)(password|passwd|pwd|secret|apikey|api_key|accesskey|token|credential)`),
		urlCreds:   regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://[^/@:]+:[^/@]+@`),
		connString: regexp.MustCompile(`(?i)(password|pwd)\s*=\s*[^;"']+`),
		tokenShape: regexp.MustCompile(`^[A-Za-z0-9+/_=-]{32,}$`),
	}
}

func (r *HardcodedSecretRule) ID() string { return "SG001" }

func (r *HardcodedSecretRule) Severity() findings.Severity { return findings.SeverityCritical }

func (r *HardcodedSecretRule) Check(u *ast.SourceUnit) []findings.Finding {
	var out []findings.Finding

	ast.Walk(u.Tree, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindAssignment:
			if r.secretName.MatchString(n.Value) {
				if lit := directLiteral(n); lit != nil && lit.Value != "" && !IsIdentityReference(lit.Value) {
					out = append(out, findings.New(r.ID(), r.Severity(), u.Path,
						lit.Span.Line, lit.Span.Column,
						fmt.Sprintf("variable $%s is assigned a hardcoded secret value", n.Value),
						"read the value from a secret store or prompt for a secure credential at runtime"))
					return false
				}
			}
		case ast.KindNamedArgument:
			if r.secretName.MatchString(n.Value) {
				if lit := directLiteral(n); lit != nil && lit.Value != "" && !IsIdentityReference(lit.Value) {
					out = append(out, findings.New(r.ID(), r.Severity(), u.Path,
						lit.Span.Line, lit.Span.Column,
						fmt.Sprintf("argument -%s receives a hardcoded secret value", n.Value),
						"pass a credential object instead of a plain-text literal"))
					return false
				}
			}
		case ast.KindStringLiteral, ast.KindExpandableString:
			if f, ok := r.checkLiteral(u.Path, n); ok {
				out = append(out, f)
			}
		}
		return true
	})

	return out
}

// checkLiteral inspects a free-standing string literal for secret shapes.
func (r *HardcodedSecretRule) checkLiteral(path string, n *ast.Node) (findings.Finding, bool) {
	v := strings.TrimSpace(n.Value)
	if v == "" || IsIdentityReference(v) {
		return findings.Finding{}, false
	}

	switch {
	case r.urlCreds.MatchString(v):
		return findings.New(r.ID(), r.Severity(), path, n.Span.Line, n.Span.Column,
			"URL embeds credentials in the authority component",
			"move credentials out of the URL and into a secure credential parameter"), true
	case strings.Contains(v, ";") && r.connString.MatchString(v):
		return findings.New(r.ID(), r.Severity(), path, n.Span.Line, n.Span.Column,
			"connection string contains an inline password",
			"use integrated authentication or inject the password from a secret store"), true
	case r.tokenShape.MatchString(v) && hasMixedClasses(v):
		return findings.New(r.ID(), r.Severity(), path, n.Span.Line, n.Span.Column,
			"string literal looks like an API key or access token",
			"load tokens from the environment or a secret store, never from source"), true
	}
	return findings.Finding{}, false
}

// directLiteral returns the string literal directly under n, if any.
func directLiteral(n *ast.Node) *ast.Node {
	for _, c := range n.Children {
		if c.Kind == ast.KindStringLiteral || c.Kind == ast.KindExpandableString {
			return c
		}
	}
	return nil
}

// hasMixedClasses requires both letters and digits, cutting down on
// false positives from long bareword paths and base-like names.
func hasMixedClasses(s string) bool {
	var hasLetter, hasDigit bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}
