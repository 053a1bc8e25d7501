package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/findings"
)

// WeakCredentialTypeRule flags password-shaped parameters declared as plain
// text instead of an opaque credential type, and secure values constructed
// from plain-text literals.
type WeakCredentialTypeRule struct {
	credName *regexp.Regexp
}

// NewWeakCredentialTypeRule creates the rule.
func NewWeakCredentialTypeRule() *WeakCredentialTypeRule {
	return &WeakCredentialTypeRule{
		credName: regexp.MustCompile(`(?i)(password|passphrase|secret|credential|pin)`),
	}
}

func (r *WeakCredentialTypeRule) ID() string { return "SG002" }

func (r *WeakCredentialTypeRule) Severity() findings.Severity { return findings.SeverityCritical }

var secureTypes = map[string]bool{
	"securestring": true,
	"pscredential": true,
	"system.security.securestring": true,
	"system.management.automation.pscredential": true,
}

func (r *WeakCredentialTypeRule) Check(u *ast.SourceUnit) []findings.Finding {
	var out []findings.Finding

	for _, param := range u.Tree.Parameters() {
		if !r.credName.MatchString(param.Value) {
			continue
		}
		typeName := strings.ToLower(param.TypeName())
		if secureTypes[typeName] {
			continue
		}
		out = append(out, findings.New(r.ID(), findings.SeverityCritical, u.Path,
			param.Span.Line, param.Span.Column,
			fmt.Sprintf("parameter $%s carries a credential but is typed as plain text", param.Value),
			"declare the parameter as [SecureString] or [PSCredential]"))
	}

	for _, cmd := range u.Tree.Commands() {
		if !strings.EqualFold(cmd.Value, "ConvertTo-SecureString") {
			continue
		}
		if !cmd.HasArgument("AsPlainText") {
			continue
		}
		if lit := firstLiteralArg(cmd); lit != nil {
			out = append(out, findings.New(r.ID(), findings.SeverityMedium, u.Path,
				lit.Span.Line, lit.Span.Column,
				"secure value constructed from a plain-text string literal",
				"convert user-supplied or vault-supplied input, not a literal"))
		}
	}

	return out
}

// firstLiteralArg finds a string literal among the command's positional and
// named argument values.
func firstLiteralArg(cmd *ast.Node) *ast.Node {
	var found *ast.Node
	ast.Walk(cmd, func(n *ast.Node) bool {
		if found != nil {
			return false
		}
		if n != cmd && (n.Kind == ast.KindStringLiteral || n.Kind == ast.KindExpandableString) {
			found = n
			return false
		}
		return true
	})
	return found
}
