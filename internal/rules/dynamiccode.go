package rules

import (
	"fmt"
	"strings"

	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/findings"
)

// DynamicCodeRule flags constructs that evaluate a string as code at runtime:
// expression evaluation by string, dynamically created executable blocks, and
// execution of freshly downloaded content.
type DynamicCodeRule struct{}

// NewDynamicCodeRule creates the rule.
func NewDynamicCodeRule() *DynamicCodeRule { return &DynamicCodeRule{} }

func (r *DynamicCodeRule) ID() string { return "SG003" }

func (r *DynamicCodeRule) Severity() findings.Severity { return findings.SeverityCritical }

var evalCommands = map[string]bool{
	"invoke-expression": true,
	"iex":               true,
}

var downloadCommands = map[string]bool{
	"invoke-webrequest":  true,
	"iwr":                true,
	"invoke-restmethod":  true,
	"irm":                true,
	"downloadstring":     true,
	"downloadfile":       true,
	"start-bitstransfer": true,
}

func (r *DynamicCodeRule) Check(u *ast.SourceUnit) []findings.Finding {
	var out []findings.Finding

	fedByDownload := downloadFedEvals(u.Tree)

	for _, cmd := range u.Tree.Commands() {
		name := strings.ToLower(cmd.Value)

		switch {
		case evalCommands[name]:
			msg := "expression evaluation of a runtime string"
			if fedByDownload[cmd] || containsDownload(cmd) {
				msg = "execution of freshly downloaded content"
			}
			out = append(out, findings.New(r.ID(), r.Severity(), u.Path,
				cmd.Span.Line, cmd.Span.Column,
				fmt.Sprintf("%s via %s", msg, cmd.Value),
				"replace dynamic evaluation with explicit, parameterized commands"))

		case cmd.Kind == ast.KindMemberCall && strings.EqualFold(name, "scriptblock::create"):
			out = append(out, findings.New(r.ID(), r.Severity(), u.Path,
				cmd.Span.Line, cmd.Span.Column,
				"executable block created from a string at runtime",
				"define script blocks statically instead of building them from strings"))

		case strings.EqualFold(cmd.Value, "Invoke-Command"):
			if arg := cmd.Argument("ScriptBlock"); arg != nil && isStringNode(arg) {
				out = append(out, findings.New(r.ID(), r.Severity(), u.Path,
					arg.Span.Line, arg.Span.Column,
					"Invoke-Command receives a script block built from a string",
					"pass a statically defined script block"))
			}
		}
	}

	return out
}

// downloadFedEvals marks eval segments that sit after a download segment in
// the same pipeline.
func downloadFedEvals(tree *ast.Node) map[*ast.Node]bool {
	marked := map[*ast.Node]bool{}
	ast.Walk(tree, func(n *ast.Node) bool {
		if n.Kind != ast.KindPipeline {
			return true
		}
		var downloaded bool
		for _, seg := range n.Children {
			name := strings.ToLower(seg.Value)
			if downloadCommands[name] || strings.HasSuffix(name, "::downloadstring") {
				downloaded = true
				continue
			}
			if downloaded && evalCommands[name] {
				marked[seg] = true
			}
		}
		return true
	})
	return marked
}

// containsDownload reports whether the command's argument subtree fetches
// remote content.
func containsDownload(cmd *ast.Node) bool {
	var found bool
	ast.Walk(cmd, func(n *ast.Node) bool {
		if n == cmd {
			return true
		}
		name := strings.ToLower(n.Value)
		if (n.Kind == ast.KindCommand || n.Kind == ast.KindMemberCall || n.Kind == ast.KindArgument) &&
			(downloadCommands[name] || strings.HasSuffix(name, "::downloadstring")) {
			found = true
			return false
		}
		return true
	})
	return found
}

func isStringNode(n *ast.Node) bool {
	return n.Kind == ast.KindStringLiteral || n.Kind == ast.KindExpandableString
}
