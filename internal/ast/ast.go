package ast

import "strings"

// NodeKind identifies the grammatical role of a node. Rules target this
// generic model; the PowerShell adapter in parser.go is the only place that
// knows the concrete dialect.
type NodeKind string

const (
	KindScript           NodeKind = "Script"
	KindParamBlock       NodeKind = "ParamBlock"
	KindParameter        NodeKind = "Parameter"
	KindAttribute        NodeKind = "Attribute"
	KindTypeName         NodeKind = "TypeName"
	KindAssignment       NodeKind = "Assignment"
	KindVariable         NodeKind = "Variable"
	KindStringLiteral    NodeKind = "StringLiteral"
	KindExpandableString NodeKind = "ExpandableString"
	KindNumber           NodeKind = "Number"
	KindCommand          NodeKind = "Command"
	KindArgument         NodeKind = "Argument"
	KindNamedArgument    NodeKind = "NamedArgument"
	KindPipeline         NodeKind = "Pipeline"
	KindMemberCall       NodeKind = "MemberCall"
	KindComment          NodeKind = "Comment"
	KindUnknown          NodeKind = "Unknown"
)

// Span is a half-open source region, 1-based.
type Span struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Node is one vertex of the generic syntax tree.
//
// Value holds the literal or name payload: the unquoted text for strings, the
// variable name without '$', the command name for invocations, the parameter
// name for parameters and named arguments.
type Node struct {
	Kind     NodeKind
	Value    string
	Span     Span
	Children []*Node
}

// SourceUnit is one script file with its parsed tree. Immutable once built.
type SourceUnit struct {
	Path   string
	Source string
	Tree   *Node
}

// Walk visits n and its descendants in preorder. Returning false from fn
// prunes the subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Literals returns every string literal node under n, in source order.
func (n *Node) Literals() []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == KindStringLiteral || c.Kind == KindExpandableString {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Commands returns every invocation node under n, in source order.
func (n *Node) Commands() []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == KindCommand || c.Kind == KindMemberCall {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Parameters returns the typed parameter declarations of every param block
// under n.
func (n *Node) Parameters() []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == KindParameter {
			out = append(out, c)
		}
		return true
	})
	return out
}

// TypeName returns the declared type of a parameter node, or "" when the
// parameter is untyped.
func (n *Node) TypeName() string {
	for _, c := range n.Children {
		if c.Kind == KindTypeName {
			return c.Value
		}
	}
	return ""
}

// Argument returns the value node of the named argument, or nil.
func (n *Node) Argument(name string) *Node {
	for _, c := range n.Children {
		if c.Kind == KindNamedArgument && strings.EqualFold(c.Value, name) {
			if len(c.Children) > 0 {
				return c.Children[0]
			}
			return c
		}
	}
	return nil
}

// HasArgument reports whether the invocation carries the named argument,
// with or without a value.
func (n *Node) HasArgument(name string) bool {
	for _, c := range n.Children {
		if c.Kind == KindNamedArgument && strings.EqualFold(c.Value, name) {
			return true
		}
	}
	return false
}
