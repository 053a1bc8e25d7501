package ast

import (
	"fmt"
	"strings"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

// Parse builds the syntax tree for one script. It never fails hard: syntax
// problems are returned as ParseErrors alongside a best-effort tree, so
// rules and syntax-check suites report line-accurate diagnostics.
func Parse(path, source string) (*SourceUnit, []*sgerrors.ParseError) {
	p := &parser{path: path}
	p.lex(source)
	tree := p.parseScript()
	return &SourceUnit{Path: path, Source: source, Tree: tree}, p.errs
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokVariable
	tokString
	tokExpandString
	tokNumber
	tokFlag
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokComma
	tokEquals
	tokPipe
	tokStatic
	tokComment
	tokNewline
)

type token struct {
	kind tokKind
	text string
	line int
	col  int
}

type parser struct {
	path string
	toks []token
	pos  int
	errs []*sgerrors.ParseError
}

func (p *parser) errorf(line, col int, format string, args ...interface{}) {
	p.errs = append(p.errs, sgerrors.NewParseError(p.path, line, col, fmt.Sprintf(format, args...)))
}

// lex tokenizes the whole source. Newlines are emitted as statement
// separators unless a paren group is open; strings must close on their line.
func (p *parser) lex(source string) {
	parenDepth := 0
	lines := strings.Split(source, "\n")
	for ln, line := range lines {
		lineNo := ln + 1
		i := 0
		for i < len(line) {
			c := line[i]
			col := i + 1
			switch {
			case c == ' ' || c == '\t' || c == '\r':
				i++
			case c == '#':
				// Comment to end of line.
				p.toks = append(p.toks, token{tokComment, strings.TrimSpace(line[i+1:]), lineNo, col})
				i = len(line)
			case c == '\'' || c == '"':
				text, next, ok := lexString(line, i)
				if !ok {
					p.errorf(lineNo, col, "unterminated string literal")
				}
				kind := tokString
				if c == '"' {
					kind = tokExpandString
				}
				p.toks = append(p.toks, token{kind, text, lineNo, col})
				i = next
			case c == '$':
				j := i + 1
				for j < len(line) && isVarChar(line[j]) {
					j++
				}
				p.toks = append(p.toks, token{tokVariable, line[i+1 : j], lineNo, col})
				i = j
			case c == '-' && i+1 < len(line) && isAlpha(line[i+1]):
				j := i + 1
				for j < len(line) && isIdentChar(line[j]) {
					j++
				}
				p.toks = append(p.toks, token{tokFlag, line[i+1 : j], lineNo, col})
				i = j
			case c >= '0' && c <= '9':
				j := i
				for j < len(line) && (line[j] >= '0' && line[j] <= '9' || line[j] == '.') {
					j++
				}
				p.toks = append(p.toks, token{tokNumber, line[i:j], lineNo, col})
				i = j
			case isAlpha(c):
				j := i
				for j < len(line) && isIdentChar(line[j]) {
					j++
				}
				p.toks = append(p.toks, token{tokIdent, line[i:j], lineNo, col})
				i = j
			case c == ':' && i+1 < len(line) && line[i+1] == ':':
				p.toks = append(p.toks, token{tokStatic, "::", lineNo, col})
				i += 2
			default:
				kind, ok := opKind(c)
				if ok {
					if kind == tokLParen {
						parenDepth++
					}
					if kind == tokRParen && parenDepth > 0 {
						parenDepth--
					}
					if kind == tokNewline { // ';' separates statements
						p.toks = append(p.toks, token{tokNewline, ";", lineNo, col})
					} else {
						p.toks = append(p.toks, token{kind, string(c), lineNo, col})
					}
				}
				i++
			}
		}
		if parenDepth == 0 {
			p.toks = append(p.toks, token{tokNewline, "\n", lineNo, len(line) + 1})
		}
	}
	if parenDepth > 0 {
		p.errorf(len(lines), 1, "unbalanced parentheses at end of file")
	}
}

func lexString(line string, start int) (text string, next int, ok bool) {
	quote := line[start]
	var b strings.Builder
	i := start + 1
	for i < len(line) {
		c := line[i]
		if c == '`' && quote == '"' && i+1 < len(line) {
			b.WriteByte(line[i+1])
			i += 2
			continue
		}
		if c == quote {
			if quote == '\'' && i+1 < len(line) && line[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			return b.String(), i + 1, true
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), len(line), false
}

func opKind(c byte) (tokKind, bool) {
	switch c {
	case '(':
		return tokLParen, true
	case ')':
		return tokRParen, true
	case '[':
		return tokLBracket, true
	case ']':
		return tokRBracket, true
	case '{':
		return tokLBrace, true
	case '}':
		return tokRBrace, true
	case ',':
		return tokComma, true
	case '=':
		return tokEquals, true
	case '|':
		return tokPipe, true
	case ';':
		return tokNewline, true
	}
	return 0, false
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentChar(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9' || c == '-' || c == '.' || c == '\\' || c == '/'
}

func isVarChar(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9' || c == ':'
}

func (p *parser) peek() token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token{kind: tokNewline, line: -1}
}

func (p *parser) next() token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) skipNewlines() {
	for !p.atEnd() && p.peek().kind == tokNewline {
		p.pos++
	}
}

func (p *parser) parseScript() *Node {
	script := &Node{Kind: KindScript, Span: Span{Line: 1, Column: 1}}
	for {
		p.skipNewlines()
		if p.atEnd() {
			break
		}
		if stmt := p.parseStatement(); stmt != nil {
			script.Children = append(script.Children, stmt)
		}
	}
	if len(p.toks) > 0 {
		last := p.toks[len(p.toks)-1]
		script.Span.EndLine = last.line
		script.Span.EndColumn = last.col
	}
	return script
}

func (p *parser) parseStatement() *Node {
	t := p.peek()
	switch {
	case t.kind == tokComment:
		p.next()
		return &Node{Kind: KindComment, Value: t.text, Span: spanOf(t)}
	case t.kind == tokIdent && strings.EqualFold(t.text, "param"):
		return p.parseParamBlock()
	case t.kind == tokVariable:
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tokEquals {
			return p.parseAssignment()
		}
		return p.parsePipeline()
	case t.kind == tokIdent || t.kind == tokLBracket || t.kind == tokLParen ||
		t.kind == tokString || t.kind == tokExpandString || t.kind == tokNumber:
		return p.parsePipeline()
	default:
		// Stray token: consume to the end of the statement.
		n := &Node{Kind: KindUnknown, Value: t.text, Span: spanOf(t)}
		for !p.atEnd() && p.peek().kind != tokNewline {
			p.next()
		}
		return n
	}
}

// parseParamBlock handles `param( [Attr()] [type] $Name = default, ... )`.
func (p *parser) parseParamBlock() *Node {
	kw := p.next() // 'param'
	block := &Node{Kind: KindParamBlock, Span: spanOf(kw)}
	if p.peek().kind != tokLParen {
		p.errorf(kw.line, kw.col, "param keyword without parameter list")
		return block
	}
	p.next() // '('
	var current *Node
	flush := func() {
		if current != nil {
			block.Children = append(block.Children, current)
			current = nil
		}
	}
	for !p.atEnd() {
		t := p.peek()
		switch t.kind {
		case tokRParen:
			p.next()
			flush()
			return block
		case tokComma, tokNewline:
			p.next()
			if t.kind == tokComma {
				flush()
			}
		case tokLBracket:
			decor := p.parseBracketGroup()
			if current == nil {
				current = &Node{Kind: KindParameter, Span: spanOf(t)}
			}
			if decor != nil {
				current.Children = append(current.Children, decor)
			}
		case tokVariable:
			p.next()
			if current == nil {
				current = &Node{Kind: KindParameter, Span: spanOf(t)}
			}
			current.Value = t.text
			if p.peek().kind == tokEquals {
				p.next()
				if def := p.parseValue(); def != nil {
					current.Children = append(current.Children, def)
				}
			}
		default:
			p.next() // tolerate and skip
		}
	}
	p.errorf(kw.line, kw.col, "unterminated param block")
	flush()
	return block
}

// parseBracketGroup distinguishes `[TypeName]` from `[Attribute(...)]`.
func (p *parser) parseBracketGroup() *Node {
	open := p.next() // '['
	var name string
	if p.peek().kind == tokIdent {
		name = p.next().text
	}
	if p.peek().kind == tokLParen {
		attr := &Node{Kind: KindAttribute, Value: name, Span: spanOf(open)}
		depth := 0
		for !p.atEnd() {
			t := p.next()
			if t.kind == tokLParen {
				depth++
			}
			if t.kind == tokRParen {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		if p.peek().kind == tokRBracket {
			p.next()
		}
		return attr
	}
	for !p.atEnd() && p.peek().kind != tokRBracket && p.peek().kind != tokNewline {
		p.next()
	}
	if p.peek().kind == tokRBracket {
		p.next()
	}
	if name == "" {
		return nil
	}
	return &Node{Kind: KindTypeName, Value: name, Span: spanOf(open)}
}

func (p *parser) parseAssignment() *Node {
	v := p.next() // variable
	p.next()      // '='
	assign := &Node{Kind: KindAssignment, Value: v.text, Span: spanOf(v)}
	assign.Children = append(assign.Children,
		&Node{Kind: KindVariable, Value: v.text, Span: spanOf(v)})
	if rhs := p.parsePipeline(); rhs != nil {
		assign.Children = append(assign.Children, rhs)
	}
	return assign
}

// parsePipeline parses one statement's expression: pipe-separated command
// segments, or a bare value.
func (p *parser) parsePipeline() *Node {
	first := p.parseSegment()
	if first == nil {
		return nil
	}
	if p.peek().kind != tokPipe {
		return first
	}
	pipe := &Node{Kind: KindPipeline, Span: first.Span, Children: []*Node{first}}
	for p.peek().kind == tokPipe {
		p.next()
		if seg := p.parseSegment(); seg != nil {
			pipe.Children = append(pipe.Children, seg)
		}
	}
	return pipe
}

func (p *parser) parseSegment() *Node {
	t := p.peek()
	switch t.kind {
	case tokIdent:
		return p.parseCommand()
	case tokLBracket:
		return p.parseMemberCall()
	case tokString, tokExpandString, tokNumber, tokVariable, tokLParen:
		return p.parseValue()
	default:
		return nil
	}
}

// parseCommand parses `Verb-Noun -Named value positional ...` up to a
// pipe or statement boundary.
func (p *parser) parseCommand() *Node {
	name := p.next()
	cmd := &Node{Kind: KindCommand, Value: name.text, Span: spanOf(name)}
	for !p.atEnd() {
		t := p.peek()
		switch t.kind {
		case tokNewline, tokPipe, tokRParen, tokRBrace, tokComma, tokComment:
			return cmd
		case tokFlag:
			p.next()
			arg := &Node{Kind: KindNamedArgument, Value: t.text, Span: spanOf(t)}
			if v := p.peekValueStart(); v {
				if val := p.parseValue(); val != nil {
					arg.Children = append(arg.Children, val)
				}
			}
			cmd.Children = append(cmd.Children, arg)
		default:
			val := p.parseValue()
			if val == nil {
				p.next()
				continue
			}
			cmd.Children = append(cmd.Children,
				&Node{Kind: KindArgument, Span: val.Span, Children: []*Node{val}})
		}
	}
	return cmd
}

func (p *parser) peekValueStart() bool {
	switch p.peek().kind {
	case tokString, tokExpandString, tokNumber, tokVariable, tokLParen, tokLBracket, tokIdent, tokLBrace:
		return true
	}
	return false
}

// parseMemberCall parses `[TypeName]::Member(args)`.
func (p *parser) parseMemberCall() *Node {
	open := p.peek()
	group := p.parseBracketGroup()
	if group == nil {
		return nil
	}
	if p.peek().kind != tokStatic {
		return group
	}
	p.next() // '::'
	var member string
	if p.peek().kind == tokIdent {
		member = p.next().text
	}
	call := &Node{Kind: KindMemberCall, Value: group.Value + "::" + member, Span: spanOf(open)}
	if p.peek().kind == tokLParen {
		p.next()
		for !p.atEnd() && p.peek().kind != tokRParen {
			if p.peek().kind == tokComma || p.peek().kind == tokNewline {
				p.next()
				continue
			}
			if val := p.parseValue(); val != nil {
				call.Children = append(call.Children,
					&Node{Kind: KindArgument, Span: val.Span, Children: []*Node{val}})
			} else {
				p.next()
			}
		}
		if p.peek().kind == tokRParen {
			p.next()
		}
	}
	return call
}

// parseValue parses one literal, variable, member call, brace block, or
// parenthesized subexpression.
func (p *parser) parseValue() *Node {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		return &Node{Kind: KindStringLiteral, Value: t.text, Span: spanOf(t)}
	case tokExpandString:
		p.next()
		return &Node{Kind: KindExpandableString, Value: t.text, Span: spanOf(t)}
	case tokNumber:
		p.next()
		return &Node{Kind: KindNumber, Value: t.text, Span: spanOf(t)}
	case tokVariable:
		p.next()
		return &Node{Kind: KindVariable, Value: t.text, Span: spanOf(t)}
	case tokIdent:
		p.next()
		return &Node{Kind: KindArgument, Value: t.text, Span: spanOf(t)}
	case tokLBracket:
		return p.parseMemberCall()
	case tokLBrace:
		p.next()
		block := &Node{Kind: KindUnknown, Value: "block", Span: spanOf(t)}
		for !p.atEnd() && p.peek().kind != tokRBrace {
			p.skipNewlines()
			if p.peek().kind == tokRBrace || p.atEnd() {
				break
			}
			if stmt := p.parseStatement(); stmt != nil {
				block.Children = append(block.Children, stmt)
			}
		}
		if p.peek().kind == tokRBrace {
			p.next()
		}
		return block
	case tokLParen:
		p.next()
		group := &Node{Kind: KindUnknown, Value: "group", Span: spanOf(t)}
		for !p.atEnd() && p.peek().kind != tokRParen {
			switch p.peek().kind {
			case tokNewline, tokComma, tokEquals:
				p.next()
			case tokFlag:
				ft := p.next()
				group.Children = append(group.Children,
					&Node{Kind: KindNamedArgument, Value: ft.text, Span: spanOf(ft)})
			default:
				if seg := p.parseSegment(); seg != nil {
					group.Children = append(group.Children, seg)
				} else {
					p.next()
				}
			}
		}
		if p.peek().kind == tokRParen {
			p.next()
		}
		if len(group.Children) == 1 {
			return group.Children[0]
		}
		return group
	}
	return nil
}

func spanOf(t token) Span {
	return Span{Line: t.line, Column: t.col, EndLine: t.line, EndColumn: t.col + len(t.text)}
}
