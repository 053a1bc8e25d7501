package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignmentWithStringLiteral(t *testing.T) {
	unit, parseErrs := Parse("test.ps1", `$password = "Secret1!"`)
	require.Empty(t, parseErrs)

	require.Len(t, unit.Tree.Children, 1)
	stmt := unit.Tree.Children[0]
	assert.Equal(t, KindAssignment, stmt.Kind)
	assert.Equal(t, "password", stmt.Value)

	require.Len(t, stmt.Children, 2)
	assert.Equal(t, KindVariable, stmt.Children[0].Kind)
	assert.Equal(t, KindExpandableString, stmt.Children[1].Kind)
	assert.Equal(t, "Secret1!", stmt.Children[1].Value)
	assert.Equal(t, 1, stmt.Children[1].Span.Line)
	assert.Equal(t, 13, stmt.Children[1].Span.Column)
}

func TestParseSingleQuotedStringIsNotExpandable(t *testing.T) {
	unit, parseErrs := Parse("test.ps1", `$x = 'plain $notexpanded'`)
	require.Empty(t, parseErrs)

	lits := unit.Tree.Literals()
	require.Len(t, lits, 1)
	assert.Equal(t, KindStringLiteral, lits[0].Kind)
	assert.Equal(t, "plain $notexpanded", lits[0].Value)
}

func TestParseParamBlock(t *testing.T) {
	source := `param(
    [Parameter(Mandatory=$true)]
    [string]$DomainName,
    [SecureString]$AdminPassword,
    $Untyped
)`
	unit, parseErrs := Parse("test.ps1", source)
	require.Empty(t, parseErrs)

	params := unit.Tree.Parameters()
	require.Len(t, params, 3)

	assert.Equal(t, "DomainName", params[0].Value)
	assert.Equal(t, "string", params[0].TypeName())

	assert.Equal(t, "AdminPassword", params[1].Value)
	assert.Equal(t, "SecureString", params[1].TypeName())

	assert.Equal(t, "Untyped", params[2].Value)
	assert.Equal(t, "", params[2].TypeName())

	// The attribute decoration survives on the first parameter.
	var hasAttr bool
	for _, c := range params[0].Children {
		if c.Kind == KindAttribute && c.Value == "Parameter" {
			hasAttr = true
		}
	}
	assert.True(t, hasAttr, "expected [Parameter(...)] attribute node")
}

func TestParseCommandWithNamedArguments(t *testing.T) {
	unit, parseErrs := Parse("test.ps1", `Start-Service -Name "adfssrv" -Force`)
	require.Empty(t, parseErrs)

	cmds := unit.Tree.Commands()
	require.Len(t, cmds, 1)
	cmd := cmds[0]
	assert.Equal(t, "Start-Service", cmd.Value)

	name := cmd.Argument("Name")
	require.NotNil(t, name)
	assert.Equal(t, "adfssrv", name.Value)
	assert.True(t, cmd.HasArgument("Force"))
	assert.False(t, cmd.HasArgument("WhatIf"))
}

func TestParsePipeline(t *testing.T) {
	unit, parseErrs := Parse("test.ps1", `Get-Service | Where-Object Status -eq Running | Stop-Service`)
	require.Empty(t, parseErrs)

	require.Len(t, unit.Tree.Children, 1)
	pipe := unit.Tree.Children[0]
	require.Equal(t, KindPipeline, pipe.Kind)
	require.Len(t, pipe.Children, 3)
	assert.Equal(t, "Get-Service", pipe.Children[0].Value)
	assert.Equal(t, "Stop-Service", pipe.Children[2].Value)
}

func TestParseMemberCall(t *testing.T) {
	unit, parseErrs := Parse("test.ps1", `$sb = [ScriptBlock]::Create($code)`)
	require.Empty(t, parseErrs)

	cmds := unit.Tree.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, KindMemberCall, cmds[0].Kind)
	assert.Equal(t, "ScriptBlock::Create", cmds[0].Value)
}

func TestParseUnterminatedStringReportsError(t *testing.T) {
	unit, parseErrs := Parse("bad.ps1", "$x = \"no closing quote\n$y = 1")
	require.Len(t, parseErrs, 1)
	assert.Equal(t, "bad.ps1", parseErrs[0].FilePath)
	assert.Equal(t, 1, parseErrs[0].Line)
	assert.Contains(t, parseErrs[0].Message, "unterminated")

	// The tree is still usable for the rest of the file.
	require.NotNil(t, unit.Tree)
	assert.Len(t, unit.Tree.Children, 2)
}

func TestParseComments(t *testing.T) {
	unit, parseErrs := Parse("test.ps1", "# header comment\n$x = 1 # trailing")
	require.Empty(t, parseErrs)
	require.Len(t, unit.Tree.Children, 3)

	header := unit.Tree.Children[0]
	assert.Equal(t, KindComment, header.Kind)
	assert.Equal(t, "header comment", header.Value)
	assert.Equal(t, 1, header.Span.Line)

	assert.Equal(t, KindAssignment, unit.Tree.Children[1].Kind)

	trailing := unit.Tree.Children[2]
	assert.Equal(t, KindComment, trailing.Kind)
	assert.Equal(t, "trailing", trailing.Value)
	assert.Equal(t, 2, trailing.Span.Line)
}

func TestParseCommentTerminatesCommandArguments(t *testing.T) {
	unit, parseErrs := Parse("test.ps1", `Start-Service -Name adfssrv # start the federation service`)
	require.Empty(t, parseErrs)

	cmds := unit.Tree.Commands()
	require.Len(t, cmds, 1)
	name := cmds[0].Argument("Name")
	require.NotNil(t, name)
	assert.Equal(t, "adfssrv", name.Value)

	// The comment becomes its own node, not an argument.
	var comments int
	Walk(unit.Tree, func(n *Node) bool {
		if n.Kind == KindComment {
			comments++
		}
		return true
	})
	assert.Equal(t, 1, comments)
}

func TestParseNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"", ")))", "((((", "param", "param(", "[]][", "$ = =", "| | |",
		"param([string]$a", "::::", "'''", "[x]::",
	}
	for _, src := range inputs {
		unit, _ := Parse("garbage.ps1", src)
		require.NotNil(t, unit.Tree, "input %q", src)
	}
}
