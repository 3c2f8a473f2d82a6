package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugdoc/internal/ir"
	"plugdoc/internal/resolver"
)

func sampleCommands() []ir.CommandDescriptor {
	return []ir.CommandDescriptor{
		{Name: "PinBuffer", Description: "Pin the current buffer", Bang: true},
		{Name: "PinBuftype", Description: "Pin the buffer type"},
		{Name: "Unpin", Description: "Remove pinning", Deprecated: true},
	}
}

func TestMarkdownRenderer_Commands_NoArgs(t *testing.T) {
	lines := MarkdownRenderer{}.Commands(sampleCommands())

	require.Len(t, lines, 4, "header, separator and two data rows")
	assert.Equal(t, "| Command        | Description            |", lines[0])
	assert.Equal(t, "| `PinBuffer[!]` | Pin the current buffer |", lines[2])
	assert.NotContains(t, strings.Join(lines, "\n"), "Unpin")
	assert.NotContains(t, lines[0], "Args")
}

func TestMarkdownRenderer_Commands_ArgsColumn(t *testing.T) {
	cmds := sampleCommands()
	cmds[1].Args = "{type}"
	cmds[1].HasArgs = true

	lines := MarkdownRenderer{}.Commands(cmds)
	require.Len(t, lines, 4)
	assert.Equal(t, "| Command        | Args   | Description            |", lines[0])
	assert.Equal(t, "| `PinBuftype`   | {type} | Pin the buffer type    |", lines[3])
}

func TestMarkdownRenderer_Commands_DeprecatedArgsIgnored(t *testing.T) {
	cmds := sampleCommands()
	cmds[2].HasArgs = true

	lines := MarkdownRenderer{}.Commands(cmds)
	assert.NotContains(t, lines[0], "Args")
}

func pinFunc() *ir.FunctionDescriptor {
	return &ir.FunctionDescriptor{
		Name:      "is_pinned",
		Qualifier: "M",
		Params: []ir.Param{
			{Name: "winid", Type: "nil|integer", Desc: "Window id"},
			{Name: "opts", Type: "Opts", Optional: true},
		},
		Returns:     []ir.Return{{Type: "boolean", Desc: "pinned"}},
		Description: "Check if a window is pinned",
	}
}

func TestMarkdownRenderer_API(t *testing.T) {
	funcs := []*ir.FunctionDescriptor{
		pinFunc(),
		{Name: "secret", Private: true},
		{Name: "old", Deprecated: true},
	}

	lines := MarkdownRenderer{HeadingLevel: 3}.API(funcs, nil)

	assert.Equal(t, []string{
		"### is_pinned(winid, opts)",
		"",
		"```lua",
		"is_pinned(winid, opts): boolean",
		"```",
		"",
		"| Param   | Type           | Desc      |",
		"| ------- | -------------- | --------- |",
		"| winid   | `nil\\|integer` | Window id |",
		"| opts    | `nil\\|Opts`    |           |",
		"| Returns | `boolean`      | pinned    |",
		"",
		"Check if a window is pinned",
	}, lines)
}

func TestMarkdownRenderer_API_ClassFieldsAndNotes(t *testing.T) {
	types := resolver.NewTypeTable()
	types.AddFile(&ir.FileAPI{Classes: []*ir.ClassDescriptor{{
		Name: "Opts",
		Fields: []ir.Field{
			{Name: "allow_type", Type: "string", Desc: "Type to pin", Optional: true},
			{Name: "cache", Type: "table", Private: true},
		},
	}}})
	fn := pinFunc()
	fn.Notes = []string{"first\nsecond"}

	lines := MarkdownRenderer{HeadingLevel: 2}.API([]*ir.FunctionDescriptor{fn}, types)
	out := strings.Join(lines, "\n")

	assert.True(t, strings.HasPrefix(out, "## is_pinned(winid, opts)\n"))
	assert.Contains(t, out, "| >allow_type | `nil\\|string`  | Type to pin |")
	assert.NotContains(t, out, "cache")
	assert.True(t, strings.HasSuffix(out, "**Note:**\n<pre>\nfirst\nsecond\n</pre>"))
}

func TestMarkdownRenderer_API_SeparatesFunctions(t *testing.T) {
	a := &ir.FunctionDescriptor{Name: "a"}
	b := &ir.FunctionDescriptor{Name: "b", Description: "B"}

	lines := MarkdownRenderer{}.API([]*ir.FunctionDescriptor{a, b}, nil)
	assert.Equal(t, []string{
		"### a()", "", "```lua", "a()", "```",
		"",
		"### b()", "", "```lua", "b()", "```", "", "B",
	}, lines)
}

func TestVimdocRenderer_Commands(t *testing.T) {
	cmds := sampleCommands()
	cmds[1].Args = "{type}"
	cmds[1].HasArgs = true

	lines := VimdocRenderer{Module: "stickybuf", Width: 40}.Commands(cmds)

	assert.Equal(t, []string{
		"PinBuffer[!]                *:PinBuffer*",
		"    Pin the current buffer",
		"",
		"PinBuftype {type}          *:PinBuftype*",
		"    Pin the buffer type",
		"",
	}, lines)
	assert.NotContains(t, strings.Join(lines, "\n"), "Unpin")
}

func TestVimdocRenderer_API(t *testing.T) {
	types := resolver.NewTypeTable()
	types.AddFile(&ir.FileAPI{Classes: []*ir.ClassDescriptor{{
		Name:   "Opts",
		Fields: []ir.Field{{Name: "allow_type", Type: "string", Desc: "Type to pin"}},
	}}})
	fn := pinFunc()
	fn.Notes = []string{"Careful"}

	lines := VimdocRenderer{Module: "stickybuf", Width: 60}.API([]*ir.FunctionDescriptor{fn}, types)

	assert.Equal(t, []string{
		"is_pinned({winid}, {opts}): boolean    *stickybuf.is_pinned*",
		"    Check if a window is pinned",
		"",
		"    Parameters:",
		"      {winid} `nil|integer` Window id",
		"      {opts}  `nil|Opts`",
		"          {allow_type} `string` Type to pin",
		"",
		"    Returns:",
		"      `boolean` pinned",
		"",
		"    Note:",
		"      Careful",
		"",
	}, lines)
}

func TestRenderers_SkipDeprecatedCommands(t *testing.T) {
	cmds := []ir.CommandDescriptor{{Name: "Old", Description: "gone", Deprecated: true}}
	for name, r := range map[string]Renderer{
		"markdown": MarkdownRenderer{},
		"vimdoc":   VimdocRenderer{Module: "x"},
	} {
		assert.NotContains(t, strings.Join(r.Commands(cmds), "\n"), "Old", name)
	}
}
