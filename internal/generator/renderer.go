package generator

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"plugdoc/internal/ir"
	"plugdoc/internal/resolver"
)

// Renderer turns extracted descriptors into lines of one documentation dialect.
// Deprecated commands and private or deprecated functions are never rendered.
type Renderer interface {
	Commands(cmds []ir.CommandDescriptor) []string
	API(funcs []*ir.FunctionDescriptor, types *resolver.TypeTable) []string
}

var (
	_ Renderer = MarkdownRenderer{}
	_ Renderer = VimdocRenderer{}
)

// MarkdownRenderer renders README fragments.
type MarkdownRenderer struct {
	// HeadingLevel is the level of each function heading, 3 for "###".
	HeadingLevel int
}

// Commands renders a Command/Args/Description table. The Args column only
// appears when at least one command declares an argument signature.
func (r MarkdownRenderer) Commands(cmds []ir.CommandDescriptor) []string {
	active := ir.ActiveCommands(cmds)
	cols := []string{"Command", "Args", "Description"}
	if !anyHasArgs(active) {
		cols = []string{"Command", "Description"}
	}
	rows := make([]map[string]string, 0, len(active))
	for _, c := range active {
		rows = append(rows, map[string]string{
			"Command":     "`" + c.DisplayName() + "`",
			"Args":        c.Args,
			"Description": c.Description,
		})
	}
	return FormatMarkdownTable(rows, cols)
}

func (r MarkdownRenderer) API(funcs []*ir.FunctionDescriptor, types *resolver.TypeTable) []string {
	level := r.HeadingLevel
	if level <= 0 {
		level = 3
	}
	var lines []string
	for _, fn := range documented(funcs) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, r.function(fn, types, level)...)
	}
	return lines
}

func (r MarkdownRenderer) function(fn *ir.FunctionDescriptor, types *resolver.TypeTable, level int) []string {
	lines := []string{
		strings.Repeat("#", level) + " " + fn.Name + "(" + strings.Join(fn.ParamNames(), ", ") + ")",
		"",
		"```lua",
		signature(fn, fn.ParamNames()),
		"```",
	}

	var rows []map[string]string
	for _, p := range fn.Params {
		rows = append(rows, map[string]string{"Param": p.Name, "Type": code(paramType(p)), "Desc": p.Desc})
		for _, f := range classFields(types, p.Type) {
			rows = append(rows, map[string]string{"Param": ">" + f.Name, "Type": code(fieldType(f)), "Desc": f.Desc})
		}
	}
	for _, ret := range fn.Returns {
		rows = append(rows, map[string]string{"Param": "Returns", "Type": code(ret.Type), "Desc": ret.Desc})
	}
	if len(rows) > 0 {
		lines = append(lines, "")
		lines = append(lines, FormatMarkdownTable(rows, []string{"Param", "Type", "Desc"})...)
	}

	if fn.Description != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(fn.Description, "\n")...)
	}
	for _, note := range fn.Notes {
		lines = append(lines, "", "**Note:**", "<pre>")
		lines = append(lines, strings.Split(note, "\n")...)
		lines = append(lines, "</pre>")
	}
	return lines
}

// VimdocRenderer renders help file section bodies.
type VimdocRenderer struct {
	// Module prefixes function tags, "stickybuf" gives *stickybuf.pin*.
	Module string
	Width  int
}

func (r VimdocRenderer) width() int {
	if r.Width <= 0 {
		return DefaultVimdocWidth
	}
	return r.Width
}

// Commands renders each command as a tagged line followed by its indented
// description and a blank separator.
func (r VimdocRenderer) Commands(cmds []ir.CommandDescriptor) []string {
	var lines []string
	for _, c := range ir.ActiveCommands(cmds) {
		left := c.DisplayName()
		if c.HasArgs && c.Args != "" {
			left += " " + c.Args
		}
		lines = append(lines, LeftRight(left, "*:"+c.Name+"*", r.width())...)
		lines = append(lines, Wrap(c.Description, 4, r.width())...)
		lines = append(lines, "")
	}
	return lines
}

func (r VimdocRenderer) API(funcs []*ir.FunctionDescriptor, types *resolver.TypeTable) []string {
	width := r.width()
	var lines []string
	for _, fn := range documented(funcs) {
		args := make([]string, 0, len(fn.Params))
		for _, p := range fn.Params {
			args = append(args, "{"+p.Name+"}")
		}
		tag := "*" + fn.Name + "*"
		if r.Module != "" {
			tag = "*" + r.Module + "." + fn.Name + "*"
		}
		lines = append(lines, LeftRight(signature(fn, args), tag, width)...)
		if fn.Description != "" {
			lines = append(lines, Wrap(fn.Description, 4, width)...)
		}

		if len(fn.Params) > 0 {
			lines = append(lines, "", "    Parameters:")
			nameWidth := 0
			for _, a := range args {
				nameWidth = max(nameWidth, runewidth.StringWidth(a))
			}
			for i, p := range fn.Params {
				lines = append(lines, describe(args[i], nameWidth, code(paramType(p)), p.Desc, 6, width)...)
				fields := classFields(types, p.Type)
				fieldWidth := 0
				for _, f := range fields {
					fieldWidth = max(fieldWidth, runewidth.StringWidth("{"+f.Name+"}"))
				}
				for _, f := range fields {
					lines = append(lines, describe("{"+f.Name+"}", fieldWidth, code(fieldType(f)), f.Desc, 10, width)...)
				}
			}
		}
		if len(fn.Returns) > 0 {
			lines = append(lines, "", "    Returns:")
			for _, ret := range fn.Returns {
				lines = append(lines, describe("", 0, code(ret.Type), ret.Desc, 6, width)...)
			}
		}
		for _, note := range fn.Notes {
			lines = append(lines, "", "    Note:")
			lines = append(lines, Wrap(note, 6, width)...)
		}
		lines = append(lines, "")
	}
	return lines
}

// describe lays out "{name} `type` desc" with name padded to nameWidth and
// continuation lines indented past the name.
func describe(name string, nameWidth int, typ, desc string, indent, width int) []string {
	first := strings.Repeat(" ", indent)
	if name != "" {
		first += runewidth.FillRight(name, nameWidth) + " "
	}
	rest := strings.Repeat(" ", indent+2)
	words := strings.Fields(strings.TrimSpace(typ + " " + desc))
	if len(words) == 0 {
		return []string{strings.TrimRight(first, " ")}
	}
	return wrapWords(words, first, rest, width)
}

func documented(funcs []*ir.FunctionDescriptor) []*ir.FunctionDescriptor {
	out := make([]*ir.FunctionDescriptor, 0, len(funcs))
	for _, fn := range funcs {
		if fn == nil || fn.Private || fn.Deprecated {
			continue
		}
		out = append(out, fn)
	}
	return out
}

func signature(fn *ir.FunctionDescriptor, args []string) string {
	sig := fn.Name + "(" + strings.Join(args, ", ") + ")"
	if ret := fn.ReturnType(); ret != "" {
		sig += ": " + ret
	}
	return sig
}

func paramType(p ir.Param) string {
	if p.Optional && p.Type != "" && !hasNil(p.Type) {
		return "nil|" + p.Type
	}
	return p.Type
}

func fieldType(f ir.Field) string {
	if f.Optional && !hasNil(f.Type) {
		return "nil|" + f.Type
	}
	return f.Type
}

func hasNil(typ string) bool {
	for _, part := range strings.Split(typ, "|") {
		if strings.TrimSpace(part) == "nil" {
			return true
		}
	}
	return false
}

func classFields(types *resolver.TypeTable, typ string) []ir.Field {
	if types == nil {
		return nil
	}
	class, ok := types.Expand(typ)
	if !ok {
		return nil
	}
	return types.Fields(class.Name)
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

func anyHasArgs(cmds []ir.CommandDescriptor) bool {
	for _, c := range cmds {
		if c.HasArgs {
			return true
		}
	}
	return false
}
