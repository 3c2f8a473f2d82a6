package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"

	"plugdoc/internal/ir"
)

// LuaExtractor implements LanguageExtractor for Lua sources annotated with
// LuaCATS ("---@param") comments.
type LuaExtractor struct{}

func (l *LuaExtractor) GetLanguage() *sitter.Language {
	return lua.GetLanguage()
}

func (l *LuaExtractor) Extensions() []string {
	return []string{".lua"}
}

// docBlock is a run of adjacent "---" source lines.
type docBlock struct {
	lines     []string
	firstLine int
	lastLine  int
}

// functionDef is a qualified function found in the tree.
type functionDef struct {
	name    string
	params  []string
	endLine int
}

func (l *LuaExtractor) ExtractAPI(root *sitter.Node, sourceCode []byte, filepath string) (*ir.FileAPI, error) {
	api := &ir.FileAPI{Path: filepath, Functions: []*ir.FunctionDescriptor{}}

	defs := make(map[int]functionDef)
	l.collectFunctions(root, sourceCode, defs)

	for _, block := range scanDocBlocks(sourceCode) {
		def, attached := defs[block.lastLine]
		if !attached && !mentionsTypes(block.lines) {
			continue
		}
		annotations, err := ParseBlock(block.lines, filepath, block.firstLine)
		if err != nil {
			return nil, err
		}
		if declaresTypes(annotations) {
			pos := ir.Position{Filepath: filepath, StartLine: block.firstLine, EndLine: block.lastLine}
			classes, aliases := collectTypes(annotations, pos)
			api.Classes = append(api.Classes, classes...)
			api.Aliases = append(api.Aliases, aliases...)
			continue
		}
		if err := l.attach(api, block, annotations, def, filepath); err != nil {
			return nil, err
		}
	}
	return api, nil
}

// scanDocBlocks groups consecutive "---" lines of the source. The grammar's
// emmy_documentation and comment ranges do not line up with annotation lines.
func scanDocBlocks(sourceCode []byte) []*docBlock {
	var blocks []*docBlock
	var cur *docBlock
	for i, line := range strings.Split(string(sourceCode), "\n") {
		line = strings.TrimRight(line, "\r")
		if !IsDocComment(line) {
			cur = nil
			continue
		}
		if cur == nil {
			cur = &docBlock{firstLine: i + 1}
			blocks = append(blocks, cur)
		}
		cur.lines = append(cur.lines, line)
		cur.lastLine = i + 1
	}
	return blocks
}

// collectFunctions indexes qualified function definitions by the row of
// their name, which is the 1-based line number of a doc block ending right
// above them.
func (l *LuaExtractor) collectFunctions(n *sitter.Node, sourceCode []byte, defs map[int]functionDef) {
	var nameNode, paramsNode *sitter.Node
	switch n.Type() {
	case "function_statement":
		nameNode = n.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = firstNamedChildOfType(n, "function_name")
		}
		paramsNode = firstNamedChildOfType(n, "parameter_list")
	case "variable_declaration":
		nameNode, paramsNode = assignedFunction(n)
	}
	if nameNode != nil {
		name := nameNode.Content(sourceCode)
		if strings.ContainsAny(name, ".:") {
			row := int(nameNode.StartPoint().Row)
			defs[row] = functionDef{
				name:    name,
				params:  l.extractParams(paramsNode, sourceCode),
				endLine: int(n.EndPoint().Row) + 1,
			}
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		l.collectFunctions(n.NamedChild(i), sourceCode, defs)
	}
}

// assignedFunction returns the target and parameter nodes of "a.b = function()".
func assignedFunction(decl *sitter.Node) (*sitter.Node, *sitter.Node) {
	var target, fn *sitter.Node
	targets := 0
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "local":
			return nil, nil
		case "variable_declarator":
			target = child
			targets++
		case "function":
			fn = child
		default:
			if fn == nil {
				fn = firstNamedChildOfType(child, "function")
			}
		}
	}
	if targets != 1 || fn == nil {
		return nil, nil
	}
	return target, firstNamedChildOfType(fn, "parameter_list")
}

// attach documents the function right below a block.
func (l *LuaExtractor) attach(api *ir.FileAPI, block *docBlock, annotations []Annotation, def functionDef, filepath string) error {
	sep := strings.LastIndexAny(def.name, ".:")
	fn := &ir.FunctionDescriptor{
		Name:      def.name[sep+1:],
		Qualifier: def.name[:sep],
		Method:    def.name[sep] == ':',
		Params:    []ir.Param{},
		Returns:   []ir.Return{},
		Position: ir.Position{
			Filepath:  filepath,
			StartLine: block.firstLine,
			EndLine:   def.endLine,
		},
	}
	tags := make(map[string]ParamTag)

	var text []string
	var notes []string
	inNote := false
	for i, a := range annotations {
		switch v := a.(type) {
		case TextLine:
			if inNote {
				notes[len(notes)-1] = joinLine(notes[len(notes)-1], v.Text)
				continue
			}
			text = append(text, v.Text)
		case ParamTag:
			if !containsString(def.params, v.Name) {
				return &SyntaxError{
					Filepath: filepath,
					Line:     block.firstLine + i,
					Tag:      "param",
					Msg:      "parameter " + v.Name + " is not in the signature of " + def.name,
				}
			}
			tags[v.Name] = v
		case ReturnTag:
			fn.Returns = append(fn.Returns, ir.Return{Type: v.Type, Desc: v.Desc})
		case NoteTag:
			notes = append(notes, v.Text)
			inNote = true
			continue
		case FlagTag:
			switch v.Name {
			case "nodoc":
				return nil
			case "private":
				fn.Private = true
			case "deprecated":
				fn.Deprecated = true
			}
		}
		inNote = false
	}

	for _, name := range def.params {
		p := ir.Param{Name: name}
		if tag, ok := tags[name]; ok {
			p.Type = tag.Type
			p.Desc = tag.Desc
			p.Optional = tag.Optional
		}
		fn.Params = append(fn.Params, p)
	}
	fn.Description = joinParagraph(text)
	fn.Notes = notes
	api.Functions = append(api.Functions, fn)
	return nil
}

// extractParams reads the names in a parameter_list, with or without the
// surrounding parens. "..." stays as is.
func (l *LuaExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []string {
	params := []string{}
	if paramsNode == nil {
		return params
	}
	text := strings.TrimSpace(paramsNode.Content(sourceCode))
	text = strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return params
}

// mentionsTypes reports whether a raw block declares a class or an alias.
func mentionsTypes(lines []string) bool {
	for _, line := range lines {
		body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "---"))
		if strings.HasPrefix(body, "@class") || strings.HasPrefix(body, "@alias") {
			return true
		}
	}
	return false
}

func declaresTypes(annotations []Annotation) bool {
	for _, a := range annotations {
		switch a.(type) {
		case ClassTag, AliasTag:
			return true
		}
	}
	return false
}

// collectTypes builds classes and aliases from a block. Fields attach to the
// most recent class, variants to the most recent alias, and free text before
// a class becomes its description.
func collectTypes(annotations []Annotation, pos ir.Position) ([]*ir.ClassDescriptor, []*ir.AliasDescriptor) {
	var classes []*ir.ClassDescriptor
	var aliases []*ir.AliasDescriptor
	var text []string
	var class *ir.ClassDescriptor
	var alias *ir.AliasDescriptor

	for _, a := range annotations {
		switch v := a.(type) {
		case TextLine:
			text = append(text, v.Text)
		case ClassTag:
			class = &ir.ClassDescriptor{
				Name:        v.Name,
				Parent:      v.Parent,
				Fields:      []ir.Field{},
				Description: joinParagraph(text),
				Position:    pos,
			}
			text = nil
			alias = nil
			classes = append(classes, class)
		case FieldTag:
			if class == nil {
				continue
			}
			class.Fields = append(class.Fields, ir.Field{
				Name:     v.Name,
				Type:     v.Type,
				Desc:     v.Desc,
				Optional: v.Optional,
				Private:  v.Private,
			})
		case AliasTag:
			alias = &ir.AliasDescriptor{Name: v.Name, Type: v.Type, Position: pos}
			class = nil
			aliases = append(aliases, alias)
		case AliasVariantTag:
			if alias == nil {
				continue
			}
			alias.Variants = append(alias.Variants, ir.AliasVariant{Value: v.Value, Desc: v.Desc})
		}
	}
	for _, a := range aliases {
		if a.Type != "" || len(a.Variants) == 0 {
			continue
		}
		values := make([]string, 0, len(a.Variants))
		for _, v := range a.Variants {
			values = append(values, v.Value)
		}
		a.Type = strings.Join(values, "|")
	}
	return classes, aliases
}

func firstNamedChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// joinParagraph joins doc lines, trimming blank lines at both ends.
func joinParagraph(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func joinLine(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
