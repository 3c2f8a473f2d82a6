package extractor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedAnnotation matches every *SyntaxError.
var ErrMalformedAnnotation = errors.New("malformed annotation")

// SyntaxError reports an annotation that could not be parsed.
type SyntaxError struct {
	Filepath string
	Line     int
	Tag      string
	Msg      string
}

func (e *SyntaxError) Error() string {
	loc := e.Filepath
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Tag != "" {
		return fmt.Sprintf("%s: @%s: %s", loc, e.Tag, e.Msg)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrMalformedAnnotation
}

// Annotation is one parsed "---" line. The concrete types below are the
// variants; use a type switch to consume them.
type Annotation interface {
	annotation()
}

type (
	// TextLine is free documentation text.
	TextLine struct{ Text string }
	// ParamTag is "---@param name[?] type [desc]".
	ParamTag struct {
		Name     string
		Type     string
		Desc     string
		Optional bool
	}
	// ReturnTag is "---@return type [desc]".
	ReturnTag struct {
		Type string
		Desc string
	}
	// ClassTag is "---@class Name[: Parent]".
	ClassTag struct {
		Name   string
		Parent string
	}
	// FieldTag is "---@field [visibility] name[?] type [desc]".
	FieldTag struct {
		Name     string
		Type     string
		Desc     string
		Optional bool
		Private  bool
	}
	// AliasTag is "---@alias Name [type]".
	AliasTag struct {
		Name string
		Type string
	}
	// AliasVariantTag is a "---| value [# desc]" continuation of an alias.
	AliasVariantTag struct {
		Value string
		Desc  string
	}
	// NoteTag is "---@note text".
	NoteTag struct{ Text string }
	// FlagTag covers the argument-less markers: private, deprecated, nodoc.
	FlagTag struct{ Name string }
	// UnknownTag is any other "---@tag"; it is kept but ignored.
	UnknownTag struct {
		Name string
		Rest string
	}
)

func (TextLine) annotation()        {}
func (ParamTag) annotation()        {}
func (ReturnTag) annotation()       {}
func (ClassTag) annotation()        {}
func (FieldTag) annotation()        {}
func (AliasTag) annotation()        {}
func (AliasVariantTag) annotation() {}
func (NoteTag) annotation()         {}
func (FlagTag) annotation()         {}
func (UnknownTag) annotation()      {}

// IsDocComment reports whether a raw comment line belongs to an annotation block.
func IsDocComment(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "---")
}

// ParseAnnotation parses a single "---" comment line. The returned error is a
// bare *SyntaxError without position; ParseBlock fills it in.
func ParseAnnotation(raw string) (Annotation, error) {
	line := strings.TrimSpace(raw)
	if !strings.HasPrefix(line, "---") {
		return nil, &SyntaxError{Msg: "not a doc comment"}
	}
	body := strings.TrimPrefix(line, "---")

	if strings.HasPrefix(body, "|") {
		return parseAliasVariant(strings.TrimSpace(body[1:])), nil
	}

	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "@") {
		// A single leading space is the conventional separator; keep any further indentation.
		return TextLine{Text: strings.TrimRight(strings.TrimPrefix(body, " "), " \t")}, nil
	}

	name, rest := splitWord(trimmed[1:])
	switch name {
	case "param":
		return parseParam(rest)
	case "return":
		typ, desc := scanType(rest)
		if typ == "" {
			return nil, &SyntaxError{Tag: name, Msg: "missing return type"}
		}
		return ReturnTag{Type: typ, Desc: cleanDesc(desc)}, nil
	case "class":
		return parseClass(rest)
	case "field":
		return parseField(rest)
	case "alias":
		alias, typ := splitWord(rest)
		if alias == "" {
			return nil, &SyntaxError{Tag: name, Msg: "missing alias name"}
		}
		return AliasTag{Name: alias, Type: strings.TrimSpace(typ)}, nil
	case "note":
		return NoteTag{Text: strings.TrimSpace(rest)}, nil
	case "private", "deprecated", "nodoc":
		return FlagTag{Name: name}, nil
	default:
		return UnknownTag{Name: name, Rest: rest}, nil
	}
}

// ParseBlock parses consecutive annotation lines. firstLine is the 1-based
// source line of lines[0] and is used for error positions.
func ParseBlock(lines []string, filepath string, firstLine int) ([]Annotation, error) {
	out := make([]Annotation, 0, len(lines))
	for i, raw := range lines {
		a, err := ParseAnnotation(raw)
		if err != nil {
			var se *SyntaxError
			if errors.As(err, &se) {
				se.Filepath = filepath
				se.Line = firstLine + i
			}
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func parseParam(rest string) (Annotation, error) {
	name, after := splitWord(rest)
	if name == "" {
		return nil, &SyntaxError{Tag: "param", Msg: "missing parameter name"}
	}
	optional := strings.HasSuffix(name, "?")
	name = strings.TrimSuffix(name, "?")
	typ, desc := scanType(after)
	if typ == "" {
		return nil, &SyntaxError{Tag: "param", Msg: fmt.Sprintf("missing type for parameter %q", name)}
	}
	return ParamTag{Name: name, Type: typ, Desc: cleanDesc(desc), Optional: optional}, nil
}

func parseClass(rest string) (Annotation, error) {
	decl := strings.TrimSpace(rest)
	// "(exact)" and similar modifiers precede the name.
	for strings.HasPrefix(decl, "(") {
		end := strings.Index(decl, ")")
		if end < 0 {
			break
		}
		decl = strings.TrimSpace(decl[end+1:])
	}
	name, parent, _ := strings.Cut(decl, ":")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return nil, &SyntaxError{Tag: "class", Msg: "missing class name"}
	}
	parent, _ = splitWord(strings.TrimSpace(parent))
	return ClassTag{Name: name, Parent: strings.TrimSuffix(parent, ",")}, nil
}

func parseField(rest string) (Annotation, error) {
	first, after := splitWord(rest)
	private := false
	switch first {
	case "private", "protected", "package":
		private = true
		first, after = splitWord(after)
	case "public":
		first, after = splitWord(after)
	}
	if first == "" {
		return nil, &SyntaxError{Tag: "field", Msg: "missing field name"}
	}
	optional := strings.HasSuffix(first, "?")
	name := strings.TrimSuffix(first, "?")
	typ, desc := scanType(after)
	if typ == "" {
		return nil, &SyntaxError{Tag: "field", Msg: fmt.Sprintf("missing type for field %q", name)}
	}
	return FieldTag{Name: name, Type: typ, Desc: cleanDesc(desc), Optional: optional, Private: private}, nil
}

func parseAliasVariant(rest string) Annotation {
	value, desc, _ := strings.Cut(rest, "#")
	return AliasVariantTag{Value: strings.TrimSpace(value), Desc: strings.TrimSpace(desc)}
}

// scanType reads a type expression from the start of s and returns it with the
// remaining text. Brackets nest, and "|" joins unions even across spaces, so
// "fun(a: integer): boolean | nil  the rest" splits after "nil".
func scanType(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	depth := 0
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '(', '<', '{', '[':
			depth++
		case ')', '>', '}', ']':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && (c == ' ' || c == '\t') {
			prev := strings.TrimRightFunc(s[:i], unicode.IsSpace)
			next := strings.TrimLeftFunc(s[i:], unicode.IsSpace)
			joinsUnion := strings.HasSuffix(prev, "|") || strings.HasPrefix(next, "|")
			// "fun(...): ret" continues past the colon.
			continuesFun := strings.HasSuffix(prev, "):")
			if !joinsUnion && !continuesFun {
				return normalizeType(prev), strings.TrimSpace(next)
			}
		}
		i++
	}
	return normalizeType(strings.TrimSpace(s)), ""
}

func normalizeType(t string) string {
	parts := strings.Split(t, "|")
	if len(parts) == 1 {
		return t
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, "|")
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

// cleanDesc drops the optional "#" separator used before descriptions.
func cleanDesc(desc string) string {
	desc = strings.TrimSpace(desc)
	desc = strings.TrimPrefix(desc, "#")
	return strings.TrimSpace(desc)
}
