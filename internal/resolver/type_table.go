package resolver

import (
	"strings"

	"plugdoc/internal/ir"
)

// TypeTable indexes every class and alias declared across a project so that
// renderers can expand a parameter type into its fields.
type TypeTable struct {
	classes map[string]*ir.ClassDescriptor
	aliases map[string]*ir.AliasDescriptor
}

func NewTypeTable() *TypeTable {
	return &TypeTable{
		classes: make(map[string]*ir.ClassDescriptor),
		aliases: make(map[string]*ir.AliasDescriptor),
	}
}

// AddFile registers the declarations of a file. Later declarations of the same
// name replace earlier ones.
func (t *TypeTable) AddFile(api *ir.FileAPI) {
	if api == nil {
		return
	}
	for _, c := range api.Classes {
		t.classes[c.Name] = c
	}
	for _, a := range api.Aliases {
		t.aliases[a.Name] = a
	}
}

func (t *TypeTable) Class(name string) (*ir.ClassDescriptor, bool) {
	c, ok := t.classes[name]
	return c, ok
}

func (t *TypeTable) Alias(name string) (*ir.AliasDescriptor, bool) {
	a, ok := t.aliases[name]
	return a, ok
}

func (t *TypeTable) Len() int {
	return len(t.classes) + len(t.aliases)
}

// Fields returns the public fields of a class, parents first. A parent chain
// that loops back on itself is cut at the repeated class.
func (t *TypeTable) Fields(name string) []ir.Field {
	var chain []*ir.ClassDescriptor
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		seen[name] = true
		c, ok := t.classes[name]
		if !ok {
			break
		}
		chain = append(chain, c)
		name = c.Parent
	}

	var out []ir.Field
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			if f.Private {
				continue
			}
			out = append(out, f)
		}
	}
	return out
}

// Expand returns the class a parameter type refers to, ignoring nil-ability:
// "nil|stickybuf.Options", "stickybuf.Options?" and "stickybuf.Options|nil"
// all resolve to stickybuf.Options.
func (t *TypeTable) Expand(typ string) (*ir.ClassDescriptor, bool) {
	name := BaseType(typ)
	if name == "" {
		return nil, false
	}
	return t.Class(name)
}

// BaseType strips optional markers from a type. It returns "" when the type is
// a union of more than one non-nil member.
func BaseType(typ string) string {
	typ = strings.TrimSpace(typ)
	typ = strings.TrimSuffix(typ, "?")
	var base string
	for _, part := range strings.Split(typ, "|") {
		part = strings.TrimSpace(part)
		if part == "nil" || part == "" {
			continue
		}
		if base != "" {
			return ""
		}
		base = part
	}
	return base
}
