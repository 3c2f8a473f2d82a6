package ir

import "strings"

// Position describes where a descriptor was declared in source code.
type Position struct {
	Filepath  string `json:"filepath"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Param is a single documented function parameter.
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Desc     string `json:"desc,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// Return is a single documented return value.
type Return struct {
	Type string `json:"type"`
	Desc string `json:"desc,omitempty"`
}

// FunctionDescriptor is a module-level function extracted from annotated source.
type FunctionDescriptor struct {
	// Name is the unqualified function name ("pin" for "M.pin").
	Name string `json:"name"`
	// Qualifier is the table the function hangs off ("M" for "M.pin").
	Qualifier string `json:"qualifier,omitempty"`
	// Method is true for "M:name" declarations.
	Method      bool     `json:"method,omitempty"`
	Params      []Param  `json:"params"`
	Returns     []Return `json:"returns"`
	Description string   `json:"description,omitempty"`
	Notes       []string `json:"notes,omitempty"`
	Private     bool     `json:"private,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Position    Position `json:"position"`
}

// ParamNames returns the parameter names in declaration order.
func (f *FunctionDescriptor) ParamNames() []string {
	names := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		names = append(names, p.Name)
	}
	return names
}

// ReturnType joins all return types into a single tag, e.g. "boolean, string".
func (f *FunctionDescriptor) ReturnType() string {
	types := make([]string, 0, len(f.Returns))
	for _, r := range f.Returns {
		types = append(types, r.Type)
	}
	return strings.Join(types, ", ")
}

// Field is a documented field of a class.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Desc     string `json:"desc,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Private  bool   `json:"private,omitempty"`
}

// ClassDescriptor is a "---@class" declaration with its fields.
type ClassDescriptor struct {
	Name        string   `json:"name"`
	Parent      string   `json:"parent,omitempty"`
	Fields      []Field  `json:"fields"`
	Description string   `json:"description,omitempty"`
	Position    Position `json:"position"`
}

// AliasVariant is one "---|" line of a multi-line alias.
type AliasVariant struct {
	Value string `json:"value"`
	Desc  string `json:"desc,omitempty"`
}

// AliasDescriptor is a "---@alias" declaration.
type AliasDescriptor struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Variants []AliasVariant `json:"variants,omitempty"`
	Position Position       `json:"position"`
}

// FileAPI holds everything declared by a single source file.
type FileAPI struct {
	// Path is relative to the scanned root, using forward slashes.
	Path      string                `json:"path"`
	Functions []*FunctionDescriptor `json:"functions"`
	Classes   []*ClassDescriptor    `json:"classes,omitempty"`
	Aliases   []*AliasDescriptor    `json:"aliases,omitempty"`
}

// PublicFunctions returns the functions that belong in rendered documentation.
func (f *FileAPI) PublicFunctions() []*FunctionDescriptor {
	var out []*FunctionDescriptor
	for _, fn := range f.Functions {
		if fn.Private || fn.Deprecated {
			continue
		}
		out = append(out, fn)
	}
	return out
}

// CommandDescriptor is a user command reported by the live plugin.
type CommandDescriptor struct {
	Name string `json:"name"`
	// Args is the argument signature; HasArgs records whether the plugin declared one at all.
	Args        string `json:"args,omitempty"`
	HasArgs     bool   `json:"has_args,omitempty"`
	Description string `json:"description"`
	Bang        bool   `json:"bang,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
}

// DisplayName is the command as shown to users, with "[!]" for bang commands.
func (c CommandDescriptor) DisplayName() string {
	if c.Bang {
		return c.Name + "[!]"
	}
	return c.Name
}

// ActiveCommands drops deprecated commands, preserving order.
func ActiveCommands(cmds []CommandDescriptor) []CommandDescriptor {
	out := make([]CommandDescriptor, 0, len(cmds))
	for _, c := range cmds {
		if c.Deprecated {
			continue
		}
		out = append(out, c)
	}
	return out
}
