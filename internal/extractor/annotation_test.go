package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Annotation
	}{
		{"text", "---Pin the buffer", TextLine{Text: "Pin the buffer"}},
		{"indented text", "---    code()", TextLine{Text: "   code()"}},
		{"empty text", "---", TextLine{Text: ""}},
		{"param", "---@param winid nil|integer The window", ParamTag{Name: "winid", Type: "nil|integer", Desc: "The window"}},
		{"optional param", "---@param opts? table", ParamTag{Name: "opts", Type: "table", Optional: true}},
		{"spaced union", "---@param x string | nil # maybe", ParamTag{Name: "x", Type: "string|nil", Desc: "maybe"}},
		{"fun param", "---@param cb fun(err: string|nil, ok: boolean): boolean called after", ParamTag{Name: "cb", Type: "fun(err: string|nil, ok: boolean): boolean", Desc: "called after"}},
		{"return", "---@return boolean # pinned", ReturnTag{Type: "boolean", Desc: "pinned"}},
		{"class", "---@class stickybuf.Options", ClassTag{Name: "stickybuf.Options"}},
		{"class parent", "---@class (exact) A: B", ClassTag{Name: "A", Parent: "B"}},
		{"field", "---@field name? string The name", FieldTag{Name: "name", Type: "string", Desc: "The name", Optional: true}},
		{"private field", "---@field private cache table", FieldTag{Name: "cache", Type: "table", Private: true}},
		{"alias", "---@alias Mode \"a\"|\"b\"", AliasTag{Name: "Mode", Type: `"a"|"b"`}},
		{"alias variant", `---| "bufnr" # Pin the number`, AliasVariantTag{Value: `"bufnr"`, Desc: "Pin the number"}},
		{"note", "---@note careful", NoteTag{Text: "careful"}},
		{"private", "---@private", FlagTag{Name: "private"}},
		{"deprecated", "---@deprecated", FlagTag{Name: "deprecated"}},
		{"unknown", "---@generic T", UnknownTag{Name: "generic", Rest: "T"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnnotation(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnnotation_Malformed(t *testing.T) {
	for _, raw := range []string{
		"---@param",
		"---@param winid",
		"---@return",
		"---@class",
		"---@field name",
		"---@alias",
		"-- not doc",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseAnnotation(raw)
			assert.ErrorIs(t, err, ErrMalformedAnnotation)
		})
	}
}

func TestParseBlock_Position(t *testing.T) {
	_, err := ParseBlock([]string{"---Text", "---@param"}, "lua/x.lua", 10)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 11, se.Line)
	assert.Equal(t, "lua/x.lua:11: @param: missing parameter name", se.Error())
}
