package extractor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugdoc/internal/ir"
)

func TestExtractor_ExtractFromFile(t *testing.T) {
	testFile := filepath.Join("testdata", "sample.lua")

	ext, err := NewExtractor("lua")
	require.NoError(t, err)

	api, err := ext.ExtractFromFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testFile, api.Path)

	byName := make(map[string]*ir.FunctionDescriptor)
	for _, fn := range api.Functions {
		byName[fn.Name] = fn
	}

	t.Run("Overall Count", func(t *testing.T) {
		// helper is local, hidden is nodoc, undocumented has no doc block.
		assert.Len(t, api.Functions, 5)
		assert.NotContains(t, byName, "helper")
		assert.NotContains(t, byName, "hidden")
		assert.NotContains(t, byName, "undocumented")
	})

	t.Run("Declaration Order", func(t *testing.T) {
		names := make([]string, 0, len(api.Functions))
		for _, fn := range api.Functions {
			names = append(names, fn.Name)
		}
		assert.Equal(t, []string{"pin", "unpin", "is_pinned", "_internal", "old_pin"}, names)
	})

	t.Run("Function Declaration", func(t *testing.T) {
		fn := byName["pin"]
		require.NotNil(t, fn)
		assert.Equal(t, "M", fn.Qualifier)
		assert.False(t, fn.Method)
		assert.Equal(t, "Pin the buffer in the specified window", fn.Description)
		assert.Equal(t, []string{"winid", "opts"}, fn.ParamNames())
		assert.Equal(t, "nil|integer", fn.Params[0].Type)
		assert.False(t, fn.Params[0].Optional)
		assert.Equal(t, "{allow_type?: string, handle_foreign_buffer?: fun(bufnr: integer)}", fn.Params[1].Type)
		assert.True(t, fn.Params[1].Optional)
		assert.Empty(t, fn.Returns)
		assert.Equal(t, []string{"You can use this to pin a buffer that\nwas opened in a terminal"}, fn.Notes)
		assert.Equal(t, 17, fn.Position.StartLine)
	})

	t.Run("Assigned Function", func(t *testing.T) {
		fn := byName["unpin"]
		require.NotNil(t, fn)
		assert.Equal(t, "Remove any pinning logic for the window", fn.Description)
		assert.Equal(t, []string{"winid"}, fn.ParamNames())
	})

	t.Run("Method Returns", func(t *testing.T) {
		fn := byName["is_pinned"]
		require.NotNil(t, fn)
		assert.True(t, fn.Method)
		require.Len(t, fn.Returns, 2)
		assert.Equal(t, "boolean", fn.Returns[0].Type)
		assert.Equal(t, "pin type", fn.Returns[1].Desc)
		assert.Equal(t, "boolean, string", fn.ReturnType())
	})

	t.Run("Flags", func(t *testing.T) {
		assert.True(t, byName["_internal"].Private)
		assert.True(t, byName["old_pin"].Deprecated)
		assert.Equal(t, []string{"..."}, byName["old_pin"].ParamNames())

		public := api.PublicFunctions()
		require.Len(t, public, 3)
		assert.Equal(t, "is_pinned", public[2].Name)
	})

	t.Run("Classes", func(t *testing.T) {
		require.Len(t, api.Classes, 1)
		class := api.Classes[0]
		assert.Equal(t, "stickybuf.Options", class.Name)
		require.Len(t, class.Fields, 2)
		assert.Equal(t, "get_auto_pin", class.Fields[0].Name)
		assert.Equal(t, `fun(bufnr: integer): nil|boolean|"bufnr"|"buftype"|"filetype"`, class.Fields[0].Type)
		assert.Equal(t, "Return a pin type or nil", class.Fields[0].Desc)
		assert.True(t, class.Fields[1].Private)
	})

	t.Run("Aliases", func(t *testing.T) {
		require.Len(t, api.Aliases, 1)
		alias := api.Aliases[0]
		assert.Equal(t, "stickybuf.PinType", alias.Name)
		assert.Equal(t, `"bufnr"|"buftype"|"filetype"`, alias.Type)
		require.Len(t, alias.Variants, 3)
		assert.Equal(t, "Pin the buffer number", alias.Variants[0].Desc)
	})
}

func TestExtractor_UnknownParamIsSyntaxError(t *testing.T) {
	src := []byte(`local M = {}

---Does a thing
---@param bufnr integer
---@param missing string
function M.thing(bufnr) end

return M
`)
	ext, err := NewExtractor("lua")
	require.NoError(t, err)

	_, err = ext.ExtractFromSource(context.Background(), src, "thing.lua")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedAnnotation)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "thing.lua", se.Filepath)
	assert.Equal(t, 5, se.Line)
	assert.Equal(t, "param", se.Tag)
}

func TestExtractor_DetachedBlockIsIgnored(t *testing.T) {
	src := []byte(`local M = {}

---Floating comment

function M.thing() end

return M
`)
	ext, err := NewExtractor("lua")
	require.NoError(t, err)

	api, err := ext.ExtractFromSource(context.Background(), src, "thing.lua")
	require.NoError(t, err)
	assert.Empty(t, api.Functions)
}

func TestNewExtractor_Unsupported(t *testing.T) {
	_, err := NewExtractor("go")
	assert.Error(t, err)
}

func TestExtractor_Handles(t *testing.T) {
	ext, err := NewExtractor("lua")
	require.NoError(t, err)
	assert.Equal(t, "lua", ext.Language())
	assert.True(t, ext.Handles("init.lua"))
	assert.False(t, ext.Handles("init.vim"))
}

func TestExtractor_FunctionForms(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   []string
		params []string
		line   int
	}{
		{
			name:   "declaration without trailing newline",
			src:    "---Pin the buffer\n---@param bufnr integer\n---@return boolean\nfunction M.pin(bufnr) end",
			want:   []string{"pin"},
			params: []string{"bufnr"},
			line:   1,
		},
		{
			name:   "assigned function",
			src:    "local M = {}\n---Pin the buffer\n---@param bufnr integer\nM.pin = function(bufnr) end\nreturn M\n",
			want:   []string{"pin"},
			params: []string{"bufnr"},
			line:   2,
		},
		{
			name:   "no parameters",
			src:    "---Reset state\nfunction M.reset() end\n",
			want:   []string{"reset"},
			params: []string{},
			line:   1,
		},
		{
			name: "local function",
			src:  "---Helper\nlocal function helper(x) return x end\n",
			want: []string{},
		},
		{
			name: "local assignment",
			src:  "---Helper\nlocal helper = function(x) return x end\n",
			want: []string{},
		},
		{
			name:   "nested in a do block",
			src:    "local M = {}\ndo\n  ---Indented doc\n  ---@param a string\n  function M.inner(a) end\nend\nreturn M\n",
			want:   []string{"inner"},
			params: []string{"a"},
			line:   3,
		},
	}
	ext, err := NewExtractor("lua")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, err := ext.ExtractFromSource(context.Background(), []byte(tt.src), "x.lua")
			require.NoError(t, err)

			names := []string{}
			for _, fn := range api.Functions {
				names = append(names, fn.Name)
			}
			assert.Equal(t, tt.want, names)
			if len(tt.want) == 1 {
				assert.Equal(t, tt.params, api.Functions[0].ParamNames())
				assert.Equal(t, tt.line, api.Functions[0].Position.StartLine)
			}
		})
	}
}

func TestExtractor_UnknownParamNamesParameter(t *testing.T) {
	src := []byte("---@param other integer\nfunction M.pin(bufnr) end\n")
	ext, err := NewExtractor("lua")
	require.NoError(t, err)

	_, err = ext.ExtractFromSource(context.Background(), src, "x.lua")
	require.Error(t, err)
	assert.Equal(t, "x.lua:1: @param: parameter other is not in the signature of M.pin", err.Error())
}
