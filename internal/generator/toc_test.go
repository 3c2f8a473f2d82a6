package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTOC_TopLevelHeadings(t *testing.T) {
	src := "<!-- TOC -->\nstale\n<!-- /TOC -->\n\n# A\n\n# B\n"

	got, err := GenerateTOC([]byte(src), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"- [A](#a)", "- [B](#b)"}, got)
}

func TestGenerateTOC_SkipsTitleAndRespectsDepth(t *testing.T) {
	src := `# stickybuf.nvim

## Requirements

## Installation

### lazy.nvim

#### deep

` + "```sh\n# not a heading\n```\n" + `
## Options & Config

## Installation
`
	got, err := GenerateTOC([]byte(src), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"- [Requirements](#requirements)",
		"- [Installation](#installation)",
		"  - [lazy.nvim](#lazynvim)",
		"- [Options & Config](#options--config)",
		"- [Installation](#installation-1)",
	}, got)
}

func TestGenerateTOC_SectionsOnlyAtDepthOne(t *testing.T) {
	src := "# stickybuf.nvim\n\n## Configuration\n\n## API\n\n### setup(opts)\n\n### is_pinned(winid)\n"

	got, err := GenerateTOC([]byte(src), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"- [Configuration](#configuration)", "- [API](#api)"}, got)
}

func TestParseHeadings_InlineMarkup(t *testing.T) {
	headings, err := ParseHeadings([]byte("## `setup(opts)` and [link](https://x.y)\n"))
	require.NoError(t, err)
	require.Len(t, headings, 1)
	assert.Equal(t, "setup(opts) and link", headings[0].Text)
	assert.Equal(t, "setupopts-and-link", headings[0].Anchor)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Commands":          "commands",
		"API":               "api",
		"pin(winid, opts)":  "pinwinid-opts",
		"snake_case-name":   "snake_case-name",
		"Über Zwei Wörter":  "über-zwei-wörter",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
