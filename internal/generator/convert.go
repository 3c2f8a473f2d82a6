package generator

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	headingRe      = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	listItemRe     = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+(.*)$`)
	internalLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(#([^)\s]+)\)`)
	tableSepRe     = regexp.MustCompile(`^:?-+:?$`)
	htmlCommentRe  = regexp.MustCompile(`^\s*<!--.*-->\s*$`)
)

// MarkdownConverter turns markdown into the Vim help dialect.
type MarkdownConverter struct {
	// TagPrefix replaces "#" in internal links: [x](#opts) becomes |prefix-opts|.
	TagPrefix string
	Width     int

	out   []string
	para  []string
	first string
	rest  string
	table [][]string
}

func NewMarkdownConverter(tagPrefix string, width int) *MarkdownConverter {
	if width <= 0 {
		width = DefaultVimdocWidth
	}
	return &MarkdownConverter{TagPrefix: tagPrefix, Width: width}
}

// Convert rewraps prose and list items, aligns tables, turns fenced code into
// ">lang" ... "<" blocks and sub-headings into "Title ~" lines.
func (c *MarkdownConverter) Convert(lines []string) []string {
	c.out = nil
	inFence := false
	for _, line := range lines {
		if inFence {
			if isFence(line) {
				c.emit("<")
				inFence = false
			} else if strings.TrimSpace(line) == "" {
				c.out = append(c.out, "")
			} else {
				c.out = append(c.out, "    "+line)
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case isFence(line):
			c.flush()
			lang := strings.TrimLeft(trimmed, "`~")
			c.emit(">" + strings.TrimSpace(lang))
			inFence = true
		case trimmed == "":
			c.flush()
			c.blank()
		case htmlCommentRe.MatchString(line):
			// hidden markers such as <!-- TOC --> carry no text
		case strings.HasPrefix(trimmed, "|"):
			c.flushParagraph()
			c.table = append(c.table, splitRow(trimmed))
		case headingRe.MatchString(line):
			c.flush()
			m := headingRe.FindStringSubmatch(line)
			c.emit(c.inline(m[2]) + " ~")
		case listItemRe.MatchString(line):
			c.flush()
			m := listItemRe.FindStringSubmatch(line)
			c.first = m[1] + m[2] + " "
			c.rest = strings.Repeat(" ", runewidth.StringWidth(c.first))
			c.para = []string{m[3]}
		default:
			c.flushTable()
			if len(c.para) == 0 {
				c.first, c.rest = "", ""
			}
			c.para = append(c.para, trimmed)
		}
	}
	c.flush()
	if inFence {
		c.emit("<")
	}
	return trimBlankLines(c.out)
}

func (c *MarkdownConverter) emit(line string) {
	c.out = append(c.out, line)
}

func (c *MarkdownConverter) blank() {
	if len(c.out) > 0 && c.out[len(c.out)-1] != "" {
		c.out = append(c.out, "")
	}
}

func (c *MarkdownConverter) flush() {
	c.flushParagraph()
	c.flushTable()
}

func (c *MarkdownConverter) flushParagraph() {
	if len(c.para) == 0 {
		return
	}
	text := c.inline(strings.Join(c.para, " "))
	c.out = append(c.out, wrapWords(strings.Fields(text), c.first, c.rest, c.Width)...)
	c.para = nil
}

func (c *MarkdownConverter) flushTable() {
	if len(c.table) == 0 {
		return
	}
	var rows [][]string
	for _, row := range c.table {
		if isSeparatorRow(row) {
			continue
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = c.inline(cell)
		}
		rows = append(rows, cells)
	}
	c.table = nil

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		c.out = append(c.out, strings.TrimRight(sb.String(), " "))
	}
}

func (c *MarkdownConverter) inline(s string) string {
	return internalLinkRe.ReplaceAllStringFunc(s, func(m string) string {
		anchor := internalLinkRe.FindStringSubmatch(m)[2]
		if c.TagPrefix == "" {
			return "|" + anchor + "|"
		}
		return "|" + c.TagPrefix + "-" + anchor + "|"
	})
}

// splitRow splits a pipe table row on unescaped pipes.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}
	var cells []string
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			sb.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteByte(line[i])
		}
	}
	return append(cells, strings.TrimSpace(sb.String()))
}

func isSeparatorRow(row []string) bool {
	for _, cell := range row {
		if !tableSepRe.MatchString(cell) {
			return false
		}
	}
	return len(row) > 0
}

// ConvertMarkdownSection extracts a README section and converts it into a help
// file section. Internal links become |module-anchor|.
func ConvertMarkdownSection(content string, begin, end *regexp.Regexp, module, title, tag string, width int) (VimdocSection, error) {
	lines, err := ExtractSection(content, begin, end)
	if err != nil {
		return VimdocSection{}, err
	}
	body := NewMarkdownConverter(module, width).Convert(lines)
	return VimdocSection{Title: title, Tag: tag, Body: body}, nil
}
