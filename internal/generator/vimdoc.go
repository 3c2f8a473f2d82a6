package generator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const DefaultVimdocWidth = 78

// VimdocSection is one top-level section of a help file.
type VimdocSection struct {
	Title string
	Tag   string
	Body  []string
}

// Vimdoc is a whole help file: a header, a table of contents, the sections
// and a modeline.
type Vimdoc struct {
	Filename string
	Module   string
	Width    int
	Sections []VimdocSection
}

func NewVimdoc(filename, module string, width int) *Vimdoc {
	if width <= 0 {
		width = DefaultVimdocWidth
	}
	return &Vimdoc{Filename: filename, Module: module, Width: width}
}

// Render produces the help file as lines without terminators.
func (d *Vimdoc) Render() []string {
	rule := strings.Repeat("-", d.Width)
	contentsTag := d.Module + "-contents"

	lines := LeftRight("*"+d.Filename+"*", d.tagLine(), d.Width)
	lines = append(lines, "", rule)
	lines = append(lines, LeftRight("CONTENTS", "*"+contentsTag+"*", d.Width)...)
	lines = append(lines, "")
	for i, s := range d.Sections {
		left := fmt.Sprintf("  %d. %s", i+1, capitalize(s.Title))
		right := "|" + s.Tag + "|"
		dots := d.Width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
		lines = append(lines, left+strings.Repeat(".", max(dots, 1))+right)
	}
	lines = append(lines, "")

	for _, s := range d.Sections {
		lines = append(lines, rule)
		lines = append(lines, LeftRight(strings.ToUpper(s.Title), "*"+s.Tag+"*", d.Width)...)
		lines = append(lines, "")
		lines = append(lines, trimBlankLines(s.Body)...)
		lines = append(lines, "")
	}

	lines = append(lines, strings.Repeat("=", d.Width))
	lines = append(lines, fmt.Sprintf("vim:tw=%d:ts=2:ft=help:norl:syntax=help:", d.Width))
	return lines
}

func (d *Vimdoc) tagLine() string {
	tags := []string{"*" + capitalize(d.Module) + "*", "*" + d.Module + "*", "*" + d.Module + ".nvim*"}
	return strings.Join(tags, " ")
}

// String joins the rendered lines into file contents.
func (d *Vimdoc) String() string {
	return strings.Join(d.Render(), "\n") + "\n"
}

// LeftRight places left and right on one line of the given width with right
// flush against the margin. When both do not fit, right goes on its own line
// above left.
func LeftRight(left, right string, width int) []string {
	lw := runewidth.StringWidth(left)
	rw := runewidth.StringWidth(right)
	if right == "" {
		return []string{left}
	}
	if lw+1+rw <= width {
		return []string{left + strings.Repeat(" ", width-lw-rw) + right}
	}
	return []string{strings.Repeat(" ", max(width-rw, 0)) + right, left}
}

// Wrap reflows text into lines indented by indent spaces and no wider than
// width. Blank lines separate paragraphs and are kept.
func Wrap(text string, indent, width int) []string {
	prefix := strings.Repeat(" ", indent)
	var lines []string
	for i, para := range splitParagraphs(text) {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, wrapWords(strings.Fields(para), prefix, prefix, width)...)
	}
	return lines
}

// wrapWords fills lines greedily; first and rest are the prefixes of the
// first and following lines. A word wider than the line stands alone.
func wrapWords(words []string, first, rest string, width int) []string {
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var sb strings.Builder
	sb.WriteString(first)
	lineWidth := runewidth.StringWidth(first)
	fresh := true
	for _, w := range words {
		ww := runewidth.StringWidth(w)
		if !fresh && lineWidth+1+ww > width {
			lines = append(lines, sb.String())
			sb.Reset()
			sb.WriteString(rest)
			lineWidth = runewidth.StringWidth(rest)
			fresh = true
		}
		if !fresh {
			sb.WriteByte(' ')
			lineWidth++
		}
		sb.WriteString(w)
		lineWidth += ww
		fresh = false
	}
	return append(lines, sb.String())
}

func splitParagraphs(text string) []string {
	var paras []string
	var cur []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				paras = append(paras, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, " "))
	}
	return paras
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
