package generator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is a markdown heading with its GitHub anchor.
type Heading struct {
	Level  int
	Text   string
	Anchor string
}

// ParseHeadings returns every heading of a markdown document in order. Lines
// inside code blocks are not headings.
func ParseHeadings(source []byte) ([]Heading, error) {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	slugs := newSlugger()

	var headings []Heading
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := strings.TrimSpace(inlineText(h, source))
		headings = append(headings, Heading{
			Level:  h.Level,
			Text:   title,
			Anchor: slugs.slug(title),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return headings, nil
}

// GenerateTOC renders a nested bullet list linking every heading up to
// maxDepth levels below the top level. A single leading heading that every
// other heading nests under is the document title and is left out.
func GenerateTOC(source []byte, maxDepth int) ([]string, error) {
	headings, err := ParseHeadings(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse headings: %w", err)
	}
	if len(headings) > 1 && isTitle(headings) {
		headings = headings[1:]
	}
	if len(headings) == 0 {
		return []string{}, nil
	}

	top := headings[0].Level
	for _, h := range headings {
		top = min(top, h.Level)
	}

	lines := make([]string, 0, len(headings))
	for _, h := range headings {
		depth := h.Level - top
		if depth >= maxDepth {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s- [%s](#%s)", strings.Repeat("  ", depth), h.Text, h.Anchor))
	}
	return lines, nil
}

func isTitle(headings []Heading) bool {
	for _, h := range headings[1:] {
		if h.Level <= headings[0].Level {
			return false
		}
	}
	return true
}

// inlineText concatenates the literal text below n, dropping markup.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		default:
			sb.WriteString(inlineText(c, source))
		}
	}
	return sb.String()
}

// slugger produces GitHub-style anchors, numbering repeats as "-1", "-2".
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: make(map[string]int)}
}

func (s *slugger) slug(title string) string {
	base := Slugify(title)
	n, ok := s.seen[base]
	s.seen[base] = n + 1
	if !ok {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// Slugify lowercases a heading, drops punctuation and turns spaces into hyphens.
func Slugify(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
