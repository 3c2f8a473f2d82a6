package generator

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatMarkdownTable renders rows as a pipe table with the given column order.
// Cells are padded to the widest value of their column by display width, and
// literal pipes are escaped.
func FormatMarkdownTable(rows []map[string]string, cols []string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	cells := make([][]string, len(rows))
	for i, col := range cols {
		widths[i] = max(runewidth.StringWidth(col), 3)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(cols))
		for i, col := range cols {
			v := escapeCell(row[col])
			cells[r][i] = v
			widths[i] = max(widths[i], runewidth.StringWidth(v))
		}
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, tableLine(cols, widths))
	seps := make([]string, len(cols))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	lines = append(lines, tableLine(seps, widths))
	for _, row := range cells {
		lines = append(lines, tableLine(row, widths))
	}
	return lines
}

func tableLine(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(c, widths[i]))
		sb.WriteString(" |")
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
