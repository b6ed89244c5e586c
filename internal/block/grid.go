package block

import "strings"

// Cell addresses one table cell.
type Cell struct {
	Row int
	Col int
}

func emptyGrid(rows, cols int) [][]string {
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	return grid
}

func cloneGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func gridCols(grid [][]string) int {
	if len(grid) == 0 {
		return 0
	}
	return len(grid[0])
}

// hasGridDelimiters reports whether content carries row or column
// separators and can therefore be parsed as a table.
func hasGridDelimiters(content string) bool {
	return strings.ContainsAny(content, "\n\t|")
}

// ParseGrid parses tab separated (spreadsheet paste) or pipe delimited
// (markdown) rows into a rectangular grid. Short rows are padded with empty
// cells. The boolean is false when content has no delimiters at all.
func ParseGrid(content string) ([][]string, bool) {
	if !hasGridDelimiters(content) {
		return nil, false
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	var rows [][]string
	width := 0
	for _, line := range lines {
		var cells []string
		switch {
		case strings.Contains(line, "\t"):
			cells = strings.Split(line, "\t")
		case strings.Contains(line, "|"):
			trimmed := strings.TrimSpace(line)
			if isMarkdownSeparator(trimmed) {
				continue
			}
			trimmed = strings.TrimPrefix(trimmed, "|")
			trimmed = strings.TrimSuffix(trimmed, "|")
			cells = strings.Split(trimmed, "|")
			for i := range cells {
				cells[i] = strings.TrimSpace(cells[i])
			}
		default:
			cells = []string{line}
		}
		if len(cells) > width {
			width = len(cells)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || width == 0 {
		return nil, false
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, true
}

func isMarkdownSeparator(line string) bool {
	if !strings.Contains(line, "-") {
		return false
	}
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ':
		default:
			return false
		}
	}
	return true
}
