package block

import "github.com/kobzarvs/qblocks/internal/logger"

// Table returns a copy of a table block's grid.
func (s *Store) Table(id string) ([][]string, bool) {
	i := s.tableIndex(id)
	if i < 0 {
		return nil, false
	}
	return cloneGrid(s.blocks[i].TableData), true
}

// TableSize returns the row and column count of a table block.
func (s *Store) TableSize(id string) (rows, cols int) {
	i := s.tableIndex(id)
	if i < 0 {
		return 0, 0
	}
	grid := s.blocks[i].TableData
	return len(grid), gridCols(grid)
}

// SetCell replaces the text of one cell.
func (s *Store) SetCell(id string, c Cell, text string) bool {
	i := s.tableIndex(id)
	if i < 0 || !inGrid(s.blocks[i].TableData, c) {
		return false
	}
	if s.blocks[i].TableData[c.Row][c.Col] == text {
		return true
	}
	s.blocks[i].TableData[c.Row][c.Col] = text
	s.commit("set_cell")
	return true
}

// ClearCells blanks every listed cell in a single mutation. Cells outside
// the grid are ignored; false is returned when none were inside.
func (s *Store) ClearCells(id string, cells []Cell) bool {
	i := s.tableIndex(id)
	if i < 0 {
		return false
	}
	grid := s.blocks[i].TableData
	hit := false
	for _, c := range cells {
		if !inGrid(grid, c) {
			continue
		}
		grid[c.Row][c.Col] = ""
		hit = true
	}
	if !hit {
		return false
	}
	s.commit("clear_cells")
	return true
}

// AddRow inserts an empty row at index at (clamped to the grid).
func (s *Store) AddRow(id string, at int) bool {
	i := s.tableIndex(id)
	if i < 0 {
		return false
	}
	grid := s.blocks[i].TableData
	at = clampInsert(at, len(grid))
	row := make([]string, gridCols(grid))
	grid = append(grid, nil)
	copy(grid[at+1:], grid[at:])
	grid[at] = row
	s.blocks[i].TableData = grid
	s.commit("add_row")
	return true
}

// AddColumn inserts an empty column at index at (clamped to the grid).
func (s *Store) AddColumn(id string, at int) bool {
	i := s.tableIndex(id)
	if i < 0 {
		return false
	}
	grid := s.blocks[i].TableData
	at = clampInsert(at, gridCols(grid))
	for r, row := range grid {
		row = append(row, "")
		copy(row[at+1:], row[at:])
		row[at] = ""
		grid[r] = row
	}
	s.commit("add_column")
	return true
}

// DeleteRow removes a row. The last remaining row cannot be deleted.
func (s *Store) DeleteRow(id string, row int) bool {
	i := s.tableIndex(id)
	if i < 0 {
		return false
	}
	grid := s.blocks[i].TableData
	if row < 0 || row >= len(grid) || len(grid) == 1 {
		logger.Debug("delete row rejected", "id", id, "row", row)
		return false
	}
	s.blocks[i].TableData = append(grid[:row], grid[row+1:]...)
	s.commit("delete_row")
	return true
}

// DeleteColumn removes a column. The last remaining column cannot be deleted.
func (s *Store) DeleteColumn(id string, col int) bool {
	i := s.tableIndex(id)
	if i < 0 {
		return false
	}
	grid := s.blocks[i].TableData
	cols := gridCols(grid)
	if col < 0 || col >= cols || cols == 1 {
		logger.Debug("delete column rejected", "id", id, "col", col)
		return false
	}
	for r, row := range grid {
		grid[r] = append(row[:col], row[col+1:]...)
	}
	s.commit("delete_column")
	return true
}

func (s *Store) tableIndex(id string) int {
	i := s.index(id)
	if i < 0 || s.blocks[i].Type != TypeTable || len(s.blocks[i].TableData) == 0 {
		return -1
	}
	return i
}

func inGrid(grid [][]string, c Cell) bool {
	return c.Row >= 0 && c.Row < len(grid) && c.Col >= 0 && c.Col < gridCols(grid)
}

func clampInsert(at, n int) int {
	if at < 0 {
		return 0
	}
	if at > n {
		return n
	}
	return at
}
