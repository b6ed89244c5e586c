// Package block holds the document model: an ordered list of typed blocks,
// column containers grouping blocks side by side, and the Store that owns and
// mutates them.
package block

// Type is the kind of a block.
type Type string

const (
	TypeParagraph Type = "paragraph"
	TypeHeading1  Type = "heading1"
	TypeHeading2  Type = "heading2"
	TypeHeading3  Type = "heading3"
	TypeBullet    Type = "bullet"
	TypeNumbered  Type = "numbered"
	TypeTodo      Type = "todo"
	TypeQuote     Type = "quote"
	TypeCallout   Type = "callout"
	TypeCode      Type = "code"
	TypeMath      Type = "math"
	TypeDivider   Type = "divider"
	TypeTable     Type = "table"

	// TypeColumns marks a column container pseudo-block.
	TypeColumns Type = "columns"
)

// Types lists every user-insertable kind in menu order.
var Types = []Type{
	TypeParagraph,
	TypeHeading1,
	TypeHeading2,
	TypeHeading3,
	TypeBullet,
	TypeNumbered,
	TypeTodo,
	TypeQuote,
	TypeCallout,
	TypeCode,
	TypeMath,
	TypeDivider,
	TypeTable,
}

// Valid reports whether t is a known user-insertable kind.
func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Indentable reports whether blocks of this kind carry an indent level.
func (t Type) Indentable() bool {
	switch t {
	case TypeColumns, TypeTable, TypeDivider:
		return false
	}
	return true
}

const (
	MaxIndent = 5

	MinColumnWidth = 15.0
	MaxColumnWidth = 85.0

	defaultTableRows = 3
	defaultTableCols = 3
)

// Block is one addressable unit of document content. A Block with IsColumn
// set is a column container; its children are located through
// ColumnChildren and carry ParentColumnID and ColumnIndex.
type Block struct {
	ID             string     `json:"id"`
	Type           Type       `json:"type"`
	Content        string     `json:"content"`
	Indent         int        `json:"indent"`
	ColumnIndex    *int       `json:"columnIndex,omitempty"`
	ParentColumnID string     `json:"parentColumnId,omitempty"`
	TableData      [][]string `json:"tableData,omitempty"`
	CodeLanguage   string     `json:"codeLanguage,omitempty"`
	Checked        bool       `json:"checked,omitempty"`

	IsColumn       bool      `json:"isColumn,omitempty"`
	ColumnChildren []string  `json:"columnChildren,omitempty"`
	ColumnWidths   []float64 `json:"columnWidths,omitempty"`
}

// InColumn reports whether b is a child of a column container.
func (b Block) InColumn() bool {
	return b.ParentColumnID != ""
}

// Column returns the column index of a column child, or -1.
func (b Block) Column() int {
	if b.ColumnIndex == nil {
		return -1
	}
	return *b.ColumnIndex
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	out := b
	if b.ColumnIndex != nil {
		idx := *b.ColumnIndex
		out.ColumnIndex = &idx
	}
	if b.TableData != nil {
		out.TableData = cloneGrid(b.TableData)
	}
	if b.ColumnChildren != nil {
		out.ColumnChildren = append([]string(nil), b.ColumnChildren...)
	}
	if b.ColumnWidths != nil {
		out.ColumnWidths = append([]float64(nil), b.ColumnWidths...)
	}
	return out
}

func (b *Block) stripColumn() {
	b.ColumnIndex = nil
	b.ParentColumnID = ""
}

func (b *Block) joinColumn(containerID string, index int) {
	b.ParentColumnID = containerID
	b.ColumnIndex = &index
}

// newBlock builds a block of kind t with the defaults for that kind.
func newBlock(id string, t Type, codeLanguage string) Block {
	b := Block{ID: id, Type: t}
	applyDefaults(&b, codeLanguage)
	return b
}

// applyDefaults clears fields that do not apply to b.Type and initializes
// the ones that do.
func applyDefaults(b *Block, codeLanguage string) {
	if b.Type == TypeTable {
		if len(b.TableData) == 0 {
			b.TableData = emptyGrid(defaultTableRows, defaultTableCols)
		}
	} else {
		b.TableData = nil
	}
	if b.Type == TypeCode {
		if b.CodeLanguage == "" {
			b.CodeLanguage = codeLanguage
		}
	} else {
		b.CodeLanguage = ""
	}
	if b.Type != TypeTodo {
		b.Checked = false
	}
	if b.Type == TypeDivider {
		b.Content = ""
	}
	if !b.Type.Indentable() {
		b.Indent = 0
	}
}

func clampIndent(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxIndent {
		return MaxIndent
	}
	return n
}

// ClampColumnWidth limits a first-column width to [MinColumnWidth, MaxColumnWidth].
func ClampColumnWidth(pct float64) float64 {
	if pct != pct { // NaN
		return 50
	}
	if pct < MinColumnWidth {
		return MinColumnWidth
	}
	if pct > MaxColumnWidth {
		return MaxColumnWidth
	}
	return pct
}
