// Package command holds the catalog of insertable block kinds and the
// filter behind the slash-command menu.
package command

import "github.com/kobzarvs/qblocks/internal/block"

// Entry is one insertable block kind.
type Entry struct {
	// Type is the block kind the entry inserts or converts to.
	Type block.Type

	// Label is the menu title.
	Label string

	// Description is the one-line hint shown under the label.
	Description string

	// Keywords are extra search terms.
	Keywords []string
}

var catalog = []Entry{
	{Type: block.TypeParagraph, Label: "Text", Description: "Plain paragraph", Keywords: []string{"paragraph", "plain", "p"}},
	{Type: block.TypeHeading1, Label: "Heading 1", Description: "Large section heading", Keywords: []string{"h1", "title"}},
	{Type: block.TypeHeading2, Label: "Heading 2", Description: "Medium section heading", Keywords: []string{"h2", "subtitle"}},
	{Type: block.TypeHeading3, Label: "Heading 3", Description: "Small section heading", Keywords: []string{"h3"}},
	{Type: block.TypeBullet, Label: "Bulleted list", Description: "Simple bulleted list", Keywords: []string{"ul", "unordered", "bullet"}},
	{Type: block.TypeNumbered, Label: "Numbered list", Description: "List with numbering", Keywords: []string{"ol", "ordered", "1."}},
	{Type: block.TypeTodo, Label: "To-do list", Description: "Track tasks with a checkbox", Keywords: []string{"todo", "task", "checkbox", "[]"}},
	{Type: block.TypeQuote, Label: "Quote", Description: "Capture a quotation", Keywords: []string{"blockquote", "citation"}},
	{Type: block.TypeCallout, Label: "Callout", Description: "Make writing stand out", Keywords: []string{"note", "info", "warning", "tip"}},
	{Type: block.TypeCode, Label: "Code", Description: "Code snippet with highlighting", Keywords: []string{"snippet", "pre", "source"}},
	{Type: block.TypeMath, Label: "Math equation", Description: "Display a formula", Keywords: []string{"latex", "tex", "formula", "equation"}},
	{Type: block.TypeDivider, Label: "Divider", Description: "Visually divide blocks", Keywords: []string{"hr", "separator", "line", "---"}},
	{Type: block.TypeTable, Label: "Table", Description: "Grid of cells", Keywords: []string{"grid", "rows", "columns", "spreadsheet"}},
}

// Catalog returns a copy of the builtin entries in menu order.
func Catalog() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the entry for t.
func Lookup(t block.Type) (Entry, bool) {
	for _, e := range catalog {
		if e.Type == t {
			return e, true
		}
	}
	return Entry{}, false
}
