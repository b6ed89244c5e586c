package block

import (
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kobzarvs/qblocks/internal/logger"
)

// Side says on which side of a target a moved block lands.
type Side int

const (
	Before Side = iota
	After
)

func (s Side) String() string {
	if s == Before {
		return "before"
	}
	return "after"
}

// Edge says on which side of a target a dragged block forms a column.
type Edge int

const (
	Left Edge = iota
	Right
)

func (e Edge) String() string {
	if e == Left {
		return "left"
	}
	return "right"
}

// Cursor is the text caret: a block and a rune offset into its content.
type Cursor struct {
	BlockID string `json:"blockId"`
	Offset  int    `json:"offset"`
}

// Snapshot is the complete document state handed to subscribers after
// every committed mutation.
type Snapshot struct {
	Title  string
	Blocks []Block
	Cursor Cursor
}

// Options configures a Store.
type Options struct {
	// CodeLanguage is the language assigned to new code blocks.
	CodeLanguage string
	// NewID generates block ids, uuid.NewString when nil. Ids already used
	// by the store are rejected and generation is retried.
	NewID func() string
}

// Store is the authoritative in-memory document. Blocks are kept in a flat
// slice in document order; the children of a column container follow it
// contiguously, in ColumnChildren order.
//
// A Store is not safe for concurrent use. Every mutation either commits a
// valid document and notifies subscribers, or leaves the store untouched
// and reports false.
type Store struct {
	title  string
	blocks []Block
	cursor Cursor
	used   map[string]struct{}
	opts   Options

	subs    map[int]func(Snapshot)
	nextSub int
}

// New builds a store from an ordered block list. An empty list seeds one
// empty paragraph. The list is validated; children of column containers may
// appear anywhere in the input and are regrouped under their container.
func New(title string, blocks []Block, opts Options) (*Store, error) {
	if opts.CodeLanguage == "" {
		opts.CodeLanguage = "javascript"
	}
	s := &Store{
		title: title,
		used:  make(map[string]struct{}),
		opts:  opts,
		subs:  make(map[int]func(Snapshot)),
	}
	if err := Validate(blocks); err != nil {
		return nil, err
	}
	s.blocks = regroup(blocks)
	for _, b := range s.blocks {
		s.used[b.ID] = struct{}{}
	}
	s.ensureNonEmpty()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.cursor = Cursor{BlockID: s.firstContentID()}
	return s, nil
}

// Subscribe registers fn to receive a snapshot after every committed
// mutation. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Title: s.title, Blocks: s.Blocks(), Cursor: s.cursor}
}

// Blocks returns a deep copy of the flat block list in document order.
func (s *Store) Blocks() []Block {
	out := make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = b.Clone()
	}
	return out
}

// Len returns the number of blocks, containers and children included.
func (s *Store) Len() int {
	return len(s.blocks)
}

// Block returns a copy of the block with the given id.
func (s *Store) Block(id string) (Block, bool) {
	i := s.index(id)
	if i < 0 {
		return Block{}, false
	}
	return s.blocks[i].Clone(), true
}

// TopLevel returns the blocks and containers rendered at the top level.
func (s *Store) TopLevel() []Block {
	var out []Block
	for _, b := range s.blocks {
		if !b.InColumn() {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Columns returns the children of a container grouped by column index.
func (s *Store) Columns(containerID string) [][]Block {
	ci := s.index(containerID)
	if ci < 0 || !s.blocks[ci].IsColumn {
		return nil
	}
	cols := make([][]Block, len(s.blocks[ci].ColumnWidths))
	for _, b := range s.children(ci) {
		idx := b.Column()
		if idx < 0 || idx >= len(cols) {
			continue
		}
		cols[idx] = append(cols[idx], b.Clone())
	}
	return cols
}

func (s *Store) Title() string {
	return s.title
}

func (s *Store) SetTitle(title string) {
	if title == s.title {
		return
	}
	s.title = title
	s.commit("set_title")
}

func (s *Store) Cursor() Cursor {
	return s.cursor
}

// SetCursor moves the caret. The offset is clamped to the block's content.
func (s *Store) SetCursor(c Cursor) bool {
	i := s.index(c.BlockID)
	if i < 0 || s.blocks[i].IsColumn {
		return false
	}
	c.Offset = clampOffset(c.Offset, s.blocks[i].Content)
	s.cursor = c
	return true
}

// InsertAfter creates a block of kind t immediately after anchorID and
// returns its id. The new block inherits the anchor's indent and column
// membership.
func (s *Store) InsertAfter(anchorID string, t Type) (string, bool) {
	i := s.index(anchorID)
	if i < 0 || !t.Valid() {
		logger.Debug("insert rejected", "anchor", anchorID, "type", t)
		return "", false
	}
	anchor := s.blocks[i]
	b := newBlock(s.newID(), t, s.opts.CodeLanguage)
	if t.Indentable() && !anchor.IsColumn {
		b.Indent = anchor.Indent
	}

	if anchor.InColumn() {
		ci := s.index(anchor.ParentColumnID)
		pos := indexOf(s.blocks[ci].ColumnChildren, anchor.ID) + 1
		b.joinColumn(anchor.ParentColumnID, anchor.Column())
		s.insertChild(ci, pos, b)
	} else {
		_, end := s.span(i)
		s.insertAt(end, b)
	}
	s.cursor = Cursor{BlockID: b.ID}
	s.commit("insert")
	return b.ID, true
}

// Update replaces a block's content. For tables, content carrying row or
// column delimiters also replaces the grid; content without delimiters
// leaves the grid untouched.
func (s *Store) Update(id, content string) bool {
	i := s.index(id)
	if i < 0 || s.blocks[i].IsColumn || s.blocks[i].Type == TypeDivider {
		logger.Debug("update rejected", "id", id)
		return false
	}
	b := &s.blocks[i]
	b.Content = content
	if b.Type == TypeTable {
		if grid, ok := ParseGrid(content); ok {
			b.TableData = grid
		}
	}
	if s.cursor.BlockID == id {
		s.cursor.Offset = clampOffset(s.cursor.Offset, content)
	}
	s.commit("update")
	return true
}

// Delete removes a block. Deleting a container removes its children too.
// A container left with fewer than two populated columns is dissolved, and
// an empty document is reseeded with one empty paragraph.
func (s *Store) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		logger.Debug("delete rejected", "id", id)
		return false
	}
	prev := s.previousContent(i)
	target := s.blocks[i]

	removed := map[string]bool{id: true}
	if target.IsColumn {
		start, end := s.span(i)
		for _, b := range s.blocks[start:end] {
			removed[b.ID] = true
		}
		s.blocks = append(s.blocks[:start], s.blocks[end:]...)
	} else {
		s.removeAt(i)
		if target.InColumn() {
			s.settle(target.ParentColumnID)
		}
	}

	s.ensureNonEmpty()
	if removed[s.cursor.BlockID] || s.index(s.cursor.BlockID) < 0 {
		if prev != "" && s.index(prev) >= 0 {
			pb := s.blocks[s.index(prev)]
			s.cursor = Cursor{BlockID: prev, Offset: utf8.RuneCountInString(pb.Content)}
		} else {
			s.cursor = Cursor{BlockID: s.firstContentID()}
		}
	}
	s.commit("delete")
	return true
}

// Retype changes a block's kind, dropping fields the new kind does not use
// and initializing the ones it does.
func (s *Store) Retype(id string, t Type) bool {
	i := s.index(id)
	if i < 0 || s.blocks[i].IsColumn || !t.Valid() {
		logger.Debug("retype rejected", "id", id, "type", t)
		return false
	}
	b := &s.blocks[i]
	if b.Type == t {
		return true
	}
	b.Type = t
	applyDefaults(b, s.opts.CodeLanguage)
	if s.cursor.BlockID == id {
		s.cursor.Offset = clampOffset(s.cursor.Offset, b.Content)
	}
	s.commit("retype")
	return true
}

// SetIndent shifts a block's indent by delta, clamped to [0, MaxIndent].
func (s *Store) SetIndent(id string, delta int) bool {
	i := s.index(id)
	if i < 0 || !s.blocks[i].Type.Indentable() {
		return false
	}
	next := clampIndent(s.blocks[i].Indent + delta)
	if next == s.blocks[i].Indent {
		return true
	}
	s.blocks[i].Indent = next
	s.commit("indent")
	return true
}

func (s *Store) SetCodeLanguage(id, tag string) bool {
	i := s.index(id)
	if i < 0 || s.blocks[i].Type != TypeCode {
		return false
	}
	s.blocks[i].CodeLanguage = tag
	s.commit("set_language")
	return true
}

func (s *Store) SetChecked(id string, checked bool) bool {
	i := s.index(id)
	if i < 0 || s.blocks[i].Type != TypeTodo {
		return false
	}
	s.blocks[i].Checked = checked
	s.commit("set_checked")
	return true
}

// Move relocates id to just before or after targetID. A moved block adopts
// the target's column membership: it joins the target's column when the
// target is a column child and becomes top level otherwise. Moving a
// container moves its whole group.
func (s *Store) Move(id, targetID string, side Side) bool {
	i, j := s.index(id), s.index(targetID)
	if i < 0 || j < 0 || id == targetID {
		logger.Debug("move rejected", "id", id, "target", targetID)
		return false
	}
	if s.blocks[i].IsColumn {
		return s.moveContainer(i, j, side)
	}

	moved := s.blocks[i]
	srcParent := moved.ParentColumnID
	s.removeAt(i)

	j = s.index(targetID)
	target := s.blocks[j]
	switch {
	case target.IsColumn:
		moved.stripColumn()
		if side == Before {
			s.insertAt(j, moved)
		} else {
			_, end := s.span(j)
			s.insertAt(end, moved)
		}
	case target.InColumn():
		ci := s.index(target.ParentColumnID)
		pos := indexOf(s.blocks[ci].ColumnChildren, target.ID)
		if side == After {
			pos++
		}
		moved.joinColumn(target.ParentColumnID, target.Column())
		s.insertChild(ci, pos, moved)
	default:
		moved.stripColumn()
		if side == Before {
			s.insertAt(j, moved)
		} else {
			s.insertAt(j+1, moved)
		}
	}
	if srcParent != "" {
		s.settle(srcParent)
	}
	s.commit("move")
	return true
}

func (s *Store) moveContainer(i, j int, side Side) bool {
	id := s.blocks[i].ID
	anchor := s.blocks[j]
	if anchor.InColumn() {
		if anchor.ParentColumnID == id {
			return false
		}
		anchor = s.blocks[s.index(anchor.ParentColumnID)]
	}
	start, end := s.span(i)
	group := make([]Block, end-start)
	copy(group, s.blocks[start:end])
	s.blocks = append(s.blocks[:start], s.blocks[end:]...)

	k := s.index(anchor.ID)
	if side == After {
		_, k = s.span(k)
	}
	s.blocks = append(s.blocks[:k], append(group, s.blocks[k:]...)...)
	s.commit("move")
	return true
}

// MakeColumns replaces targetID with a new two-column container holding the
// target and the dragged block; edge says on which side of the target the
// dragged block lands. Neither block may already belong to a column.
func (s *Store) MakeColumns(targetID, draggedID string, edge Edge) (string, bool) {
	i, j := s.index(draggedID), s.index(targetID)
	if i < 0 || j < 0 || i == j {
		return "", false
	}
	dragged, target := s.blocks[i], s.blocks[j]
	if dragged.IsColumn || target.IsColumn || dragged.InColumn() || target.InColumn() {
		logger.Debug("columns rejected", "target", targetID, "dragged", draggedID)
		return "", false
	}
	s.removeAt(i)
	j = s.index(targetID)

	container := Block{
		ID:           s.newID(),
		Type:         TypeColumns,
		IsColumn:     true,
		ColumnWidths: []float64{50, 50},
	}
	first, second := target, dragged
	if edge == Left {
		first, second = dragged, target
	}
	first.joinColumn(container.ID, 0)
	second.joinColumn(container.ID, 1)
	container.ColumnChildren = []string{first.ID, second.ID}

	rest := append([]Block{container, first, second}, s.blocks[j+1:]...)
	s.blocks = append(s.blocks[:j], rest...)
	s.commit("make_columns")
	return container.ID, true
}

// SetColumnWidth sets the first column's width percentage, clamped to
// [MinColumnWidth, MaxColumnWidth]; the second column takes the rest.
func (s *Store) SetColumnWidth(containerID string, pct float64) bool {
	i := s.index(containerID)
	if i < 0 || !s.blocks[i].IsColumn || len(s.blocks[i].ColumnWidths) != 2 {
		return false
	}
	w := ClampColumnWidth(pct)
	widths := s.blocks[i].ColumnWidths
	if widths[0] == w && widths[1] == 100-w {
		return true
	}
	s.blocks[i].ColumnWidths = []float64{w, 100 - w}
	s.commit("resize")
	return true
}

// SetColumnWidths restores a full width list, used to roll back a cancelled
// resize.
func (s *Store) SetColumnWidths(containerID string, widths []float64) bool {
	i := s.index(containerID)
	if i < 0 || !s.blocks[i].IsColumn || len(widths) != len(s.blocks[i].ColumnWidths) {
		return false
	}
	s.blocks[i].ColumnWidths = append([]float64(nil), widths...)
	s.commit("resize")
	return true
}

func (s *Store) commit(op string) {
	logger.Debug("commit", "op", op, "blocks", len(s.blocks))
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}

func (s *Store) newID() string {
	gen := s.opts.NewID
	if gen == nil {
		gen = uuid.NewString
	}
	for attempt := 0; ; attempt++ {
		if attempt == 8 {
			// the host generator keeps colliding
			gen = uuid.NewString
		}
		id := gen()
		if id == "" {
			continue
		}
		if _, taken := s.used[id]; taken {
			continue
		}
		s.used[id] = struct{}{}
		return id
	}
}

func (s *Store) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.blocks {
		if s.blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// span returns the flat range occupied by the block at i: the block itself,
// or a container together with its children.
func (s *Store) span(i int) (int, int) {
	if !s.blocks[i].IsColumn {
		return i, i + 1
	}
	return i, i + 1 + len(s.blocks[i].ColumnChildren)
}

func (s *Store) children(ci int) []Block {
	_, end := s.span(ci)
	return s.blocks[ci+1 : end]
}

func (s *Store) insertAt(i int, b Block) {
	s.blocks = append(s.blocks, Block{})
	copy(s.blocks[i+1:], s.blocks[i:])
	s.blocks[i] = b
}

func (s *Store) insertChild(ci, pos int, b Block) {
	c := &s.blocks[ci]
	c.ColumnChildren = append(c.ColumnChildren, "")
	copy(c.ColumnChildren[pos+1:], c.ColumnChildren[pos:])
	c.ColumnChildren[pos] = b.ID
	s.insertAt(ci+1+pos, b)
}

// removeAt removes a non-container block, unlinking it from its container.
// The container is not settled.
func (s *Store) removeAt(i int) {
	b := s.blocks[i]
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	if !b.InColumn() {
		return
	}
	ci := s.index(b.ParentColumnID)
	if ci < 0 {
		return
	}
	c := &s.blocks[ci]
	if k := indexOf(c.ColumnChildren, b.ID); k >= 0 {
		c.ColumnChildren = append(c.ColumnChildren[:k], c.ColumnChildren[k+1:]...)
	}
}

// settle dissolves a container that no longer has two populated columns,
// promoting its remaining children to top level in place.
func (s *Store) settle(containerID string) {
	ci := s.index(containerID)
	if ci < 0 {
		return
	}
	if distinctColumns(s.children(ci)) >= 2 {
		return
	}
	_, end := s.span(ci)
	for k := ci + 1; k < end; k++ {
		s.blocks[k].stripColumn()
	}
	s.blocks = append(s.blocks[:ci], s.blocks[ci+1:]...)
	logger.Debug("column container dissolved", "id", containerID)
}

func (s *Store) ensureNonEmpty() {
	if len(s.blocks) > 0 {
		return
	}
	s.blocks = append(s.blocks, newBlock(s.newID(), TypeParagraph, s.opts.CodeLanguage))
}

func (s *Store) firstContentID() string {
	for _, b := range s.blocks {
		if !b.IsColumn {
			return b.ID
		}
	}
	return ""
}

// previousContent returns the id of the closest non-container block before
// the one at i, skipping i's own children.
func (s *Store) previousContent(i int) string {
	for k := i - 1; k >= 0; k-- {
		if !s.blocks[k].IsColumn {
			return s.blocks[k].ID
		}
	}
	return ""
}

func distinctColumns(children []Block) int {
	seen := map[int]struct{}{}
	for _, b := range children {
		seen[b.Column()] = struct{}{}
	}
	return len(seen)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func clampOffset(offset int, content string) int {
	n := utf8.RuneCountInString(content)
	if offset < 0 {
		return 0
	}
	if offset > n {
		return n
	}
	return offset
}
