package block

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
)

var (
	ErrMissingID       = errors.New("block has no id")
	ErrEmptyTable      = errors.New("table grid is empty")
	ErrRaggedTable     = errors.New("table grid is not rectangular")
	ErrOrphanChild     = errors.New("column child has no container")
	ErrThinContainer   = errors.New("column container has fewer than two columns")
	ErrNestedContainer = errors.New("column container nested in a column")
)

// Validate checks every document invariant over an ordered block list and
// returns all violations combined. Children may appear anywhere in the list.
func Validate(blocks []Block) error {
	var err error
	byID := make(map[string]Block, len(blocks))
	for _, b := range blocks {
		if b.ID == "" {
			err = multierr.Append(err, ErrMissingID)
			continue
		}
		if _, dup := byID[b.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate block id %q", b.ID))
			continue
		}
		byID[b.ID] = b
	}

	for _, b := range blocks {
		if b.ID == "" {
			continue
		}
		err = multierr.Append(err, validateBlock(b))
		if b.IsColumn {
			err = multierr.Append(err, validateContainer(b, byID))
		}
		if b.InColumn() {
			err = multierr.Append(err, validateChild(b, byID))
		}
	}
	return err
}

func validateBlock(b Block) error {
	var err error
	if b.IsColumn != (b.Type == TypeColumns) {
		err = multierr.Append(err, fmt.Errorf("block %q: type %q disagrees with column flag", b.ID, b.Type))
	}
	if b.IsColumn && b.ParentColumnID != "" {
		err = multierr.Append(err, fmt.Errorf("block %q: %w", b.ID, ErrNestedContainer))
	}
	if b.ColumnIndex != nil && b.ParentColumnID == "" {
		err = multierr.Append(err, fmt.Errorf("block %q: column index without a container", b.ID))
	}
	if !b.IsColumn && !b.Type.Valid() {
		err = multierr.Append(err, fmt.Errorf("block %q: unknown type %q", b.ID, b.Type))
	}
	if b.Indent < 0 || b.Indent > MaxIndent {
		err = multierr.Append(err, fmt.Errorf("block %q: indent %d out of range", b.ID, b.Indent))
	}
	if !b.Type.Indentable() && b.Indent != 0 {
		err = multierr.Append(err, fmt.Errorf("block %q: %s blocks cannot be indented", b.ID, b.Type))
	}
	if b.TableData != nil {
		if len(b.TableData) == 0 || len(b.TableData[0]) == 0 {
			err = multierr.Append(err, fmt.Errorf("block %q: %w", b.ID, ErrEmptyTable))
		} else {
			for _, row := range b.TableData {
				if len(row) != len(b.TableData[0]) {
					err = multierr.Append(err, fmt.Errorf("block %q: %w", b.ID, ErrRaggedTable))
					break
				}
			}
		}
	}
	return err
}

func validateContainer(c Block, byID map[string]Block) error {
	var err error
	if len(c.ColumnChildren) == 0 {
		return fmt.Errorf("container %q: %w", c.ID, ErrThinContainer)
	}
	indices := map[int]struct{}{}
	seen := make(map[string]struct{}, len(c.ColumnChildren))
	for _, childID := range c.ColumnChildren {
		if _, dup := seen[childID]; dup {
			err = multierr.Append(err, fmt.Errorf("container %q: child %q listed twice", c.ID, childID))
			continue
		}
		seen[childID] = struct{}{}
		child, ok := byID[childID]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("container %q: child %q does not exist", c.ID, childID))
			continue
		}
		if child.ParentColumnID != c.ID {
			err = multierr.Append(err, fmt.Errorf("container %q: child %q points at %q", c.ID, childID, child.ParentColumnID))
		}
		if child.IsColumn {
			err = multierr.Append(err, fmt.Errorf("container %q: child %q: %w", c.ID, childID, ErrNestedContainer))
			continue
		}
		indices[child.Column()] = struct{}{}
	}
	if len(indices) < 2 {
		err = multierr.Append(err, fmt.Errorf("container %q: %w", c.ID, ErrThinContainer))
	}
	if len(c.ColumnWidths) != len(indices) {
		err = multierr.Append(err, fmt.Errorf("container %q: %d widths for %d columns", c.ID, len(c.ColumnWidths), len(indices)))
	}
	sum := 0.0
	for _, w := range c.ColumnWidths {
		sum += w
	}
	if math.Abs(sum-100) > 0.01 {
		err = multierr.Append(err, fmt.Errorf("container %q: widths sum to %v", c.ID, sum))
	}
	return err
}

func validateChild(b Block, byID map[string]Block) error {
	c, ok := byID[b.ParentColumnID]
	if !ok || !c.IsColumn {
		return fmt.Errorf("block %q: %w", b.ID, ErrOrphanChild)
	}
	if indexOf(c.ColumnChildren, b.ID) < 0 {
		return fmt.Errorf("block %q: not listed by container %q", b.ID, c.ID)
	}
	if b.ColumnIndex == nil || *b.ColumnIndex < 0 || *b.ColumnIndex >= len(c.ColumnWidths) {
		return fmt.Errorf("block %q: column index out of range for container %q", b.ID, c.ID)
	}
	return nil
}

// Validate checks the store's current document, including the flat-order
// rule that children follow their container contiguously.
func (s *Store) Validate() error {
	err := Validate(s.blocks)
	for i, b := range s.blocks {
		if !b.IsColumn {
			continue
		}
		for k, childID := range b.ColumnChildren {
			at := i + 1 + k
			if at >= len(s.blocks) || s.blocks[at].ID != childID {
				err = multierr.Append(err, fmt.Errorf("container %q: child %q out of place", b.ID, childID))
				break
			}
		}
	}
	if len(s.blocks) == 0 {
		err = multierr.Append(err, errors.New("document has no blocks"))
	}
	return err
}

// regroup returns a deep copy of a validated list with every container's
// children moved directly behind it in ColumnChildren order.
func regroup(blocks []Block) []Block {
	byID := make(map[string]Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.InColumn() {
			continue
		}
		out = append(out, b.Clone())
		if !b.IsColumn {
			continue
		}
		for _, childID := range b.ColumnChildren {
			out = append(out, byID[childID].Clone())
		}
	}
	return out
}
