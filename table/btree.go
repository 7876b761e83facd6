package table

import (
	"vqlite/dberr"
	"vqlite/pager"
)

// Cursor addresses a single cell within a leaf page. It is invalidated by
// any operation that splits or otherwise restructures the tree; callers
// re-derive cursors rather than holding them across mutations.
type Cursor struct {
	Table      *Table
	PageNum    uint32
	CellNum    uint32
	EndOfTable bool
}

// findAt descends from pageNum looking for key, returning a cursor at the
// cell key belongs in (whether or not a cell with that exact key exists).
func findAt(t *Table, pageNum uint32, key uint32) (Cursor, error) {
	pg, err := t.Pager.Page(pageNum)
	if err != nil {
		return Cursor{}, err
	}
	switch pg.NodeType() {
	case pager.NodeTypeLeaf:
		leaf := Leaf(pg)
		cellNum := leafFindCell(leaf, key)
		return Cursor{Table: t, PageNum: pageNum, CellNum: cellNum}, nil
	case pager.NodeTypeInternal:
		internal := Internal(pg)
		idx := findChildIndex(internal, key)
		child, err := internal.Child(idx)
		if err != nil {
			return Cursor{}, err
		}
		return findAt(t, child, key)
	default:
		return Cursor{}, dberr.Fatalf("page %d has unrecognized node type", pageNum)
	}
}

// Find returns a cursor at the position key occupies (or would occupy) in
// the table rooted at t.RootPageNum.
func Find(t *Table, key uint32) (Cursor, error) {
	return findAt(t, t.RootPageNum, key)
}

// Start returns a cursor at the first cell of the leftmost leaf.
func Start(t *Table) (Cursor, error) {
	cur, err := findAt(t, t.RootPageNum, 0)
	if err != nil {
		return Cursor{}, err
	}
	pg, err := t.Pager.Page(cur.PageNum)
	if err != nil {
		return Cursor{}, err
	}
	cur.EndOfTable = Leaf(pg).NumCells() == 0
	return cur, nil
}

// Advance moves the cursor to the next cell, crossing to the sibling leaf
// via the next_leaf pointer when the current leaf is exhausted.
func (c *Cursor) Advance() error {
	pg, err := c.Table.Pager.Page(c.PageNum)
	if err != nil {
		return err
	}
	leaf := Leaf(pg)
	c.CellNum++
	if c.CellNum >= leaf.NumCells() {
		next := leaf.NextLeaf()
		if next == 0 {
			c.EndOfTable = true
		} else {
			c.PageNum = next
			c.CellNum = 0
		}
	}
	return nil
}

// Value returns the mutable row bytes the cursor currently addresses.
func (c *Cursor) Value() ([]byte, error) {
	pg, err := c.Table.Pager.Page(c.PageNum)
	if err != nil {
		return nil, err
	}
	return Leaf(pg).Value(c.CellNum), nil
}

// KeyIfPresent reports the key at the cursor's cell and whether the cursor
// sits on an occupied cell (false when it points one past the last cell).
// Comparing that key with the one being inserted is left to the caller.
// Only the cell the cursor already sits on is consulted, matching the
// narrow duplicate check of the original implementation.
func (c *Cursor) KeyIfPresent() (uint32, bool, error) {
	pg, err := c.Table.Pager.Page(c.PageNum)
	if err != nil {
		return 0, false, err
	}
	leaf := Leaf(pg)
	if c.CellNum >= leaf.NumCells() {
		return 0, false, nil
	}
	return leaf.Key(c.CellNum), true, nil
}

func maxKeyOf(t *Table, pg *pager.Page) (uint32, error) {
	return GetMaxKey(pg, t.Pager.Page)
}

// InsertAt inserts (key, row) at the cursor's position, splitting the leaf
// first if it is already full.
func InsertAt(c Cursor, key uint32, row Row) error {
	pg, err := c.Table.Pager.Page(c.PageNum)
	if err != nil {
		return err
	}
	leaf := Leaf(pg)
	numCells := leaf.NumCells()
	if numCells >= LeafMaxCells {
		return splitAndInsert(c.Table, c, key, row)
	}
	if c.CellNum < numCells {
		for i := numCells; i > c.CellNum; i-- {
			copyLeafCell(leaf, leaf, i, i-1)
		}
	}
	leaf.SetNumCells(numCells + 1)
	leaf.SetKey(c.CellNum, key)
	return SerializeRow(row, leaf.Value(c.CellNum))
}

// splitAndInsert splits a full leaf into two, inserting (key, row) into
// whichever half it belongs in, then threads the new leaf into its parent.
func splitAndInsert(t *Table, c Cursor, key uint32, row Row) error {
	oldPage, err := t.Pager.Page(c.PageNum)
	if err != nil {
		return err
	}
	oldLeaf := Leaf(oldPage)
	oldMax, err := maxKeyOf(t, oldPage)
	if err != nil {
		return err
	}

	newPageNum := t.Pager.UnusedPageNum()
	newPage, err := t.Pager.NewLeafPage(newPageNum)
	if err != nil {
		return err
	}
	newLeaf := Leaf(newPage)
	newLeaf.SetNextLeaf(oldLeaf.NextLeaf())
	oldLeaf.SetNextLeaf(newPageNum)

	buf := make([]byte, RowSize)
	for i := int(LeafMaxCells); i >= 0; i-- {
		idx := uint32(i)
		var dst LeafNode
		if idx >= LeafLeftSplitCount {
			dst = newLeaf
		} else {
			dst = oldLeaf
		}
		within := idx % LeafLeftSplitCount

		switch {
		case idx == c.CellNum:
			if err := SerializeRow(row, buf); err != nil {
				return err
			}
			copy(dst.Value(within), buf)
			dst.SetKey(within, key)
		case idx > c.CellNum:
			copyLeafCell(dst, oldLeaf, within, idx-1)
		default:
			copyLeafCell(dst, oldLeaf, within, idx)
		}
	}

	oldLeaf.SetNumCells(LeafLeftSplitCount)
	newLeaf.SetNumCells(LeafRightSplitCount)

	if oldLeaf.IsRoot() {
		return createNewRoot(t, newPageNum)
	}

	parentPageNum := oldLeaf.Parent()
	parentPage, err := t.Pager.Page(parentPageNum)
	if err != nil {
		return err
	}
	updateKey(Internal(parentPage), oldMax, oldLeaf.GetMaxKey())
	newLeaf.SetParent(parentPageNum)
	return internalInsert(t, parentPageNum, newPageNum)
}

// createNewRoot relocates the current root's contents into a fresh page
// (the new left child) and rewrites the root page as a fresh internal node
// pointing at that left child and at rightChildPageNum.
func createNewRoot(t *Table, rightChildPageNum uint32) error {
	rootPage, err := t.Pager.Page(t.RootPageNum)
	if err != nil {
		return err
	}
	rightChildPage, err := t.Pager.Page(rightChildPageNum)
	if err != nil {
		return err
	}

	leftChildPageNum := t.Pager.UnusedPageNum()
	leftChildPage, err := t.Pager.Page(leftChildPageNum)
	if err != nil {
		return err
	}
	leftChildPage.Data = rootPage.Data
	leftChildPage.SetIsRoot(false)

	if leftChildPage.NodeType() == pager.NodeTypeInternal {
		left := Internal(leftChildPage)
		for i := uint32(0); i < left.NumKeys(); i++ {
			childNum, err := left.Child(i)
			if err != nil {
				return err
			}
			child, err := t.Pager.Page(childNum)
			if err != nil {
				return err
			}
			child.SetParent(leftChildPageNum)
		}
		rc, err := t.Pager.Page(left.RightChild())
		if err != nil {
			return err
		}
		rc.SetParent(leftChildPageNum)
	}

	rootPage, err = t.Pager.NewInternalPage(t.RootPageNum)
	if err != nil {
		return err
	}
	rootPage.SetIsRoot(true)
	root := Internal(rootPage)
	root.SetNumKeys(1)
	root.SetChildPtr(0, leftChildPageNum)
	leftMax, err := maxKeyOf(t, leftChildPage)
	if err != nil {
		return err
	}
	root.SetKey(0, leftMax)
	root.SetRightChild(rightChildPageNum)

	leftChildPage.SetParent(t.RootPageNum)
	rightChildPage.SetParent(t.RootPageNum)
	return nil
}

// updateKey rewrites the separator key that used to read oldKey to
// newKey. A no-op if oldKey addressed the implicit right-child subtree,
// which carries no explicit key cell.
func updateKey(parent InternalNode, oldKey, newKey uint32) {
	idx := findChildIndex(parent, oldKey)
	if idx < parent.NumKeys() {
		parent.SetKey(idx, newKey)
	}
}

// internalInsert threads childPageNum into parentPageNum's child list.
// Splitting an internal node is not implemented; exceeding InternalMaxCells
// is a fatal, acknowledged limitation.
func internalInsert(t *Table, parentPageNum uint32, childPageNum uint32) error {
	parentPage, err := t.Pager.Page(parentPageNum)
	if err != nil {
		return err
	}
	parent := Internal(parentPage)

	childPage, err := t.Pager.Page(childPageNum)
	if err != nil {
		return err
	}
	childMaxKey, err := maxKeyOf(t, childPage)
	if err != nil {
		return err
	}
	index := findChildIndex(parent, childMaxKey)

	originalNumKeys := parent.NumKeys()
	if originalNumKeys >= InternalMaxCells {
		return dberr.Fatal("Need to implement splitting internal node")
	}

	rightChildPageNum := parent.RightChild()
	rightChildPage, err := t.Pager.Page(rightChildPageNum)
	if err != nil {
		return err
	}
	rightChildMaxKey, err := maxKeyOf(t, rightChildPage)
	if err != nil {
		return err
	}

	if childMaxKey > rightChildMaxKey {
		parent.SetChildPtr(originalNumKeys, rightChildPageNum)
		parent.SetKey(originalNumKeys, rightChildMaxKey)
		parent.SetRightChild(childPageNum)
	} else {
		for i := originalNumKeys; i > index; i-- {
			copyInternalCell(parent, parent, i, i-1)
		}
		parent.SetChildPtr(index, childPageNum)
		parent.SetKey(index, childMaxKey)
	}
	parent.SetNumKeys(originalNumKeys + 1)
	childPage.SetParent(parentPageNum)
	return nil
}

func copyInternalCell(dst, src InternalNode, dstIdx, srcIdx uint32) {
	dstOff := dst.cellOffset(dstIdx)
	srcOff := src.cellOffset(srcIdx)
	copy(dst.Page.Data[dstOff:dstOff+InternalCellSize], src.Page.Data[srcOff:srcOff+InternalCellSize])
}
