package table

import (
	"fmt"
	"io"
	"strings"

	"vqlite/pager"
	"vqlite/storage"
)

// Table owns the pager and the fixed root page number. It is the single
// entry point the REPL/VM layer talks to.
type Table struct {
	Pager       *pager.Pager
	RootPageNum uint32
}

// Open wraps store in a pager and, if the backing medium is empty,
// initializes page 0 as an empty root leaf.
func Open(store storage.Storage) (*Table, error) {
	p, err := pager.Open(store)
	if err != nil {
		return nil, err
	}
	t := &Table{Pager: p, RootPageNum: RootPageNum}
	if p.NumPages() == 0 {
		root, err := p.NewLeafPage(RootPageNum)
		if err != nil {
			return nil, err
		}
		root.SetIsRoot(true)
	}
	return t, nil
}

// Close flushes all cached pages and releases the backing store.
func (t *Table) Close() error {
	return t.Pager.Close()
}

// Flush writes all cached pages to the backing store without closing it,
// used by the optional eager-flush durability mode.
func (t *Table) Flush() error {
	return t.Pager.Flush()
}

// Find returns a cursor positioned at key's cell (whether or not it is
// occupied).
func (t *Table) Find(key uint32) (Cursor, error) {
	return Find(t, key)
}

// Start returns a cursor at the first row in key order.
func (t *Table) Start() (Cursor, error) {
	return Start(t)
}

// PrintConstants writes the layout constants in the order and format the
// .constants meta-command reports them.
func (t *Table) PrintConstants(w io.Writer) {
	fmt.Fprintln(w, "Constants:")
	fmt.Fprintf(w, "ROW_SIZE: %d\n", RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", pager.CommonHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", LeafHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", LeafCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", LeafSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", LeafMaxCells)
}

// PrintTree recursively dumps the tree rooted at pageNum, matching the
// two-space-per-level indentation and child/key traversal order of the
// .btree meta-command.
func (t *Table) PrintTree(w io.Writer, pageNum uint32, indentLevel int) error {
	pg, err := t.Pager.Page(pageNum)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", indentLevel)

	switch pg.NodeType() {
	case pager.NodeTypeLeaf:
		leaf := Leaf(pg)
		numCells := leaf.NumCells()
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, numCells)
		childIndent := strings.Repeat("  ", indentLevel+1)
		for i := uint32(0); i < numCells; i++ {
			fmt.Fprintf(w, "%s- %d\n", childIndent, leaf.Key(i))
		}
	case pager.NodeTypeInternal:
		internal := Internal(pg)
		numKeys := internal.NumKeys()
		fmt.Fprintf(w, "%s- internal (size %d)\n", indent, numKeys)
		childIndent := strings.Repeat("  ", indentLevel+1)
		for i := uint32(0); i < numKeys; i++ {
			child, err := internal.Child(i)
			if err != nil {
				return err
			}
			if err := t.PrintTree(w, child, indentLevel+1); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s- key %d\n", childIndent, internal.Key(i))
		}
		if err := t.PrintTree(w, internal.RightChild(), indentLevel+1); err != nil {
			return err
		}
	}
	return nil
}
