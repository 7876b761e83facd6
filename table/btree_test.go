package table

import (
	"testing"

	"vqlite/dberr"
	"vqlite/pager"
	"vqlite/storage"
)

func mustOpenTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := Open(storage.NewMemoryStorage())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tbl
}

func insertRow(t *testing.T, tbl *Table, id uint32) {
	t.Helper()
	cur, err := tbl.Find(id)
	if err != nil {
		t.Fatalf("Find(%d): %v", id, err)
	}
	row := Row{ID: id, Username: "user", Email: "user@example.com"}
	if err := InsertAt(cur, id, row); err != nil {
		t.Fatalf("InsertAt(%d): %v", id, err)
	}
}

func selectAll(t *testing.T, tbl *Table) []uint32 {
	t.Helper()
	cur, err := tbl.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	var ids []uint32
	for !cur.EndOfTable {
		buf, err := cur.Value()
		if err != nil {
			t.Fatalf("Value: %v", err)
		}
		row, err := DeserializeRow(buf)
		if err != nil {
			t.Fatalf("DeserializeRow: %v", err)
		}
		ids = append(ids, row.ID)
		if err := cur.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	return ids
}

func TestInsertAscendingOrder(t *testing.T) {
	tbl := mustOpenTable(t)
	for i := uint32(0); i < uint32(LeafMaxCells); i++ {
		insertRow(t, tbl, i)
	}
	got := selectAll(t, tbl)
	if len(got) != LeafMaxCells {
		t.Fatalf("got %d rows, want %d", len(got), LeafMaxCells)
	}
	for i, id := range got {
		if id != uint32(i) {
			t.Fatalf("index %d: got id %d, want %d", i, id, i)
		}
	}
}

func TestInsertDescendingOrderKeepsKeyOrder(t *testing.T) {
	tbl := mustOpenTable(t)
	n := uint32(LeafMaxCells)
	for i := n; i > 0; i-- {
		insertRow(t, tbl, i-1)
	}
	got := selectAll(t, tbl)
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("not sorted at %d: %d >= %d", i, got[i-1], got[i])
		}
	}
}

func TestDuplicateKeyDetected(t *testing.T) {
	tbl := mustOpenTable(t)
	insertRow(t, tbl, 5)
	cur, err := tbl.Find(5)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	key, ok, err := cur.KeyIfPresent()
	if err != nil {
		t.Fatalf("KeyIfPresent: %v", err)
	}
	if !ok || key != 5 {
		t.Fatalf("expected duplicate detection at key 5, got ok=%v key=%d", ok, key)
	}
}

func TestLeafSplitPreservesAllRowsAndOrder(t *testing.T) {
	tbl := mustOpenTable(t)
	n := uint32(LeafMaxCells) + 5
	for i := uint32(0); i < n; i++ {
		insertRow(t, tbl, i)
	}
	got := selectAll(t, tbl)
	if uint32(len(got)) != n {
		t.Fatalf("got %d rows, want %d", len(got), n)
	}
	for i, id := range got {
		if id != uint32(i) {
			t.Fatalf("index %d: got id %d, want %d", i, id, i)
		}
	}
}

func TestLeafSplitPromotesRootToInternal(t *testing.T) {
	tbl := mustOpenTable(t)
	for i := uint32(0); i < uint32(LeafMaxCells)+1; i++ {
		insertRow(t, tbl, i)
	}
	rootPage, err := tbl.Pager.Page(tbl.RootPageNum)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if got := rootPage.NodeType(); got != pager.NodeTypeInternal {
		t.Fatalf("expected root to become internal after split, got node type %v", got)
	}
	root := Internal(rootPage)
	if root.NumKeys() != 1 {
		t.Fatalf("expected root with 1 key after first split, got %d", root.NumKeys())
	}
}

func TestLeafChainTraversalAcrossManySplits(t *testing.T) {
	tbl := mustOpenTable(t)
	// Ascending inserts split the rightmost leaf until the root holds
	// InternalMaxCells keys: that many half-full left leaves plus one full
	// rightmost leaf, the most rows ascending order fits.
	n := uint32(LeafLeftSplitCount*InternalMaxCells + LeafMaxCells)
	for i := uint32(0); i < n; i++ {
		insertRow(t, tbl, i)
	}
	got := selectAll(t, tbl)
	if uint32(len(got)) != n {
		t.Fatalf("got %d rows, want %d", len(got), n)
	}
	for i, id := range got {
		if id != uint32(i) {
			t.Fatalf("index %d: got id %d, want %d", i, id, i)
		}
	}
}

func TestSeparatorKeyUpdatedAfterSplit(t *testing.T) {
	tbl := mustOpenTable(t)
	for i := uint32(0); i < uint32(LeafMaxCells)+1; i++ {
		insertRow(t, tbl, i)
	}
	rootPage, err := tbl.Pager.Page(tbl.RootPageNum)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	root := Internal(rootPage)
	leftChildNum, err := root.Child(0)
	if err != nil {
		t.Fatalf("Child: %v", err)
	}
	leftChildPage, err := tbl.Pager.Page(leftChildNum)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	leftMax := Leaf(leftChildPage).GetMaxKey()
	if root.Key(0) != leftMax {
		t.Fatalf("separator key %d does not match left child max %d", root.Key(0), leftMax)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	store := storage.NewMemoryStorage()
	tbl, err := Open(store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := uint32(0); i < 5; i++ {
		insertRow(t, tbl, i)
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(store)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := selectAll(t, reopened)
	if len(got) != 5 {
		t.Fatalf("got %d rows after reopen, want 5", len(got))
	}
}

// Internal-node splitting is not implemented; enough ascending inserts to
// overflow InternalMaxCells on the root must surface as a fatal error
// rather than silently corrupt the tree.
func TestInternalNodeOverflowIsFatal(t *testing.T) {
	tbl := mustOpenTable(t)
	var lastErr error
	for i := uint32(0); i < 200; i++ {
		cur, err := tbl.Find(i)
		if err != nil {
			lastErr = err
			break
		}
		row := Row{ID: i, Username: "user", Email: "user@example.com"}
		if err := InsertAt(cur, i, row); err != nil {
			lastErr = err
			break
		}
	}
	if lastErr == nil {
		t.Fatalf("expected internal node overflow to surface as an error within 200 inserts")
	}
	if !dberr.IsFatal(lastErr) {
		t.Fatalf("expected a fatal error, got %v", lastErr)
	}
}
