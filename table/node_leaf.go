package table

import (
	"encoding/binary"

	"vqlite/pager"
)

// LeafNode is a logical view over a page buffer holding sorted
// (key, row) cells plus a pointer to the right sibling leaf. It does not
// own the buffer; the pager does.
type LeafNode struct {
	Page *pager.Page
}

// Leaf interprets p as a leaf node.
func Leaf(p *pager.Page) LeafNode { return LeafNode{Page: p} }

func (n LeafNode) PageNum() uint32 { return n.Page.Num }
func (n LeafNode) IsRoot() bool    { return n.Page.IsRoot() }
func (n LeafNode) SetIsRoot(v bool) { n.Page.SetIsRoot(v) }
func (n LeafNode) Parent() uint32   { return n.Page.Parent() }
func (n LeafNode) SetParent(v uint32) { n.Page.SetParent(v) }

func (n LeafNode) NumCells() uint32 {
	return binary.LittleEndian.Uint32(n.Page.Data[leafNumCellsOffset : leafNumCellsOffset+leafNumCellsSize])
}

func (n LeafNode) SetNumCells(v uint32) {
	binary.LittleEndian.PutUint32(n.Page.Data[leafNumCellsOffset:leafNumCellsOffset+leafNumCellsSize], v)
}

func (n LeafNode) NextLeaf() uint32 {
	return binary.LittleEndian.Uint32(n.Page.Data[leafNextLeafOffset : leafNextLeafOffset+leafNextLeafSize])
}

func (n LeafNode) SetNextLeaf(v uint32) {
	binary.LittleEndian.PutUint32(n.Page.Data[leafNextLeafOffset:leafNextLeafOffset+leafNextLeafSize], v)
}

func (n LeafNode) cellOffset(i uint32) int {
	return LeafHeaderSize + int(i)*LeafCellSize
}

func (n LeafNode) Key(i uint32) uint32 {
	off := n.cellOffset(i)
	return binary.LittleEndian.Uint32(n.Page.Data[off : off+leafKeySize])
}

func (n LeafNode) SetKey(i uint32, key uint32) {
	off := n.cellOffset(i)
	binary.LittleEndian.PutUint32(n.Page.Data[off:off+leafKeySize], key)
}

// Value returns the mutable RowSize-byte slice holding cell i's row payload.
func (n LeafNode) Value(i uint32) []byte {
	off := n.cellOffset(i) + leafKeySize
	return n.Page.Data[off : off+RowSize]
}

// GetMaxKey returns the largest key in the node. The node must be non-empty.
func (n LeafNode) GetMaxKey() uint32 {
	return n.Key(n.NumCells() - 1)
}

// copyLeafCell copies cell srcIdx of src into cell dstIdx of dst. Safe to
// use with dst == src as long as the caller respects the high-to-low
// iteration order the split algorithm requires.
func copyLeafCell(dst, src LeafNode, dstIdx, srcIdx uint32) {
	dstOff := dst.cellOffset(dstIdx)
	srcOff := src.cellOffset(srcIdx)
	copy(dst.Page.Data[dstOff:dstOff+LeafCellSize], src.Page.Data[srcOff:srcOff+LeafCellSize])
}

// leafFindCell returns the smallest cell index whose key is >= key, or
// NumCells() if no such cell exists. This is both the cursor position for
// search and the insertion point for insert.
func leafFindCell(n LeafNode, key uint32) uint32 {
	lo, hi := uint32(0), n.NumCells()
	for lo != hi {
		mid := (lo + hi) / 2
		if n.Key(mid) >= key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
