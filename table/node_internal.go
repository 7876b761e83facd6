package table

import (
	"encoding/binary"

	"vqlite/dberr"
	"vqlite/pager"
)

// InternalNode is a logical view over a page buffer holding num_keys
// (child pointer, separator key) cells plus a dedicated right_child
// pointer for the rightmost subtree: num_keys+1 children in all.
type InternalNode struct {
	Page *pager.Page
}

// Internal interprets p as an internal node.
func Internal(p *pager.Page) InternalNode { return InternalNode{Page: p} }

func (n InternalNode) PageNum() uint32      { return n.Page.Num }
func (n InternalNode) IsRoot() bool         { return n.Page.IsRoot() }
func (n InternalNode) SetIsRoot(v bool)     { n.Page.SetIsRoot(v) }
func (n InternalNode) Parent() uint32       { return n.Page.Parent() }
func (n InternalNode) SetParent(v uint32)   { n.Page.SetParent(v) }

func (n InternalNode) NumKeys() uint32 {
	return binary.LittleEndian.Uint32(n.Page.Data[internalNumKeysOffset : internalNumKeysOffset+internalNumKeysSize])
}

func (n InternalNode) SetNumKeys(v uint32) {
	binary.LittleEndian.PutUint32(n.Page.Data[internalNumKeysOffset:internalNumKeysOffset+internalNumKeysSize], v)
}

func (n InternalNode) RightChild() uint32 {
	return binary.LittleEndian.Uint32(n.Page.Data[internalRightChildOff : internalRightChildOff+internalRightChildSize])
}

func (n InternalNode) SetRightChild(v uint32) {
	binary.LittleEndian.PutUint32(n.Page.Data[internalRightChildOff:internalRightChildOff+internalRightChildSize], v)
}

func (n InternalNode) cellOffset(i uint32) int {
	return InternalHeaderSize + int(i)*InternalCellSize
}

// ChildPtr returns cell i's child page number (the left subtree of key i).
func (n InternalNode) ChildPtr(i uint32) uint32 {
	off := n.cellOffset(i)
	return binary.LittleEndian.Uint32(n.Page.Data[off : off+internalChildSize])
}

func (n InternalNode) SetChildPtr(i uint32, child uint32) {
	off := n.cellOffset(i)
	binary.LittleEndian.PutUint32(n.Page.Data[off:off+internalChildSize], child)
}

func (n InternalNode) Key(i uint32) uint32 {
	off := n.cellOffset(i) + internalChildSize
	return binary.LittleEndian.Uint32(n.Page.Data[off : off+internalKeySize])
}

func (n InternalNode) SetKey(i uint32, key uint32) {
	off := n.cellOffset(i) + internalChildSize
	binary.LittleEndian.PutUint32(n.Page.Data[off:off+internalKeySize], key)
}

// Child returns the page number of the i-th child (0..NumKeys inclusive):
// for i == NumKeys this is RightChild, otherwise the i-th cell's ChildPtr.
func (n InternalNode) Child(i uint32) (uint32, error) {
	numKeys := n.NumKeys()
	if i > numKeys {
		return 0, dberr.Fatalf("Tried to access child_num %d > num_keys %d", i, numKeys)
	}
	if i == numKeys {
		return n.RightChild(), nil
	}
	return n.ChildPtr(i), nil
}

// SetChild sets the page number of the i-th child, symmetric with Child.
func (n InternalNode) SetChild(i uint32, pageNum uint32) {
	if i == n.NumKeys() {
		n.SetRightChild(pageNum)
		return
	}
	n.SetChildPtr(i, pageNum)
}

// GetMaxKey returns the largest key reachable under this node: the
// rightmost key of its right child, recursively down to a leaf.
func GetMaxKey(pg *pager.Page, fetch func(uint32) (*pager.Page, error)) (uint32, error) {
	if pg.NodeType() == pager.NodeTypeLeaf {
		return Leaf(pg).GetMaxKey(), nil
	}
	n := Internal(pg)
	right, err := fetch(n.RightChild())
	if err != nil {
		return 0, err
	}
	return GetMaxKey(right, fetch)
}

// findChildIndex returns the index of the child subtree that may contain
// key: the smallest index i such that n.Key(i) >= key, or NumKeys if key
// is greater than every separator (meaning the right child subtree).
func findChildIndex(n InternalNode, key uint32) uint32 {
	lo, hi := uint32(0), n.NumKeys()
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
