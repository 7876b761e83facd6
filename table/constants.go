package table

import "vqlite/pager"

// Row field sizes. The on-disk row is a fixed C-string-like layout:
// id (4 bytes LE) | username (zero-padded, null-terminator reserved) |
// email (zero-padded, null-terminator reserved). UsernameSize/EmailSize
// are the user-facing length limits; the serialized fields reserve one
// extra byte apiece the way the original's fixed char arrays do.
const (
	IDSize            = 4
	UsernameSize      = 32
	usernameFieldSize = UsernameSize + 1
	EmailSize         = 255
	emailFieldSize    = EmailSize + 1
	RowSize           = IDSize + usernameFieldSize + emailFieldSize
)

// Leaf node header layout, after the common header: num_cells(4) | next_leaf(4).
const (
	leafNumCellsSize   = 4
	leafNumCellsOffset = pager.CommonHeaderSize
	leafNextLeafSize   = 4
	leafNextLeafOffset = leafNumCellsOffset + leafNumCellsSize
	LeafHeaderSize     = leafNextLeafOffset + leafNextLeafSize
)

// Leaf node body layout: a dense array of { key(4) | value(RowSize) } cells.
const (
	leafKeySize         = 4
	LeafCellSize        = leafKeySize + RowSize
	LeafSpaceForCells   = pager.PageSize - LeafHeaderSize
	LeafMaxCells        = LeafSpaceForCells / LeafCellSize
	LeafRightSplitCount = (LeafMaxCells + 1) / 2
	LeafLeftSplitCount  = (LeafMaxCells + 1) - LeafRightSplitCount
)

// Internal node header layout, after the common header: num_keys(4) | right_child(4).
const (
	internalNumKeysSize    = 4
	internalNumKeysOffset  = pager.CommonHeaderSize
	internalRightChildSize = 4
	internalRightChildOff  = internalNumKeysOffset + internalNumKeysSize
	InternalHeaderSize     = internalRightChildOff + internalRightChildSize
)

// Internal node body layout: a dense array of { child_page_num(4) | key(4) } cells.
const (
	internalChildSize = 4
	internalKeySize   = 4
	InternalCellSize  = internalChildSize + internalKeySize

	// InternalMaxCells is the original tutorial's deliberately small limit.
	// Splitting internal nodes is not implemented; exceeding this is fatal.
	InternalMaxCells = 3
)

// RootPageNum is fixed: page 0 is always the root.
const RootPageNum = 0
