// Package pager owns the bounded page cache between the B+tree and the
// backing storage.Storage. It knows nothing about leaf or internal cell
// layouts; it hands out raw, common-header-aware page buffers and the
// table package interprets the rest.
package pager

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"vqlite/dberr"
	"vqlite/storage"
)

const (
	// PageSize mirrors storage.PageSize so callers need not import storage
	// just to size buffers.
	PageSize = storage.PageSize

	// TableMaxPages bounds the page cache: a hard capacity of
	// TableMaxPages * PageSize bytes of pages.
	TableMaxPages = 100
)

// NodeType is the tag stored in the first byte of every page's common
// header, distinguishing internal pages from leaf pages.
type NodeType uint8

const (
	NodeTypeInternal NodeType = 0
	NodeTypeLeaf     NodeType = 1
)

// Common node header layout: type(1) | is_root(1) | parent_page_num(4).
const (
	commonNodeTypeOffset = 0
	commonIsRootOffset   = 1
	commonParentOffset   = 2
	CommonHeaderSize     = commonParentOffset + 4
)

// Page is a fixed-size page buffer plus the common header accessors shared
// by every node kind. The pager owns the buffer; Page is handed out as a
// transient, re-fetchable view onto the cache slot.
type Page struct {
	Data [PageSize]byte
	Num  uint32
}

func (p *Page) NodeType() NodeType { return NodeType(p.Data[commonNodeTypeOffset]) }
func (p *Page) SetNodeType(t NodeType) { p.Data[commonNodeTypeOffset] = byte(t) }

func (p *Page) IsRoot() bool { return p.Data[commonIsRootOffset] == 1 }

func (p *Page) SetIsRoot(isRoot bool) {
	if isRoot {
		p.Data[commonIsRootOffset] = 1
	} else {
		p.Data[commonIsRootOffset] = 0
	}
}

func (p *Page) Parent() uint32 {
	return binary.LittleEndian.Uint32(p.Data[commonParentOffset : commonParentOffset+4])
}

func (p *Page) SetParent(parent uint32) {
	binary.LittleEndian.PutUint32(p.Data[commonParentOffset:commonParentOffset+4], parent)
}

// Pager is the bounded cache of page buffers over a storage.Storage.
type Pager struct {
	store    storage.Storage
	pages    [TableMaxPages]*Page
	numPages uint32
}

// Open wraps store, computing the current page count. A backing medium
// whose length is not an exact multiple of PageSize is a corrupt file and
// is reported as a fatal error.
func Open(store storage.Storage) (*Pager, error) {
	size, err := store.Size()
	if err != nil {
		return nil, errors.Wrap(err, "read storage size")
	}
	if size%PageSize != 0 {
		return nil, dberr.Fatal("Db file is not a whole number of pages. Corrupt file.")
	}
	return &Pager{store: store, numPages: uint32(size / PageSize)}, nil
}

// NumPages reports the total known pages, including cached-only pages that
// have not yet been flushed.
func (p *Pager) NumPages() uint32 { return p.numPages }

// Page returns the typed wrapper around the cached buffer for page n,
// loading it from storage on a cache miss. n beyond TableMaxPages is fatal.
func (p *Pager) Page(n uint32) (*Page, error) {
	if n >= TableMaxPages {
		return nil, dberr.Fatalf("Tried to fetch page number out of bounds. %d >= %d", n, TableMaxPages)
	}
	if p.pages[n] == nil {
		pg := &Page{Num: n}
		if n < p.numPages {
			if err := p.store.ReadPage(n, pg.Data[:]); err != nil {
				return nil, dberr.WrapFatal(errors.WithStack(err), "load page %d: %s", n, err)
			}
		}
		p.pages[n] = pg
		if n >= p.numPages {
			p.numPages = n + 1
		}
	}
	return p.pages[n], nil
}

// NewLeafPage obtains page n and (re)initializes it as an empty leaf: common
// header zeroed with NodeTypeLeaf, is_root false, parent 0; leaf-specific
// fields (num_cells, next_leaf) land at zero because the buffer is cleared.
func (p *Pager) NewLeafPage(n uint32) (*Page, error) {
	pg, err := p.Page(n)
	if err != nil {
		return nil, err
	}
	pg.Data = [PageSize]byte{}
	pg.SetNodeType(NodeTypeLeaf)
	pg.SetIsRoot(false)
	pg.SetParent(0)
	return pg, nil
}

// NewInternalPage obtains page n and (re)initializes it as an empty
// internal node, analogous to NewLeafPage.
func (p *Pager) NewInternalPage(n uint32) (*Page, error) {
	pg, err := p.Page(n)
	if err != nil {
		return nil, err
	}
	pg.Data = [PageSize]byte{}
	pg.SetNodeType(NodeTypeInternal)
	pg.SetIsRoot(false)
	pg.SetParent(0)
	return pg, nil
}

// UnusedPageNum returns the next page number that would extend the file.
// Pages are never recycled, so this is always num_pages.
func (p *Pager) UnusedPageNum() uint32 { return p.numPages }

// Flush writes every populated cache slot back to storage without closing
// the underlying store. Used by the optional eager-flush durability mode.
func (p *Pager) Flush() error {
	for i := uint32(0); i < p.numPages; i++ {
		pg := p.pages[i]
		if pg == nil {
			continue
		}
		if err := p.store.WritePage(i, pg.Data[:]); err != nil {
			return errors.Wrapf(err, "flush page %d", i)
		}
	}
	return nil
}

// Close flushes all cached pages and releases the backing store. The pager
// should not be used afterward.
func (p *Pager) Close() error {
	if err := p.Flush(); err != nil {
		return err
	}
	return p.store.Close()
}
