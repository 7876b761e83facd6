package pager

import (
	"testing"

	"vqlite/storage"
)

func TestOpenEmptyStorage(t *testing.T) {
	p, err := Open(storage.NewMemoryStorage())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.NumPages() != 0 {
		t.Errorf("expected 0 pages, got %d", p.NumPages())
	}
}

func TestOpenCorruptSize(t *testing.T) {
	m := storage.NewMemoryStorage()
	m.Truncate(100)
	if _, err := Open(m); err == nil {
		t.Fatalf("expected error opening storage with non-page-aligned size")
	}
}

func TestPageOutOfBoundsFatal(t *testing.T) {
	p, err := Open(storage.NewMemoryStorage())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := p.Page(TableMaxPages); err == nil {
		t.Fatalf("expected fatal error fetching page beyond TableMaxPages")
	}
}

func TestPageCacheHitReturnsSameInstance(t *testing.T) {
	p, err := Open(storage.NewMemoryStorage())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	first, err := p.NewLeafPage(0)
	if err != nil {
		t.Fatalf("NewLeafPage: %v", err)
	}
	second, err := p.Page(0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if first != second {
		t.Errorf("expected same cached *Page instance")
	}
	if p.NumPages() != 1 {
		t.Errorf("expected NumPages()=1, got %d", p.NumPages())
	}
}

func TestCloseFlushesToStorage(t *testing.T) {
	store := storage.NewMemoryStorage()
	p, err := Open(store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pg, err := p.NewLeafPage(0)
	if err != nil {
		t.Fatalf("NewLeafPage: %v", err)
	}
	pg.Data[10] = 0x42
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	buf := make([]byte, storage.PageSize)
	if err := store.ReadPage(0, buf); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if buf[10] != 0x42 {
		t.Errorf("expected flushed byte 0x42, got 0x%X", buf[10])
	}
}

func TestLoadExistingPageFromStorage(t *testing.T) {
	store := storage.NewMemoryStorage()
	buf := make([]byte, storage.PageSize)
	buf[0] = 0x01
	if err := store.WritePage(0, buf); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	p, err := Open(store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.NumPages() != 1 {
		t.Fatalf("expected NumPages()=1, got %d", p.NumPages())
	}
	pg, err := p.Page(0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if pg.Data[0] != 0x01 {
		t.Errorf("expected loaded byte 0x01, got 0x%X", pg.Data[0])
	}
}

func TestUnusedPageNumAppendsOnly(t *testing.T) {
	p, err := Open(storage.NewMemoryStorage())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n := p.UnusedPageNum(); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	if _, err := p.NewLeafPage(0); err != nil {
		t.Fatalf("NewLeafPage: %v", err)
	}
	if n := p.UnusedPageNum(); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
}
