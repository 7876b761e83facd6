package storage

import "github.com/pkg/errors"

// MemoryStorage is an in-memory Storage for tests. Pages are kept in a
// sparse map so a file with holes (pages never written) behaves like a
// real file with unallocated regions reading back as zero.
type MemoryStorage struct {
	pages map[uint32][]byte
	size  int64
}

// NewMemoryStorage returns an empty in-memory backing store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{pages: make(map[uint32][]byte)}
}

func (m *MemoryStorage) Size() (int64, error) {
	return m.size, nil
}

// Truncate sets the reported size directly, independent of the pages
// written so far. Tests use this to simulate a corrupt file whose length
// is not a whole multiple of PageSize.
func (m *MemoryStorage) Truncate(size int64) {
	m.size = size
}

func (m *MemoryStorage) ReadPage(pageNum uint32, buf []byte) error {
	if len(buf) != PageSize {
		return errors.Errorf("ReadPage: buffer length %d, want %d", len(buf), PageSize)
	}
	for i := range buf {
		buf[i] = 0
	}
	if p, ok := m.pages[pageNum]; ok {
		copy(buf, p)
	}
	return nil
}

func (m *MemoryStorage) WritePage(pageNum uint32, buf []byte) error {
	if len(buf) != PageSize {
		return errors.Errorf("WritePage: buffer length %d, want %d", len(buf), PageSize)
	}
	cp := make([]byte, PageSize)
	copy(cp, buf)
	m.pages[pageNum] = cp
	if end := int64(pageNum+1) * PageSize; end > m.size {
		m.size = end
	}
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
