package storage

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// FileStorage is a Storage backed by a regular file opened read/write/create.
type FileStorage struct {
	file *os.File
}

// OpenFile opens (creating if absent) the database file at path.
func OpenFile(path string) (*FileStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "open storage file %q", path)
	}
	return &FileStorage{file: f}, nil
}

func (s *FileStorage) Size() (int64, error) {
	fi, err := s.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat storage file")
	}
	return fi.Size(), nil
}

func (s *FileStorage) ReadPage(pageNum uint32, buf []byte) error {
	if len(buf) != PageSize {
		return errors.Errorf("ReadPage: buffer length %d, want %d", len(buf), PageSize)
	}
	off := int64(pageNum) * PageSize
	n, err := s.file.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "read page %d", pageNum)
	}
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

func (s *FileStorage) WritePage(pageNum uint32, buf []byte) error {
	if len(buf) != PageSize {
		return errors.Errorf("WritePage: buffer length %d, want %d", len(buf), PageSize)
	}
	off := int64(pageNum) * PageSize
	if _, err := s.file.WriteAt(buf, off); err != nil {
		return errors.Wrapf(err, "write page %d", pageNum)
	}
	return errors.Wrap(s.file.Sync(), "sync storage file")
}

func (s *FileStorage) Close() error {
	return errors.Wrap(s.file.Close(), "close storage file")
}
