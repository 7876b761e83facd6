package table

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"vqlite/dberr"
)

// Row is the stored record: an id (the primary key), username, and email.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

func (r Row) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}

// SerializeRow encodes row into dst, which must be exactly RowSize bytes.
// Usernames/emails over the column limits are rejected rather than
// silently truncated.
func SerializeRow(row Row, dst []byte) error {
	if len(dst) != RowSize {
		return errors.Errorf("SerializeRow: dst length %d, want %d", len(dst), RowSize)
	}
	if len(row.Username) > UsernameSize || len(row.Email) > EmailSize {
		return dberr.ErrStringTooLong
	}

	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[0:IDSize], row.ID)
	copy(dst[IDSize:IDSize+usernameFieldSize], row.Username)
	copy(dst[IDSize+usernameFieldSize:IDSize+usernameFieldSize+emailFieldSize], row.Email)
	return nil
}

// DeserializeRow decodes src, which must be exactly RowSize bytes.
func DeserializeRow(src []byte) (Row, error) {
	if len(src) != RowSize {
		return Row{}, errors.Errorf("DeserializeRow: src length %d, want %d", len(src), RowSize)
	}
	id := binary.LittleEndian.Uint32(src[0:IDSize])
	username := strings.TrimRight(string(src[IDSize:IDSize+usernameFieldSize]), "\x00")
	email := strings.TrimRight(string(src[IDSize+usernameFieldSize:IDSize+usernameFieldSize+emailFieldSize]), "\x00")
	return Row{ID: id, Username: username, Email: email}, nil
}
