// Package repl implements the command loop glue: meta-commands, statement
// parsing, and statement execution against a table.Table.
package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"vqlite/dberr"
	"vqlite/table"
)

// ErrExit is returned by DoMetaCommand when the line was ".exit".
var ErrExit = errors.New("exit requested")

// StatementType distinguishes the two statement kinds the VM understands.
type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

// Statement is a parsed, not-yet-executed command.
type Statement struct {
	Type   StatementType
	RowVal table.Row
}

// Prompt is written before each line is read.
const Prompt = "db > "

// IsMetaCommand reports whether line is routed to DoMetaCommand rather
// than statement preparation.
func IsMetaCommand(line string) bool {
	return strings.HasPrefix(line, ".")
}

// DoMetaCommand handles a line beginning with '.'. It returns ErrExit for
// ".exit" so the caller can close the table before terminating.
func DoMetaCommand(line string, t *table.Table, w io.Writer) error {
	switch line {
	case ".exit":
		return ErrExit
	case ".btree":
		fmt.Fprintln(w, "Tree:")
		return t.PrintTree(w, t.RootPageNum, 0)
	case ".constants":
		t.PrintConstants(w)
		return nil
	default:
		return dberr.UnrecognizedCommand(line)
	}
}

// Prepare parses line into a Statement. Only "insert ..." and "select" are
// recognized.
func Prepare(line string) (Statement, error) {
	switch {
	case strings.HasPrefix(line, "insert"):
		return prepareInsert(line)
	case line == "select" || strings.HasPrefix(line, "select"):
		return Statement{Type: StatementSelect}, nil
	default:
		return Statement{}, dberr.UnrecognizedStatement(line)
	}
}

func prepareInsert(line string) (Statement, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Statement{}, dberr.ErrSyntaxError
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return Statement{}, dberr.ErrSyntaxError
	}
	if id < 0 {
		return Statement{}, dberr.ErrNegativeID
	}
	username, email := fields[2], fields[3]
	if len(username) > table.UsernameSize || len(email) > table.EmailSize {
		return Statement{}, dberr.ErrStringTooLong
	}
	return Statement{
		Type:   StatementInsert,
		RowVal: table.Row{ID: uint32(id), Username: username, Email: email},
	}, nil
}

// Execute runs stmt against t, writing any select output to w.
func Execute(stmt Statement, t *table.Table, w io.Writer) error {
	switch stmt.Type {
	case StatementInsert:
		return executeInsert(stmt, t)
	case StatementSelect:
		return executeSelect(t, w)
	default:
		return dberr.Fatalf("unhandled statement type %v", stmt.Type)
	}
}

func executeInsert(stmt Statement, t *table.Table) error {
	row := stmt.RowVal
	cur, err := t.Find(row.ID)
	if err != nil {
		return err
	}
	if existingKey, ok, err := cur.KeyIfPresent(); err != nil {
		return err
	} else if ok && existingKey == row.ID {
		return dberr.ErrDuplicateKey
	}
	return table.InsertAt(cur, row.ID, row)
}

func executeSelect(t *table.Table, w io.Writer) error {
	cur, err := t.Start()
	if err != nil {
		return err
	}
	for !cur.EndOfTable {
		buf, err := cur.Value()
		if err != nil {
			return err
		}
		row, err := table.DeserializeRow(buf)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, row.String())
		if err := cur.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// RunLine executes a single input line: meta-command or prepared
// statement. It reports exitRequested so the caller can close the table
// and terminate without treating ".exit" as an error.
func RunLine(t *table.Table, line string, w io.Writer) (exitRequested bool, err error) {
	if IsMetaCommand(line) {
		err := DoMetaCommand(line, t, w)
		if err == ErrExit {
			return true, nil
		}
		return false, err
	}
	stmt, err := Prepare(line)
	if err != nil {
		return false, err
	}
	if err := Execute(stmt, t, w); err != nil {
		return false, err
	}
	fmt.Fprintln(w, "Executed.")
	return false, nil
}
