// Command vqlite is a single-file, single-table key-value store with a
// REPL front end, backed by a disk B+tree.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"vqlite/dberr"
	"vqlite/repl"
	"vqlite/storage"
	"vqlite/table"
)

func main() {
	eagerFlush := flag.Bool("eager-flush", false, "flush all cached pages to disk after every successful insert")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Must supply a database filename")
		os.Exit(1)
	}
	filename := flag.Arg(0)

	store, err := storage.OpenFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	t, err := table.Open(store)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	run(t, *eagerFlush, os.Stdin, os.Stdout)
}

func run(t *table.Table, eagerFlush bool, in *os.File, out *os.File) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, repl.Prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Close()
			return
		}
		line = trimNewline(line)

		exit, err := repl.RunLine(t, line, out)
		if exit {
			t.Close()
			os.Exit(0)
		}
		if err != nil {
			fmt.Fprintln(out, err)
			if dberr.IsFatal(err) {
				t.Close()
				os.Exit(1)
			}
			continue
		}
		if stmt, perr := repl.Prepare(line); eagerFlush && perr == nil && stmt.Type == repl.StatementInsert {
			if err := t.Flush(); err != nil {
				fmt.Fprintln(out, err)
				os.Exit(1)
			}
		}
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
