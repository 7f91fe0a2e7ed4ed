package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	ColumnID   = "id"
	ColumnName = "name"

	// MinEntries is the number of roles a draw fills.
	MinEntries = 2

	bom = "\ufeff"
)

// Columns is the fixed header schema. Column order in a file is free.
var Columns = []string{ColumnID, ColumnName}

// Record is one roster row. Identity is the row position, not ID.
type Record struct {
	ID   string
	Name string
}

func (r Record) String() string {
	return r.ID + " " + r.Name
}

// Roster holds records in input row order.
type Roster []Record

// Len reports the number of records.
func (r Roster) Len() int { return len(r) }

// Require checks that the roster can fill need roles. An empty roster and a
// short roster are reported as distinct kinds, in that order.
func (r Roster) Require(source string, need int) error {
	if len(r) == 0 {
		return &Error{Kind: EmptyRoster, Source: source}
	}
	if len(r) < need {
		return &Error{Kind: InsufficientRoster, Source: source, Found: len(r), Need: need}
	}
	return nil
}

// Load reads the roster at path and checks it holds at least MinEntries
// records. The file is closed before Load returns.
func Load(path string) (Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: SourceUnavailable, Source: path, Err: err}
	}
	defer f.Close()

	roster, err := Parse(path, f)
	if err != nil {
		return nil, err
	}
	if err := roster.Require(path, MinEntries); err != nil {
		return nil, err
	}
	return roster, nil
}

// Parse decodes comma-separated text with an id,name header. The whole
// stream is consumed; any schema or field-count violation fails the parse
// and no records are returned. A source with no rows, or no bytes at all,
// parses to an empty roster.
func Parse(source string, r io.Reader) (Roster, error) {
	reader := csv.NewReader(r)
	// The header fixes the field count for every following row.
	reader.FieldsPerRecord = 0
	// A quote inside an unquoted field is part of the value: O"Brien.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Roster{}, nil
	}
	if err != nil {
		return nil, readError(source, err)
	}
	idCol, nameCol, err := headerIndex(header)
	if err != nil {
		return nil, &Error{Kind: MalformedInput, Source: source, Err: err}
	}

	roster := Roster{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(source, err)
		}
		for i, field := range row {
			if !utf8.ValidString(field) {
				line, _ := reader.FieldPos(i)
				return nil, &Error{Kind: MalformedInput, Source: source, Err: fmt.Errorf("line %d: invalid UTF-8", line)}
			}
		}
		roster = append(roster, Record{ID: row[idCol], Name: row[nameCol]})
	}
	return roster, nil
}

// headerIndex validates the header against Columns by set equality and
// returns the position of each column.
func headerIndex(header []string) (idCol, nameCol int, err error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	positions := make(map[string]int, len(header))
	for i, col := range header {
		if _, dup := positions[col]; dup {
			return 0, 0, fmt.Errorf("duplicate column %q", col)
		}
		if col != ColumnID && col != ColumnName {
			return 0, 0, fmt.Errorf("unknown column %q, expected columns %s", col, strings.Join(Columns, ","))
		}
		positions[col] = i
	}
	for _, col := range Columns {
		if _, ok := positions[col]; !ok {
			return 0, 0, fmt.Errorf("missing column %q", col)
		}
	}
	return positions[ColumnID], positions[ColumnName], nil
}

// readError separates CSV syntax and shape failures from I/O failures on the
// underlying reader.
func readError(source string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &Error{Kind: MalformedInput, Source: source, Err: err}
	}
	return &Error{Kind: SourceUnavailable, Source: source, Err: err}
}

// Write emits the roster as CSV with the canonical id,name header.
func Write(w io.Writer, roster Roster) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, rec := range roster {
		if err := cw.Write([]string{rec.ID, rec.Name}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the roster to path, creating parent directories.
func Save(path string, roster Roster) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := Write(f, roster); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
