// Package history keeps an append-only CSV record of what was done to the
// ledger and which checkpoint each change produced.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Actions recorded by the CLI.
const (
	ActionIngest = "ingest"
	ActionImport = "import"
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionRemove = "remove"
)

// FileName is the history file inside the work dir.
const FileName = "history.csv"

// Entry is one row in the history log.
type Entry struct {
	Timestamp   time.Time
	Action      string
	Source      string
	Institution string
	Rows        int
	Checkpoint  string
}

// Header is the CSV header for history.csv.
const Header = "timestamp,action,source,institution,rows,checkpoint"

const (
	numFields      = 6
	colTimestamp   = 0
	colAction      = 1
	colSource      = 2
	colInstitution = 3
	colRows        = 4
	colCheckpoint  = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = e.Action
	row[colSource] = e.Source
	row[colInstitution] = e.Institution
	row[colRows] = strconv.Itoa(e.Rows)
	row[colCheckpoint] = e.Checkpoint
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	rows, err := strconv.Atoi(record[colRows])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows %q: %w", record[colRows], err)
	}

	return Entry{
		Timestamp:   ts,
		Action:      record[colAction],
		Source:      record[colSource],
		Institution: record[colInstitution],
		Rows:        rows,
		Checkpoint:  record[colCheckpoint],
	}, nil
}

// Append writes entries to <dir>/history.csv, creating the file and header
// if needed.
func Append(dir string, entries ...Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/history.csv, or nothing if the file
// does not exist yet.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
