package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfo-dev/pfo/internal/schema"
)

// Header is the checkpoint header row.
const Header = "Data;Descrição;Valor;Saldo;Categoria;Banco/Corretora"

// Delimiter separates checkpoint fields.
const Delimiter = ';'

// CheckpointPrefix starts every checkpoint file name.
const CheckpointPrefix = "checkpoint_"

const (
	numFields      = 6
	colDate        = 0
	colDescription = 1
	colAmount      = 2
	colBalance     = 3
	colCategory    = 4
	colInstitution = 5
)

// WriteEntries writes a checkpoint (including header) to w.
func WriteEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if err := cw.Write(strings.Split(Header, string(Delimiter))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an Entry to a checkpoint row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colDate] = e.Date.Format(schema.DateLayout)
	row[colDescription] = e.Description
	row[colAmount] = e.Amount.StringFixed(2)
	row[colBalance] = e.balance.StringFixed(2)
	row[colCategory] = e.Category
	row[colInstitution] = e.Institution
	return row
}

// Export writes the whole table to path as a checkpoint.
func (s *Store) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating checkpoint dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating checkpoint: %w", err)
	}
	if err := WriteEntries(f, s.entries); err != nil {
		f.Close()
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing checkpoint: %w", err)
	}
	s.log.Debug().Str("path", path).Int("rows", len(s.entries)).Msg("checkpoint exported")
	return nil
}

// CheckpointName returns a checkpoint file name stamped with now.
func CheckpointName(now time.Time) string {
	return CheckpointPrefix + now.Format("20060102_150405") + ".csv"
}
