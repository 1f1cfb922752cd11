package detect

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempPrefix starts every repaired file name.
const TempPrefix = "tmp_"

// RepairOptions configures a repair pass.
type RepairOptions struct {
	Delimiters []rune           // candidate order; DefaultDelimiters when empty
	WorkDir    string           // where the repaired file is written
	Now        func() time.Time // clock for file naming; time.Now when nil
}

// Repaired is a cleaned, canonical-ordered copy of a source file.
type Repaired struct {
	Path      string
	Delimiter rune
	Rows      int
}

// Remove deletes the repaired file. Safe to call on a nil receiver.
func (r *Repaired) Remove() error {
	if r == nil || r.Path == "" {
		return nil
	}
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing repaired file: %w", err)
	}
	return nil
}

// Repair detects the delimiter of content, rewrites numeric and date cells,
// synthesizes missing canonical columns, and writes the result to a new
// temporary file in opts.WorkDir. The caller owns the file and must Remove it.
func Repair(content string, opts RepairOptions) (*Repaired, error) {
	header := HeaderLine(content)
	delim, err := DetectDelimiter(header, opts.Delimiters)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(content))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV for repair: %w", err)
	}
	for len(records) > 0 && isEmptyRecord(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading CSV for repair: no header")
	}

	proj, err := CanonicalPlan.Resolve(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		for i := range rec {
			rec[i] = RepairCell(rec[i])
		}
		rows = append(rows, proj.Apply(rec))
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	path, err := Materialize(opts.WorkDir, TempName(now()), delim, proj.Header(), rows)
	if err != nil {
		return nil, err
	}
	return &Repaired{Path: path, Delimiter: delim, Rows: len(rows)}, nil
}

func isEmptyRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// TempName returns a repaired-file name: a second-resolution timestamp for
// humans plus a UUID so two repairs in the same second never collide.
func TempName(now time.Time) string {
	return fmt.Sprintf("%s%s_%s.csv", TempPrefix, now.Format("20060102150405"), uuid.NewString())
}

// Materialize writes header and rows to dir/name. It refuses to overwrite an
// existing file.
func Materialize(dir, name string, delim rune, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating work dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating repaired file: %w", err)
	}

	cw := csv.NewWriter(f)
	cw.Comma = delim
	if err := cw.Write(header); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("flushing repaired file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing repaired file: %w", err)
	}
	return path, nil
}
