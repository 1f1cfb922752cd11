package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ProcessedDir is the subdirectory of the import dir that ingested files are
// moved into.
const ProcessedDir = "processed"

// Pending is a CSV export waiting in the import directory.
type Pending struct {
	Name    string
	Path    string
	ModTime time.Time
}

// ImportDir is the drop folder configured as import_dir. Banks reuse export
// names month after month, so a processed file never replaces an earlier one.
type ImportDir struct {
	Root string
	Now  func() time.Time // suffix clock for name clashes; time.Now when nil
}

// Processed returns the directory ingested files are moved into.
func (d ImportDir) Processed() string {
	return filepath.Join(d.Root, ProcessedDir)
}

// Scan lists the CSV files directly inside the import directory, sorted by
// name. A missing directory has nothing pending.
func (d ImportDir) Scan() ([]Pending, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var pending []Pending
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		pending = append(pending, Pending{
			Name:    e.Name(),
			Path:    filepath.Join(d.Root, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Name < pending[j].Name })
	return pending, nil
}

// MarkProcessed moves p into the processed directory and returns its new
// path. When the name is taken, a timestamp is added before the extension.
func (d ImportDir) MarkProcessed(p Pending) (string, error) {
	if err := os.MkdirAll(d.Processed(), 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(d.Processed(), p.Name)
	if _, err := os.Stat(dst); err == nil {
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}
		ext := filepath.Ext(p.Name)
		stem := strings.TrimSuffix(p.Name, ext)
		dst = filepath.Join(d.Processed(), stem+"_"+now().Format("20060102_150405")+ext)
	}
	if err := os.Rename(p.Path, dst); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", p.Name, err)
	}
	return dst, nil
}
