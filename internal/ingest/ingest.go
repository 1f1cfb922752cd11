// Package ingest turns a raw bank export into canonical transactions: it
// decodes the file, strips any extract preamble, tries the normalizer chain
// and falls back to a repair pass when the file is not already canonical.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pfo-dev/pfo/internal/detect"
	"github.com/pfo-dev/pfo/internal/model"
	"github.com/pfo-dev/pfo/internal/normalize"
)

// Options are the per-file parameters supplied by the caller.
type Options struct {
	Delimiter   rune   // declared delimiter; detected from the header when 0
	Delimiters  []rune // detection candidates in priority order
	Institution string // tag for rows that do not name their own
	WorkDir     string // where repaired temp files are written; os.TempDir when empty
	Now         func() time.Time
}

// Result is a successfully ingested file.
type Result struct {
	Transactions []model.Transaction
	Delimiter    rune
	Preamble     bool // a full-extract banner was stripped
	Repaired     bool // the repair pass produced the rows
}

// Pipeline ingests files.
type Pipeline struct {
	norm *normalize.Normalizer
	log  zerolog.Logger
}

// New creates a Pipeline.
func New(norm *normalize.Normalizer, log zerolog.Logger) *Pipeline {
	return &Pipeline{norm: norm, log: log}
}

// File ingests the file at path. Either every row is returned or an error;
// a partial table is never produced.
func (p *Pipeline) File(path string, opts Options) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	content, err := detect.Decode(raw)
	if err != nil {
		return nil, err
	}
	content, preamble := detect.StripPreamble(content)
	log := p.log.With().Str("file", path).Logger()
	if preamble {
		log.Debug().Msg("stripped extract preamble")
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim, err = detect.DetectDelimiter(detect.HeaderLine(content), opts.Delimiters)
		if err != nil {
			return nil, err
		}
	}
	log = log.With().Str("delimiter", string(delim)).Logger()

	if !preamble {
		txns, err := p.norm.NormalizeFile(path, delim, opts.Institution)
		if err == nil {
			log.Debug().Int("rows", len(txns)).Msg("ingested without repair")
			return &Result{Transactions: txns, Delimiter: delim}, nil
		}
		if !errors.Is(err, normalize.ErrUnparseableFile) {
			return nil, err
		}
		log.Debug().Err(err).Msg("normalizer chain exhausted, repairing")
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	rep, err := detect.Repair(content, detect.RepairOptions{
		Delimiters: []rune{delim},
		WorkDir:    workDir,
		Now:        opts.Now,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rep.Remove(); err != nil {
			log.Warn().Err(err).Str("temp", rep.Path).Msg("removing repaired file")
		}
	}()

	txns, err := p.norm.LoadCanonical(rep.Path, rep.Delimiter, opts.Institution)
	if err != nil {
		return nil, fmt.Errorf("loading repaired %s: %w", path, err)
	}
	log.Debug().Int("rows", len(txns)).Str("temp", rep.Path).Msg("ingested after repair")
	return &Result{Transactions: txns, Delimiter: delim, Preamble: preamble, Repaired: true}, nil
}
