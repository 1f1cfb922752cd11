package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pfo-dev/pfo/internal/config"
	"github.com/pfo-dev/pfo/internal/history"
	"github.com/pfo-dev/pfo/internal/ingest"
	"github.com/pfo-dev/pfo/internal/ledger"
	"github.com/pfo-dev/pfo/internal/logger"
	"github.com/pfo-dev/pfo/internal/normalize"
)

// now is the clock used for checkpoint and history timestamps.
var now = time.Now

// project is an opened pfo directory: its config, the ledger restored from
// the initial load path, and the pipeline used to feed it.
type project struct {
	root     string
	cfg      *config.Config
	log      zerolog.Logger
	pipeline *ingest.Pipeline
	store    *ledger.Store
	dirty    bool
}

func openProject(dir string, logOut io.Writer) (*project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("not a pfo project (run pfo init): %w", err)
	}
	if err := cfg.LoadEnv(root); err != nil {
		return nil, err
	}

	log := logger.New(logOut, cfg.LogLevel)
	norm := normalize.New(normalize.WithNoise(cfg.CSV.Noise), normalize.WithLogger(log))
	p := &project{
		root:     root,
		cfg:      cfg,
		log:      log,
		pipeline: ingest.New(norm, log),
		store:    ledger.NewStore(log),
	}

	if cfg.InitialLoadPath != "" {
		path := config.Resolve(root, cfg.InitialLoadPath)
		res, err := p.restorePipeline().File(path, p.restoreOptions())
		if err != nil {
			return nil, fmt.Errorf("restoring %s: %w", cfg.InitialLoadPath, err)
		}
		if err := p.store.Load(res.Transactions); err != nil {
			return nil, fmt.Errorf("restoring %s: %w", cfg.InitialLoadPath, err)
		}
		log.Debug().Str("path", path).Int("rows", p.store.Len()).Msg("ledger restored")
	}
	p.store.OnChange(func([]ledger.Entry) { p.dirty = true })
	return p, nil
}

// restorePipeline reads checkpoints. Rows in a checkpoint were already
// accepted by the ledger, so nothing is filtered as noise.
func (p *project) restorePipeline() *ingest.Pipeline {
	return ingest.New(normalize.New(normalize.WithNoise(nil), normalize.WithLogger(p.log)), p.log)
}

// restoreOptions fixes the checkpoint delimiter; the configured delimiter
// describes bank exports, not checkpoints.
func (p *project) restoreOptions() ingest.Options {
	opts := p.ingestOptions(p.cfg.Institution)
	opts.Delimiter = ledger.Delimiter
	return opts
}

func (p *project) workDir() string {
	return config.Resolve(p.root, p.cfg.WorkDir)
}

func (p *project) importDir() string {
	return config.Resolve(p.root, p.cfg.ImportDir)
}

func (p *project) ingestOptions(institution string) ingest.Options {
	if institution == "" {
		institution = p.cfg.Institution
	}
	return ingest.Options{
		Delimiter:   p.cfg.Delimiter(),
		Delimiters:  p.cfg.Delimiters(),
		Institution: institution,
		WorkDir:     p.workDir(),
		Now:         now,
	}
}

// checkpoint exports the ledger to a new checkpoint in the work dir and
// makes it the initial load path. It does nothing when no mutation happened
// since the project was opened. The returned path is relative to the root.
func (p *project) checkpoint() (string, error) {
	if !p.dirty {
		return "", nil
	}
	path := filepath.Join(p.workDir(), ledger.CheckpointName(now()))
	if err := p.store.Export(path); err != nil {
		return "", err
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		rel = path
	}
	if err := config.SaveInitialLoadPath(p.root, rel); err != nil {
		return "", err
	}
	p.dirty = false
	return rel, nil
}

// record appends to the history log; a failure is only logged.
func (p *project) record(entries ...history.Entry) {
	for i := range entries {
		if entries[i].Timestamp.IsZero() {
			entries[i].Timestamp = now()
		}
	}
	if err := history.Append(p.workDir(), entries...); err != nil {
		p.log.Warn().Err(err).Msg("failed to write history")
	}
}
