package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pfo-dev/pfo/internal/history"
	"github.com/pfo-dev/pfo/internal/ingest"
	"github.com/pfo-dev/pfo/internal/model"
	"github.com/pfo-dev/pfo/internal/output"
)

func newIngestCommand(dir *string) *cobra.Command {
	var institution string
	var delimiter string
	var replace bool

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Normalize bank exports and add them to the ledger",
		Long: "Normalize bank exports and add them to the ledger.\n\n" +
			"Every file is ingested before the ledger changes; if any file fails\n" +
			"nothing is written. With --replace the files become the whole ledger.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts := p.ingestOptions(institution)
			if delimiter != "" {
				d, err := parseDelimiter(delimiter)
				if err != nil {
					return err
				}
				opts.Delimiter = d
			}
			return runIngest(cmd.OutOrStdout(), p, args, opts, replace)
		},
	}

	cmd.Flags().StringVar(&institution, "institution", "", "institution tag (default from config)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter; detected when empty")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the ledger instead of appending")

	return cmd
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` || s == "tab" {
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

// loaded is one successfully ingested file.
type loaded struct {
	source string
	result *ingest.Result
}

func ingestAll(p *project, paths []string, opts ingest.Options) ([]loaded, error) {
	out := make([]loaded, 0, len(paths))
	for _, path := range paths {
		res, err := p.pipeline.File(path, opts)
		if err != nil {
			return nil, fmt.Errorf("ingesting %s: %w", path, err)
		}
		out = append(out, loaded{source: path, result: res})
	}
	return out, nil
}

func runIngest(w io.Writer, p *project, paths []string, opts ingest.Options, replace bool) error {
	files, err := ingestAll(p, paths, opts)
	if err != nil {
		return err
	}

	var txns []model.Transaction
	for _, f := range files {
		txns = append(txns, f.result.Transactions...)
	}
	if replace {
		err = p.store.Load(txns)
	} else {
		err = p.store.AppendBulk(txns)
	}
	if err != nil {
		return err
	}

	cp, err := p.checkpoint()
	if err != nil {
		return err
	}

	entries := make([]history.Entry, len(files))
	for i, f := range files {
		entries[i] = history.Entry{
			Action:      history.ActionIngest,
			Source:      f.source,
			Institution: opts.Institution,
			Rows:        len(f.result.Transactions),
			Checkpoint:  cp,
		}
	}
	p.record(entries...)

	return printIngested(w, files, p.store.Len(), cp)
}

func printIngested(w io.Writer, files []loaded, total int, checkpoint string) error {
	tbl := output.NewTable(
		output.Column{Title: "File"},
		output.Column{Title: "Rows", Align: output.Right},
		output.Column{Title: "Delimiter"},
		output.Column{Title: "Repaired"},
	)
	for _, f := range files {
		tbl.Append(f.source, strconv.Itoa(len(f.result.Transactions)), string(f.result.Delimiter), yesNo(f.result.Repaired))
	}
	if err := tbl.Render(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nLedger has %d rows", total)
	if checkpoint != "" {
		fmt.Fprintf(w, "; checkpoint %s", checkpoint)
	}
	fmt.Fprintln(w)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newImportCommand(dir *string) *cobra.Command {
	var institution string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Ingest every CSV in the import directory and move it to processed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runImport(cmd.OutOrStdout(), p, p.ingestOptions(institution))
		},
	}

	cmd.Flags().StringVar(&institution, "institution", "", "institution tag (default from config)")

	return cmd
}

func runImport(w io.Writer, p *project, opts ingest.Options) error {
	imp := ingest.ImportDir{Root: p.importDir(), Now: now}
	pending, err := imp.Scan()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintf(w, "No CSV files in %s\n", imp.Root)
		return nil
	}

	paths := make([]string, len(pending))
	for i, f := range pending {
		paths[i] = f.Path
	}
	files, err := ingestAll(p, paths, opts)
	if err != nil {
		return err
	}

	var txns []model.Transaction
	for _, f := range files {
		txns = append(txns, f.result.Transactions...)
	}
	if err := p.store.AppendBulk(txns); err != nil {
		return err
	}
	cp, err := p.checkpoint()
	if err != nil {
		return err
	}

	entries := make([]history.Entry, 0, len(files))
	for i, f := range files {
		if _, err := imp.MarkProcessed(pending[i]); err != nil {
			p.record(entries...)
			return err
		}
		entries = append(entries, history.Entry{
			Action:      history.ActionImport,
			Source:      pending[i].Name,
			Institution: opts.Institution,
			Rows:        len(f.result.Transactions),
			Checkpoint:  cp,
		})
	}
	p.record(entries...)

	return printIngested(w, files, p.store.Len(), cp)
}
