package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pfo-dev/pfo/internal/config"
	"github.com/pfo-dev/pfo/internal/ingest"
)

func newInitCommand() *cobra.Command {
	var institution string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new pfo project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, institution)
		},
	}

	cmd.Flags().StringVar(&institution, "institution", "", "default institution tag for ingested rows")

	return cmd
}

func runInit(out io.Writer, dir, institution string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(institution)

	// Create directory structure.
	dirs := []string{
		cfg.WorkDir,
		cfg.ImportDir,
		filepath.Join(cfg.ImportDir, ingest.ProcessedDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write .gitignore.
	gitignore := cfg.WorkDir + "/tmp_*\n" + config.EnvFileName + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized pfo project at %s\n", dir)
	return nil
}
