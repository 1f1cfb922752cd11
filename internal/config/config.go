package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfo-dev/pfo/internal/normalize"
)

// FileName is the project config file.
const FileName = "pfo.yaml"

// EnvFileName is the dotenv file read next to the config.
const EnvFileName = ".env"

// Environment keys that override the YAML values.
const (
	EnvInitialLoadPath = "INITIAL_LOAD_PATH"
	EnvInstitution     = "PFO_INSTITUTION"
)

// Config represents the top-level pfo.yaml configuration.
type Config struct {
	Institution     string       `yaml:"institution"`
	InitialLoadPath string       `yaml:"initial_load_path,omitempty"`
	WorkDir         string       `yaml:"work_dir"`
	ImportDir       string       `yaml:"import_dir"`
	CSV             CSVConfig    `yaml:"csv"`
	Ledger          LedgerConfig `yaml:"ledger"`
	Report          ReportConfig `yaml:"report"`
	LogLevel        string       `yaml:"log_level"`
}

// CSVConfig controls how input files are read.
type CSVConfig struct {
	Delimiters []string `yaml:"delimiters"`          // detection candidates, in priority order
	Delimiter  string   `yaml:"delimiter,omitempty"` // skip detection when set
	Noise      []string `yaml:"noise"`               // descriptions dropped on ingest
}

// LedgerConfig holds category conventions.
type LedgerConfig struct {
	InvestmentCategory string `yaml:"investment_category"`
}

// ReportConfig holds report defaults.
type ReportConfig struct {
	Period string `yaml:"period"`
	Top    int    `yaml:"top"`
}

// Load reads a pfo.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(institution string) *Config {
	return &Config{
		Institution: institution,
		WorkDir:     "work",
		ImportDir:   "import",
		CSV: CSVConfig{
			Delimiters: []string{",", ";"},
			Noise:      append([]string(nil), normalize.DefaultNoise...),
		},
		Ledger: LedgerConfig{
			InvestmentCategory: "Investimento",
		},
		Report: ReportConfig{
			Period: "monthly",
			Top:    10,
		},
		LogLevel: "info",
	}
}

// LoadEnv applies overrides from the .env file in root and then from the
// process environment, which wins when non-empty. A missing .env file is
// not an error.
func (c *Config) LoadEnv(root string) error {
	env, err := godotenv.Read(filepath.Join(root, EnvFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", EnvFileName, err)
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return env[key]
	}
	if v := lookup(EnvInitialLoadPath); v != "" {
		c.InitialLoadPath = v
	}
	if v := lookup(EnvInstitution); v != "" {
		c.Institution = v
	}
	return nil
}

// SaveInitialLoadPath records path as INITIAL_LOAD_PATH in root/.env,
// keeping any other keys already there.
func SaveInitialLoadPath(root, path string) error {
	envPath := filepath.Join(root, EnvFileName)
	env, err := godotenv.Read(envPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", EnvFileName, err)
		}
		env = map[string]string{}
	}
	env[EnvInitialLoadPath] = path
	if err := godotenv.Write(env, envPath); err != nil {
		return fmt.Errorf("writing %s: %w", EnvFileName, err)
	}
	return nil
}

// Delimiters returns the detection candidates as runes. Entries that are not
// a single character are skipped.
func (c *Config) Delimiters() []rune {
	var out []rune
	for _, d := range c.CSV.Delimiters {
		if utf8.RuneCountInString(d) == 1 {
			r, _ := utf8.DecodeRuneInString(d)
			out = append(out, r)
		}
	}
	return out
}

// Delimiter returns the declared delimiter, or 0 to detect one.
func (c *Config) Delimiter() rune {
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)
	return r
}

// Resolve returns p relative to root unless it is already absolute.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
