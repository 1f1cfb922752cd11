// Package normalize loads a delimiter-separated file under an ordered chain
// of candidate schemas and maps the first match onto canonical transactions.
package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pfo-dev/pfo/internal/detect"
	"github.com/pfo-dev/pfo/internal/model"
	"github.com/pfo-dev/pfo/internal/schema"
)

// DefaultNoise lists descriptions that are bookkeeping artifacts rather than
// transactions: paying the card bill from the account would double count
// every card purchase.
var DefaultNoise = []string{
	`Pagamento efetuado: "Debito Automatico Fatura Cartao Inter"`,
}

// loadFunc maps parsed records onto transactions.
type loadFunc func(header schema.Index, rows [][]string, institution string) ([]model.Transaction, error)

// Attempt is one (schema, numeric convention) link of the chain.
type Attempt struct {
	Name       string
	Schema     schema.Schema
	Convention schema.Convention
	load       loadFunc
}

// CanonicalAttempt reads the canonical layout under conv.
func CanonicalAttempt(conv schema.Convention) Attempt {
	return Attempt{
		Name:       "canonical/" + conv.String(),
		Schema:     schema.Canonical,
		Convention: conv,
		load:       canonicalLoader(conv),
	}
}

// StatementAttempt reads the credit card statement layout.
func StatementAttempt() Attempt {
	return Attempt{
		Name:   "statement",
		Schema: schema.Statement,
		load:   loadStatement,
	}
}

// DefaultChain is canonical with plain decimals, canonical with decimal
// commas, then the statement layout.
func DefaultChain() []Attempt {
	return []Attempt{
		CanonicalAttempt(schema.DecimalPoint),
		CanonicalAttempt(schema.DecimalComma),
		StatementAttempt(),
	}
}

// Normalizer turns files into canonical transactions.
type Normalizer struct {
	chain []Attempt
	noise map[string]bool
	log   zerolog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithNoise replaces the descriptions dropped as noise.
func WithNoise(descriptions []string) Option {
	return func(n *Normalizer) {
		n.noise = make(map[string]bool, len(descriptions))
		for _, d := range descriptions {
			n.noise[d] = true
		}
	}
}

// WithChain replaces the attempt chain.
func WithChain(chain []Attempt) Option {
	return func(n *Normalizer) { n.chain = chain }
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(n *Normalizer) { n.log = log }
}

// New creates a Normalizer with the default chain and noise list.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{chain: DefaultChain(), log: zerolog.Nop()}
	WithNoise(DefaultNoise)(n)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeFile reads path and returns the transactions of the first
// attempt that accepts it. Exhausting the chain yields ErrUnparseableFile;
// an AmountParseError from a matched statement file is returned as is.
func (n *Normalizer) NormalizeFile(path string, delim rune, institution string) ([]model.Transaction, error) {
	header, rows, err := readFile(path, delim)
	if err != nil {
		return nil, &chainError{attempts: []attemptError{{name: "read", err: err}}}
	}

	var failed []attemptError
	for _, a := range n.chain {
		txns, err := n.run(a, header, rows, institution)
		if err == nil {
			n.log.Debug().Str("attempt", a.Name).Int("rows", len(txns)).Msg("file normalized")
			return txns, nil
		}
		var ape *AmountParseError
		if a.Schema.Name() == schema.Statement.Name() && errors.As(err, &ape) {
			return nil, err
		}
		n.log.Debug().Str("attempt", a.Name).Err(err).Msg("attempt rejected file")
		failed = append(failed, attemptError{name: a.Name, err: err})
	}
	return nil, &chainError{attempts: failed}
}

// LoadCanonical reads a file that must already be canonical with plain
// decimals, such as a repaired temp file. There is no fallback.
func (n *Normalizer) LoadCanonical(path string, delim rune, institution string) ([]model.Transaction, error) {
	header, rows, err := readFile(path, delim)
	if err != nil {
		return nil, err
	}
	return n.run(CanonicalAttempt(schema.DecimalPoint), header, rows, institution)
}

func (n *Normalizer) run(a Attempt, header []string, rows [][]string, institution string) ([]model.Transaction, error) {
	ix, err := a.Schema.Match(header)
	if err != nil {
		return nil, err
	}
	txns, err := a.load(ix, rows, institution)
	if err != nil {
		return nil, err
	}
	return n.filter(txns), nil
}

func (n *Normalizer) filter(txns []model.Transaction) []model.Transaction {
	out := txns[:0]
	for _, t := range txns {
		if n.noise[t.Description] {
			n.log.Debug().Str("description", t.Description).Msg("dropping noise row")
			continue
		}
		out = append(out, t)
	}
	return out
}

func readFile(path string, delim rune) ([]string, [][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	content, err := detect.Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(strings.NewReader(content))
	cr.Comma = delim
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("reading CSV: no header")
	}
	return records[0], records[1:], nil
}

func canonicalLoader(conv schema.Convention) loadFunc {
	return func(ix schema.Index, rows [][]string, institution string) ([]model.Transaction, error) {
		txns := make([]model.Transaction, 0, len(rows))
		for i, rec := range rows {
			line := i + 2
			date, err := schema.ParseDate(ix.Get(rec, schema.ColDate))
			if err != nil {
				return nil, &RowError{Row: line, Column: schema.ColDate, Err: err}
			}
			desc := ix.Get(rec, schema.ColDescription)
			if desc == "" {
				return nil, &RowError{Row: line, Column: schema.ColDescription, Err: errors.New("empty value")}
			}
			raw := ix.Get(rec, schema.ColAmount)
			amount, err := schema.ParseDecimal(raw, conv)
			if err != nil {
				return nil, &AmountParseError{Row: line, Value: raw}
			}
			// The balance column is derived; it is type-checked and dropped.
			// A blank cell is a placeholder.
			if bal := ix.Get(rec, schema.ColBalance); strings.TrimSpace(bal) != "" {
				if _, err := schema.ParseDecimal(bal, conv); err != nil {
					return nil, &RowError{Row: line, Column: schema.ColBalance, Err: err}
				}
			}
			txns = append(txns, model.Transaction{
				Date:        date,
				Description: desc,
				Amount:      amount,
				Category:    ix.Get(rec, schema.ColCategory),
				Institution: pick(ix.Get(rec, schema.ColInstitution), institution),
			})
		}
		return txns, nil
	}
}

// pick prefers a non-empty source value over the ingestion tag.
func pick(fromFile, tag string) string {
	if fromFile != "" {
		return fromFile
	}
	return tag
}
