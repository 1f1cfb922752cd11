package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pfo-dev/pfo/internal/model"
	"github.com/pfo-dev/pfo/internal/schema"
)

// statementAmountRe finds "1.234,56" or "55,90" inside text like
// "R$ 1.234,56 (compra)".
var statementAmountRe = regexp.MustCompile(`(\d+(?:\.\d{3})*),(\d+)`)

// ExtractStatementAmount pulls the amount out of a statement value cell.
// Statement rows are card purchases, so the result is always an outflow.
func ExtractStatementAmount(cell string) (decimal.Decimal, error) {
	m := statementAmountRe.FindStringSubmatch(cell)
	if m == nil {
		return decimal.Zero, fmt.Errorf("no amount in %q", cell)
	}
	intPart := strings.ReplaceAll(m[1], ".", "")
	d, err := decimal.NewFromString(intPart + "." + m[2])
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", m[0], err)
	}
	return d.Neg(), nil
}

// loadStatement drops the type discriminator, takes the entry text as the
// description and the category verbatim, and extracts the amount.
func loadStatement(ix schema.Index, rows [][]string, institution string) ([]model.Transaction, error) {
	txns := make([]model.Transaction, 0, len(rows))
	for i, rec := range rows {
		line := i + 2
		date, err := schema.ParseDate(ix.Get(rec, schema.ColDate), schema.DateLayout, schema.LocalDateLayout)
		if err != nil {
			return nil, &RowError{Row: line, Column: schema.ColDate, Err: err}
		}
		desc := ix.Get(rec, schema.ColEntry)
		if desc == "" {
			return nil, &RowError{Row: line, Column: schema.ColEntry, Err: errors.New("empty value")}
		}
		raw := ix.Get(rec, schema.ColAmount)
		amount, err := ExtractStatementAmount(raw)
		if err != nil {
			return nil, &AmountParseError{Row: line, Value: raw}
		}
		txns = append(txns, model.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Category:    ix.Get(rec, schema.ColCategory),
			Institution: institution,
		})
	}
	return txns, nil
}
