package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryDelimiter separates a category prefix from the rest of a description.
const CategoryDelimiter = ":"

// Transaction is one normalized ledger row. The running balance is not part of
// it: balances are derived by the ledger and never supplied by a source.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // positive = inflow, negative = outflow
	Category    string
	Institution string
}

// CategoryFromDescription returns the description prefix before the first
// ":", or the whole description when there is none.
// "Pix enviado: Fulano" -> "Pix enviado"
func CategoryFromDescription(desc string) string {
	prefix, _, _ := strings.Cut(desc, CategoryDelimiter)
	return strings.TrimSpace(prefix)
}

// IsInflow reports whether the transaction adds money.
func (t Transaction) IsInflow() bool {
	return t.Amount.IsPositive()
}
