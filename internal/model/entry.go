package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Operation is the direction picked on the manual entry form.
type Operation string

const (
	OperationInflow  Operation = "in"
	OperationOutflow Operation = "out"
)

const (
	// MaxDescriptionLen is the longest description the entry form accepts.
	MaxDescriptionLen = 50
	// ManualCategory is the category given to hand-entered rows.
	ManualCategory = "Manually added!"
)

// MaxManualAmount bounds a single hand-entered amount.
var MaxManualAmount = decimal.NewFromInt(1_000_000)

// ErrInvalidEntry is returned when a manual entry field fails validation.
var ErrInvalidEntry = errors.New("invalid manual entry")

// ManualEntry is the data captured by the "add registry" form.
type ManualEntry struct {
	Date        time.Time
	Description string
	Operation   Operation
	Amount      decimal.Decimal // always positive; Operation carries the sign
	Institution string
}

// ParseOperation accepts "in"/"out" and the Portuguese labels used by the
// original form ("entrada"/"saída").
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "inflow", "entrada":
		return OperationInflow, nil
	case "out", "outflow", "saída", "saida":
		return OperationOutflow, nil
	}
	return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidEntry, s)
}

// Validate checks every field of the form.
func (e ManualEntry) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidEntry, MaxDescriptionLen)
	}
	if e.Operation != OperationInflow && e.Operation != OperationOutflow {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidEntry, e.Operation)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidEntry, e.Amount)
	}
	if e.Amount.GreaterThan(MaxManualAmount) {
		return fmt.Errorf("%w: amount %s exceeds %s", ErrInvalidEntry, e.Amount, MaxManualAmount)
	}
	if !e.Amount.Equal(e.Amount.Round(2)) {
		return fmt.Errorf("%w: amount %s has more than 2 decimal places", ErrInvalidEntry, e.Amount)
	}
	return nil
}

// Transaction converts a validated form into a signed ledger row.
func (e ManualEntry) Transaction() (Transaction, error) {
	if err := e.Validate(); err != nil {
		return Transaction{}, err
	}
	amount := e.Amount
	if e.Operation == OperationOutflow {
		amount = amount.Neg()
	}
	return Transaction{
		Date:        e.Date,
		Description: strings.TrimSpace(e.Description),
		Amount:      amount,
		Category:    ManualCategory,
		Institution: e.Institution,
	}, nil
}
