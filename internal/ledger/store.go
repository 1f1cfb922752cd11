// Package ledger holds the in-memory transaction table and keeps its running
// balance consistent with its rows.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pfo-dev/pfo/internal/model"
)

var (
	// ErrRowIndexOutOfRange is returned by Delete and Update for a position
	// that does not exist. The store is left unchanged.
	ErrRowIndexOutOfRange = errors.New("row index out of range")
	// ErrInvalidRecord is returned for a record missing a date or description.
	ErrInvalidRecord = errors.New("invalid record")
)

// Entry is a ledger row: a transaction plus its derived running balance.
type Entry struct {
	model.Transaction
	balance decimal.Decimal
}

// Balance is the cumulative sum of amounts up to and including this row.
func (e Entry) Balance() decimal.Decimal { return e.balance }

// Store owns the ledger table. Every mutation re-sorts and recomputes
// balances before the new table becomes visible.
type Store struct {
	entries []Entry
	subs    []func([]Entry)
	log     zerolog.Logger
}

// NewStore creates an empty Store.
func NewStore(log zerolog.Logger) *Store {
	return &Store{log: log}
}

// OnChange registers fn to be called with a snapshot of the rows after every
// successful mutation.
func (s *Store) OnChange(fn func([]Entry)) {
	s.subs = append(s.subs, fn)
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.entries) }

// Rows returns a copy of the rows in display order.
func (s *Store) Rows() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Transactions returns the rows without balances.
func (s *Store) Transactions() []model.Transaction {
	out := make([]model.Transaction, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Transaction
	}
	return out
}

// Load replaces the store contents.
func (s *Store) Load(txns []model.Transaction) error {
	next, err := entriesFrom(txns)
	if err != nil {
		return err
	}
	s.commit("load", next)
	return nil
}

// Insert adds one record. An empty category becomes the manual-entry
// sentinel.
func (s *Store) Insert(tx model.Transaction) error {
	if tx.Category == "" {
		tx.Category = model.ManualCategory
	}
	if err := validate(tx); err != nil {
		return err
	}
	next := append(s.Rows(), Entry{Transaction: tx})
	s.commit("insert", next)
	return nil
}

// InsertManual validates a manual entry form and inserts it.
func (s *Store) InsertManual(e model.ManualEntry) error {
	tx, err := e.Transaction()
	if err != nil {
		return err
	}
	return s.Insert(tx)
}

// AppendBulk merges an already normalized table into the store.
func (s *Store) AppendBulk(txns []model.Transaction) error {
	added, err := entriesFrom(txns)
	if err != nil {
		return err
	}
	next := append(s.Rows(), added...)
	s.commit("append", next)
	return nil
}

// Delete removes the row at position i in display order.
func (s *Store) Delete(i int) error {
	if i < 0 || i >= len(s.entries) {
		return fmt.Errorf("deleting row %d of %d: %w", i, len(s.entries), ErrRowIndexOutOfRange)
	}
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:i]...)
	next = append(next, s.entries[i+1:]...)
	s.commit("delete", next)
	return nil
}

// Update replaces the record at position i. The balance is recomputed, never
// taken from the caller.
func (s *Store) Update(i int, tx model.Transaction) error {
	if i < 0 || i >= len(s.entries) {
		return fmt.Errorf("updating row %d of %d: %w", i, len(s.entries), ErrRowIndexOutOfRange)
	}
	if err := validate(tx); err != nil {
		return err
	}
	next := s.Rows()
	next[i] = Entry{Transaction: tx}
	s.commit("update", next)
	return nil
}

// Recompute re-sorts the rows and refreshes every balance. Mutations call it
// implicitly; calling it again changes nothing.
func (s *Store) Recompute() {
	recompute(s.entries)
}

// commit recomputes next before swapping it in, so readers never see rows
// with stale balances.
func (s *Store) commit(op string, next []Entry) {
	recompute(next)
	s.entries = next
	s.log.Debug().Str("op", op).Int("rows", len(next)).Msg("ledger changed")
	for _, fn := range s.subs {
		fn(s.Rows())
	}
}

// recompute sorts by date, keeping insertion order for equal dates, and sets
// each balance to the running sum of amounts. Date is the only sort key: rows
// on the same day stay in the order they were loaded or inserted, which is
// the order the bank listed them.
func recompute(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	running := decimal.Zero
	for i := range entries {
		running = running.Add(entries[i].Amount)
		entries[i].balance = running
	}
}

func entriesFrom(txns []model.Transaction) ([]Entry, error) {
	out := make([]Entry, len(txns))
	for i, tx := range txns {
		if err := validate(tx); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = Entry{Transaction: tx}
	}
	return out, nil
}

func validate(tx model.Transaction) error {
	if tx.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if tx.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidRecord)
	}
	return nil
}
