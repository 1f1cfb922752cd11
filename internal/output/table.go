// Package output renders column-aligned text tables for the CLI.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Align is a column alignment.
type Align int

const (
	Left Align = iota
	Right
)

// MinimumSpacing separates adjacent columns.
const MinimumSpacing = 2

// Column describes one table column.
type Column struct {
	Title    string
	Align    Align
	MaxWidth int // 0 means unbounded; longer cells are truncated with "..."
}

// Table collects rows and writes them with every column padded to its
// widest cell. Widths are display widths, so accented and wide characters
// line up.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// Append adds a row. Missing cells render empty; extra cells are ignored.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = t.clip(i, cells[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) clip(i int, s string) string {
	if limit := t.columns[i].MaxWidth; limit > 0 && runewidth.StringWidth(s) > limit {
		return runewidth.Truncate(s, limit, "...")
	}
	return s
}

func (t *Table) widths() []int {
	w := make([]int, len(t.columns))
	for i, c := range t.columns {
		w[i] = runewidth.StringWidth(c.Title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > w[i] {
				w[i] = cw
			}
		}
	}
	return w
}

// Render writes the header, a rule and every row to w.
func (t *Table) Render(w io.Writer) error {
	widths := t.widths()
	titles := make([]string, len(t.columns))
	rule := make([]string, len(t.columns))
	for i, c := range t.columns {
		titles[i] = c.Title
		rule[i] = strings.Repeat("-", widths[i])
	}

	lines := make([]string, 0, len(t.rows)+2)
	lines = append(lines, t.line(titles, widths), t.line(rule, widths))
	for _, row := range t.rows {
		lines = append(lines, t.line(row, widths))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return fmt.Errorf("writing table: %w", err)
		}
	}
	return nil
}

func (t *Table) line(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", MinimumSpacing))
		}
		last := i == len(cells)-1
		switch {
		case t.columns[i].Align == Right:
			b.WriteString(runewidth.FillLeft(cell, widths[i]))
		case last:
			b.WriteString(cell)
		default:
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
	}
	return b.String()
}
