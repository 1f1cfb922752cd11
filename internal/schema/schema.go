// Package schema describes the column layouts the ingestion pipeline knows
// about: the canonical ledger layout and the credit card "statement" layout.
package schema

import (
	"fmt"
	"strings"
)

// Type is the semantic type of a column.
type Type int

const (
	TypeText Type = iota
	TypeDate
	TypeDecimal
)

func (t Type) String() string {
	switch t {
	case TypeDate:
		return "date"
	case TypeDecimal:
		return "decimal"
	default:
		return "text"
	}
}

// Column names as they appear in bank exports and in checkpoints.
const (
	ColDate        = "Data"
	ColDescription = "Descrição"
	ColAmount      = "Valor"
	ColBalance     = "Saldo"
	ColCategory    = "Categoria"
	ColInstitution = "Banco/Corretora"

	// Statement-only columns.
	ColEntry = "Lançamento"
	ColKind  = "Tipo"

	// Full-extract columns.
	ColHistory   = "Histórico"
	ColEntryDate = "Data Lançamento"
)

// Column is one named, typed column.
type Column struct {
	Name string
	Type Type
}

// Schema is an ordered, immutable set of columns.
type Schema struct {
	name     string
	columns  []Column
	optional []Column
}

// Canonical is the ledger layout every ingested file is normalized into.
// The institution column is optional on input and always written on export.
var Canonical = Schema{
	name: "canonical",
	columns: []Column{
		{ColDate, TypeDate},
		{ColDescription, TypeText},
		{ColAmount, TypeDecimal},
		{ColBalance, TypeDecimal},
		{ColCategory, TypeText},
	},
	optional: []Column{
		{ColInstitution, TypeText},
	},
}

// Statement is the credit card statement layout: a type discriminator column
// and a free-text amount such as "R$ 1.234,56".
var Statement = Schema{
	name: "statement",
	columns: []Column{
		{ColDate, TypeDate},
		{ColEntry, TypeText},
		{ColCategory, TypeText},
		{ColKind, TypeText},
		{ColAmount, TypeText},
	},
}

// Name returns the schema name.
func (s Schema) Name() string { return s.name }

// Columns returns a copy of the required columns in order.
func (s Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns the required column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// ExportNames returns required plus optional column names, the layout
// written to checkpoints.
func (s Schema) ExportNames() []string {
	names := s.Names()
	for _, c := range s.optional {
		names = append(names, c.Name)
	}
	return names
}

// Has reports whether name is a required or optional column.
func (s Schema) Has(name string) bool {
	for _, c := range s.columns {
		if c.Name == name {
			return true
		}
	}
	for _, c := range s.optional {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Index maps column names to their position in a header row.
type Index map[string]int

// Get returns the cell for name, or "" when the column is absent.
func (ix Index) Get(record []string, name string) string {
	i, ok := ix[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Match checks that header carries exactly the schema's required columns,
// plus any optional ones, in any order.
func (s Schema) Match(header []string) (Index, error) {
	ix := make(Index, len(header))
	for i, h := range header {
		name := CleanHeader(h)
		if !s.Has(name) {
			return nil, fmt.Errorf("%s schema: unexpected column %q", s.name, name)
		}
		if _, dup := ix[name]; dup {
			return nil, fmt.Errorf("%s schema: duplicate column %q", s.name, name)
		}
		ix[name] = i
	}
	for _, c := range s.columns {
		if _, ok := ix[c.Name]; !ok {
			return nil, fmt.Errorf("%s schema: missing column %q", s.name, c.Name)
		}
	}
	return ix, nil
}

// CleanHeader trims whitespace, quotes and a UTF-8 BOM from a header cell.
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Trim(strings.TrimSpace(h), `"`)
}
