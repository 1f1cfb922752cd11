package detect

import (
	"fmt"
	"strings"

	"github.com/pfo-dev/pfo/internal/model"
	"github.com/pfo-dev/pfo/internal/schema"
)

// RuleKind says how a missing canonical column is handled.
type RuleKind int

const (
	// Required columns cannot be synthesized; their absence is fatal.
	Required RuleKind = iota
	// Constant columns are filled with a fixed value, as are blank cells of
	// a present column.
	Constant
	// Derived columns are computed from the first present source column.
	Derived
	// Optional columns are copied when present and left empty otherwise.
	Optional
)

// Source is one candidate input for a derived column.
type Source struct {
	Column    string
	Transform func(string) string // nil copies the cell
}

// Rule describes how one canonical column is obtained.
type Rule struct {
	Column   string
	Kind     RuleKind
	Value    string   // Constant
	Sources  []Source // Derived
	Guidance string   // Required: what the column must contain
}

// Plan is an ordered rule set; its order is the output column order.
type Plan []Rule

// CanonicalPlan synthesizes the canonical ledger columns.
var CanonicalPlan = Plan{
	{Column: schema.ColDate, Kind: Required, Guidance: "must contain dates formatted as YYYY-MM-DD, e.g. 2000-10-20"},
	{Column: schema.ColDescription, Kind: Required, Guidance: "must contain a description of the transaction"},
	{Column: schema.ColAmount, Kind: Required, Guidance: "must contain the transaction value with 2 decimal places, negative for outflows"},
	{Column: schema.ColBalance, Kind: Constant, Value: "0"},
	{Column: schema.ColCategory, Kind: Derived, Sources: []Source{
		{Column: schema.ColHistory},
		{Column: schema.ColDescription, Transform: model.CategoryFromDescription},
	}},
	{Column: schema.ColInstitution, Kind: Optional},
}

// HeaderAliases renames source headers before the plan is resolved.
var HeaderAliases = map[string]string{
	schema.ColEntryDate: schema.ColDate,
}

// MissingColumnError reports a required column that is absent from the
// header and cannot be synthesized.
type MissingColumnError struct {
	Column   string
	Guidance string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q: add a %q column that %s", e.Column, e.Column, e.Guidance)
}

// cellFunc produces one output cell from an input record.
type cellFunc func(record []string) string

// Resolve binds every rule to the given header once, so rows can be
// projected without re-evaluating the plan.
func (p Plan) Resolve(header []string) (*Projection, error) {
	ix := make(schema.Index, len(header))
	for i, h := range header {
		name := schema.CleanHeader(h)
		if alias, ok := HeaderAliases[name]; ok {
			name = alias
		}
		if _, dup := ix[name]; !dup {
			ix[name] = i
		}
	}

	proj := &Projection{}
	for _, rule := range p {
		proj.header = append(proj.header, rule.Column)
		if _, ok := ix[rule.Column]; ok {
			var fill func(string) string
			if rule.Kind == Constant {
				fill = orDefault(rule.Value)
			}
			proj.cells = append(proj.cells, column(ix, rule.Column, fill))
			continue
		}
		switch rule.Kind {
		case Constant:
			v := rule.Value
			proj.cells = append(proj.cells, func([]string) string { return v })
		case Optional:
			proj.cells = append(proj.cells, func([]string) string { return "" })
		case Derived:
			fn, ok := derive(ix, rule.Sources)
			if !ok {
				return nil, &MissingColumnError{Column: rule.Column, Guidance: "cannot be derived from this file"}
			}
			proj.cells = append(proj.cells, fn)
		default:
			return nil, &MissingColumnError{Column: rule.Column, Guidance: rule.Guidance}
		}
	}
	return proj, nil
}

func derive(ix schema.Index, sources []Source) (cellFunc, bool) {
	for _, src := range sources {
		if _, ok := ix[src.Column]; ok {
			return column(ix, src.Column, src.Transform), true
		}
	}
	return nil, false
}

func orDefault(v string) func(string) string {
	return func(cell string) string {
		if strings.TrimSpace(cell) == "" {
			return v
		}
		return cell
	}
}

func column(ix schema.Index, name string, transform func(string) string) cellFunc {
	return func(record []string) string {
		v := ix.Get(record, name)
		if transform != nil {
			return transform(v)
		}
		return v
	}
}

// Projection maps input records onto the plan's column order.
type Projection struct {
	header []string
	cells  []cellFunc
}

// Header returns the output header.
func (p *Projection) Header() []string {
	out := make([]string, len(p.header))
	copy(out, p.header)
	return out
}

// Apply projects one input record.
func (p *Projection) Apply(record []string) []string {
	out := make([]string, len(p.cells))
	for i, fn := range p.cells {
		out[i] = fn(record)
	}
	return out
}
