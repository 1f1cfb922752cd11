package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pfo-dev/pfo/internal/history"
	"github.com/pfo-dev/pfo/internal/ledger"
	"github.com/pfo-dev/pfo/internal/model"
	"github.com/pfo-dev/pfo/internal/output"
	"github.com/pfo-dev/pfo/internal/schema"
)

func newListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the ledger with row numbers and running balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printLedger(cmd.OutOrStdout(), p.store.Rows())
		},
	}
}

func printLedger(w io.Writer, rows []ledger.Entry) error {
	tbl := output.NewTable(
		output.Column{Title: "#", Align: output.Right},
		output.Column{Title: schema.ColDate},
		output.Column{Title: schema.ColDescription, MaxWidth: 40},
		output.Column{Title: schema.ColAmount, Align: output.Right},
		output.Column{Title: schema.ColBalance, Align: output.Right},
		output.Column{Title: schema.ColCategory, MaxWidth: 24},
		output.Column{Title: schema.ColInstitution},
	)
	for i, e := range rows {
		tbl.Append(
			strconv.Itoa(i),
			e.Date.Format(schema.DateLayout),
			e.Description,
			e.Amount.StringFixed(2),
			e.Balance().StringFixed(2),
			e.Category,
			e.Institution,
		)
	}
	return tbl.Render(w)
}

// parseAmount accepts "1234.56" and "1.234,56".
func parseAmount(s string) (decimal.Decimal, error) {
	conv := schema.DecimalPoint
	if strings.Contains(s, ",") {
		conv = schema.DecimalComma
	}
	return schema.ParseDecimal(s, conv)
}

func newAddCommand(dir *string) *cobra.Command {
	var date, description, operation, amount, institution string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := schema.ParseDate(date, schema.DateLayout, schema.LocalDateLayout)
			if err != nil {
				return err
			}
			op, err := model.ParseOperation(operation)
			if err != nil {
				return err
			}
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}

			p, err := openProject(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if institution == "" {
				institution = p.cfg.Institution
			}
			return runAdd(cmd.OutOrStdout(), p, model.ManualEntry{
				Date:        d,
				Description: description,
				Operation:   op,
				Amount:      amt,
				Institution: institution,
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD or DD/MM/YYYY (required)")
	cmd.Flags().StringVar(&description, "description", "", "description, at most 50 characters (required)")
	cmd.Flags().StringVar(&operation, "operation", "out", "in (inflow) or out (outflow)")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount with up to 2 decimals (required)")
	cmd.Flags().StringVar(&institution, "institution", "", "institution tag (default from config)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAdd(w io.Writer, p *project, e model.ManualEntry) error {
	if err := p.store.InsertManual(e); err != nil {
		return err
	}
	cp, err := p.checkpoint()
	if err != nil {
		return err
	}
	p.record(history.Entry{
		Action:      history.ActionAdd,
		Source:      e.Description,
		Institution: e.Institution,
		Rows:        1,
		Checkpoint:  cp,
	})
	fmt.Fprintf(w, "Added %q; ledger has %d rows\n", e.Description, p.store.Len())
	return nil
}

func newEditCommand(dir *string) *cobra.Command {
	var date, description, amount, category, institution string

	cmd := &cobra.Command{
		Use:   "edit <row>",
		Short: "Change fields of a ledger row; the balance is recomputed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("row must be a number: %w", err)
			}
			p, err := openProject(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rows := p.store.Rows()
			if row < 0 || row >= len(rows) {
				return fmt.Errorf("editing row %d of %d: %w", row, len(rows), ledger.ErrRowIndexOutOfRange)
			}

			tx := rows[row].Transaction
			flags := cmd.Flags()
			if flags.Changed("date") {
				if tx.Date, err = schema.ParseDate(date, schema.DateLayout, schema.LocalDateLayout); err != nil {
					return err
				}
			}
			if flags.Changed("description") {
				tx.Description = strings.TrimSpace(description)
			}
			if flags.Changed("amount") {
				if tx.Amount, err = parseAmount(amount); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				tx.Category = category
			}
			if flags.Changed("institution") {
				tx.Institution = institution
			}
			return runEdit(cmd.OutOrStdout(), p, row, tx)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "new date")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&amount, "amount", "", "new signed amount")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&institution, "institution", "", "new institution")

	return cmd
}

func runEdit(w io.Writer, p *project, row int, tx model.Transaction) error {
	if err := p.store.Update(row, tx); err != nil {
		return err
	}
	cp, err := p.checkpoint()
	if err != nil {
		return err
	}
	p.record(history.Entry{
		Action:      history.ActionEdit,
		Source:      fmt.Sprintf("row %d", row),
		Institution: tx.Institution,
		Rows:        1,
		Checkpoint:  cp,
	})
	fmt.Fprintf(w, "Updated row %d\n", row)
	return nil
}

func newRemoveCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <row>",
		Short: "Delete a ledger row by its number in pfo list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("row must be a number: %w", err)
			}
			p, err := openProject(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runRemove(cmd.OutOrStdout(), p, row)
		},
	}
}

func runRemove(w io.Writer, p *project, row int) error {
	var removed ledger.Entry
	if rows := p.store.Rows(); row >= 0 && row < len(rows) {
		removed = rows[row]
	}
	if err := p.store.Delete(row); err != nil {
		return err
	}
	cp, err := p.checkpoint()
	if err != nil {
		return err
	}
	p.record(history.Entry{
		Action:      history.ActionRemove,
		Source:      fmt.Sprintf("row %d: %s", row, removed.Description),
		Institution: removed.Institution,
		Rows:        1,
		Checkpoint:  cp,
	})
	fmt.Fprintf(w, "Removed row %d (%s); ledger has %d rows\n", row, removed.Description, p.store.Len())
	return nil
}
