package commands

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pfo-dev/pfo/internal/output"
	"github.com/pfo-dev/pfo/internal/report"
	"github.com/pfo-dev/pfo/internal/schema"
)

func newReportCommand(dir *string) *cobra.Command {
	var period string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregated views over the ledger",
	}
	reportCmd.PersistentFlags().StringVar(&period, "period", "", "bucket: daily, weekly, monthly, quarterly or yearly (default from config)")

	// withReport opens the project and resolves the period before fn runs.
	withReport := func(fn func(w io.Writer, p *project, g report.Granularity) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			name := period
			if name == "" {
				name = p.cfg.Report.Period
			}
			g, err := report.ParseGranularity(name)
			if err != nil {
				return err
			}
			return fn(cmd.OutOrStdout(), p, g)
		}
	}

	var top int
	topCmd := &cobra.Command{
		Use:   "top",
		Short: "Categories ranked by absolute amount moved",
		Args:  cobra.NoArgs,
		RunE: withReport(func(w io.Writer, p *project, _ report.Granularity) error {
			n := top
			if n == 0 {
				n = p.cfg.Report.Top
			}
			return printTop(w, report.TopCategories(p.store, n))
		}),
	}
	topCmd.Flags().IntVar(&top, "limit", 0, "number of categories (default from config; negative for all)")

	reportCmd.AddCommand(
		&cobra.Command{
			Use:   "totals",
			Short: "Sum of amounts per period, description and category",
			Args:  cobra.NoArgs,
			RunE: withReport(func(w io.Writer, p *project, g report.Granularity) error {
				return printTotals(w, g, report.GroupedTotals(p.store, g))
			}),
		},
		topCmd,
		&cobra.Command{
			Use:   "institutions",
			Short: "Investments plus latest balance per institution",
			Args:  cobra.NoArgs,
			RunE: withReport(func(w io.Writer, p *project, _ report.Granularity) error {
				return printInstitutions(w, report.InstitutionDistribution(p.store, p.cfg.Ledger.InvestmentCategory))
			}),
		},
		&cobra.Command{
			Use:   "balances",
			Short: "Closing balance of each period",
			Args:  cobra.NoArgs,
			RunE: withReport(func(w io.Writer, p *project, g report.Granularity) error {
				return printBalances(w, g, report.PeriodEndBalances(p.store, g))
			}),
		},
	)

	return reportCmd
}

func printTotals(w io.Writer, g report.Granularity, totals []report.Total) error {
	tbl := output.NewTable(
		output.Column{Title: "Period"},
		output.Column{Title: schema.ColDescription, MaxWidth: 40},
		output.Column{Title: schema.ColCategory, MaxWidth: 24},
		output.Column{Title: schema.ColAmount, Align: output.Right},
	)
	for _, t := range totals {
		tbl.Append(g.Label(t.Bucket), t.Description, t.Category, t.Amount.StringFixed(2))
	}
	return tbl.Render(w)
}

func printTop(w io.Writer, cats []report.CategoryTotal) error {
	tbl := output.NewTable(
		output.Column{Title: "#", Align: output.Right},
		output.Column{Title: schema.ColCategory},
		output.Column{Title: "Total", Align: output.Right},
	)
	for i, c := range cats {
		tbl.Append(strconv.Itoa(i+1), c.Category, c.Amount.StringFixed(2))
	}
	return tbl.Render(w)
}

func printInstitutions(w io.Writer, insts []report.InstitutionTotal) error {
	tbl := output.NewTable(
		output.Column{Title: schema.ColInstitution},
		output.Column{Title: "Invested", Align: output.Right},
		output.Column{Title: schema.ColBalance, Align: output.Right},
		output.Column{Title: "Total", Align: output.Right},
	)
	for _, it := range insts {
		tbl.Append(it.Institution, it.Invested.StringFixed(2), it.Balance.StringFixed(2), it.Total.StringFixed(2))
	}
	return tbl.Render(w)
}

func printBalances(w io.Writer, g report.Granularity, points []report.BalancePoint) error {
	tbl := output.NewTable(
		output.Column{Title: "Period"},
		output.Column{Title: schema.ColBalance, Align: output.Right},
	)
	for _, pt := range points {
		tbl.Append(g.Label(pt.Bucket), pt.Balance.StringFixed(2))
	}
	return tbl.Render(w)
}
