package cli

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/towersets/pkg/count"
)

// tableCommand creates the table command.
func (c *CLI) tableCommand() *cobra.Command {
	var flags countFlags

	cmd := &cobra.Command{
		Use:   "table [N]",
		Short: "Show tower-set counts split by number of towers",
		Long: `Show a grid of tower-set counts with one row per number of towers m and one
column per block count n, followed by the single-tower counts and the totals.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, args, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(cmd.Context()))
			tables, err := runner.Table(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built tables for n ≤ %d", opts.MaxN))

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tables))
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

// renderTable lays out SetTowers(m, n) for m, n in 1..MaxN with the
// single-tower and total rows appended.
func renderTable(t *count.Tables) string {
	maxN := t.MaxN()

	headers := make([]string, 0, maxN+2)
	headers = append(headers, "m \\ n")
	for n := 0; n <= maxN; n++ {
		headers = append(headers, strconv.Itoa(n))
	}

	rows := make([][]string, 0, maxN+2)
	for m := 1; m <= maxN; m++ {
		row := []string{strconv.Itoa(m)}
		for n := 0; n <= maxN; n++ {
			row = append(row, cell(t.SetTowers(m, n)))
		}
		rows = append(rows, row)
	}

	single := []string{"towers"}
	for n := 0; n <= maxN; n++ {
		single = append(single, cell(t.Single(n)))
	}
	total := []string{"total"}
	for _, v := range t.Sequence() {
		total = append(total, cell(v))
	}
	rows = append(rows, single, total)
	summary := len(rows) - 2

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Inherit(StyleTitle)
			case col == 0:
				return style.Inherit(StyleDim)
			case row >= summary:
				return style.Inherit(StyleHighlight).Align(lipgloss.Right)
			default:
				return style.Inherit(StyleValue).Align(lipgloss.Right)
			}
		}).
		Render()
}

// cell renders zero as "·" so the triangular shape of the grid stands out.
func cell(v *big.Int) string {
	if v.Sign() == 0 {
		return "·"
	}
	return v.String()
}
