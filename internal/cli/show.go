package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/MacroPower/csvdash/pkg/dataset"
	"github.com/MacroPower/csvdash/pkg/stats"
)

const showExample = `  # Print the first rows of a file
  csvdash show sales.csv

  # Print box statistics of every numeric column
  csvdash show solar_benin.csv --summary

  # Convert a file to JSON
  csvdash show sales.csv -o json --limit -1`

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// columnSummary is the [stats.Summary] of one column.
type columnSummary struct {
	Column string `json:"column"`
	stats.Summary
}

func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show <file>",
		Short:   "Print the contents of a CSV file",
		Example: showExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			var merr error

			flags := cc.Flags()

			output, err := flags.GetString("output")
			if err != nil {
				merr = multierror.Append(merr, err)
			}

			limit, err := flags.GetInt("limit")
			if err != nil {
				merr = multierror.Append(merr, err)
			}

			summary, err := flags.GetBool("summary")
			if err != nil {
				merr = multierror.Append(merr, err)
			}

			if merr != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
			}

			if err := checkOutput(output, outputTable, outputJSON, outputYAML, outputCSV); err != nil {
				return err
			}

			cfg, err := loadConfig(cc)
			if err != nil {
				return err
			}

			t, err := cfg.Loader().Load(args[0])
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}

			w := cc.OutOrStdout()

			if summary {
				return writeSummary(w, output, t)
			}

			t = t.Head(limit)

			switch output {
			case outputTable:
				return writeTable(w, t.Columns, t.Rows)
			case outputCSV:
				if err := t.WriteCSV(w); err != nil {
					return fmt.Errorf("write csv: %w", err)
				}

				return nil
			}

			return writeStructured(w, output, t)
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("output", "o", outputTable, "Output format (table, json, yaml, csv)")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of rows to print, -1 for all")
	cmd.Flags().BoolP("summary", "s", false, "Print box statistics of the numeric columns instead of rows")

	return cmd
}

func writeSummary(w io.Writer, output string, t *dataset.Table) error {
	byCol := stats.Columns(t)

	cols := make([]string, 0, len(byCol))
	for _, c := range t.NumericColumns() {
		if _, ok := byCol[c]; ok {
			cols = append(cols, c)
		}
	}

	summaries := make([]columnSummary, 0, len(cols))
	for _, c := range cols {
		summaries = append(summaries, columnSummary{Column: c, Summary: byCol[c]})
	}

	switch output {
	case outputTable, outputCSV:
		header := []string{"column", "count", "min", "q1", "median", "q3", "max", "mean"}
		rows := make([][]string, 0, len(summaries))

		for _, s := range summaries {
			rows = append(rows, []string{
				s.Column,
				strconv.Itoa(s.Count),
				formatFloat(s.Min),
				formatFloat(s.Q1),
				formatFloat(s.Median),
				formatFloat(s.Q3),
				formatFloat(s.Max),
				formatFloat(s.Mean),
			})
		}

		if output == outputCSV {
			st := &dataset.Table{Columns: header, Rows: rows}
			if err := st.WriteCSV(w); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}

			return nil
		}

		return writeTable(w, header, rows)
	}

	return writeStructured(w, output, summaries)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
