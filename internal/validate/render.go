package validate

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Render writes the human-readable validation report: a record-count table,
// the per-field completeness percentages, every finding, and the final
// verdict. Counts are comma-grouped for readability.
func Render(w io.Writer, res *Result) {
	printer := message.NewPrinter(language.English)

	fmt.Fprintln(w, "Source data validation")
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Table", "Rows"})
	for _, c := range res.Counts {
		table.Append([]string{c.Table, printer.Sprintf("%d", c.Rows)})
	}
	table.Render()
	fmt.Fprintln(w)

	if len(res.Completeness) > 0 {
		fmt.Fprintln(w, "Optional field completeness:")
		for _, fc := range res.Completeness {
			fmt.Fprintf(w, "  %-20s %5.1f%% null (%s of %s rows)\n",
				fc.Field, fc.NullPct,
				printer.Sprintf("%d", fc.Nulls), printer.Sprintf("%d", fc.Total))
		}
		fmt.Fprintln(w)
	}

	for _, f := range res.Report.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", f)
	}
	for _, f := range res.Report.Warnings {
		fmt.Fprintf(w, "  ⚠ %s\n", f)
	}
	if len(res.Report.Errors) == 0 && len(res.Report.Warnings) == 0 {
		fmt.Fprintln(w, "  ✓ all checks passed")
	}
	fmt.Fprintln(w)

	if res.OK() {
		fmt.Fprintf(w, "Validation PASSED (%d warning(s))\n", len(res.Report.Warnings))
	} else {
		fmt.Fprintf(w, "Validation FAILED: %d error(s), %d warning(s)\n",
			len(res.Report.Errors), len(res.Report.Warnings))
	}
}
