package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// WriteTable writes a markdown summary table of the report. An empty
// report gives a table with no rows.
func (r *Report) WriteTable(w io.Writer) error {
	fmt.Fprintln(w, "## Combined Benchmarks")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d entries\n", r.Len())
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Name | Run Name | Real Time | CPU Time | Unit |")
	fmt.Fprintln(w, "|------|----------|-----------|----------|------|")

	for _, rec := range r.Benchmarks {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			cell(rec, "name"),
			cell(rec, "run_name"),
			formatTime(rec, "real_time"),
			formatTime(rec, "cpu_time"),
			cell(rec, "time_unit"),
		)
	}

	return nil
}

func cell(rec Record, field string) string {
	s, err := rec.String(field)
	if err != nil || s == "" {
		return "-"
	}

	return strings.ReplaceAll(s, "|", `\|`)
}

// formatTime prints numbers with at most three decimals. Values stored
// as strings, like memory samples, are parsed first.
func formatTime(rec Record, field string) string {
	s, err := rec.String(field)
	if err != nil {
		return "-"
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return cell(rec, field)
	}

	formatted := strconv.FormatFloat(f, 'f', 3, 64)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted
}
