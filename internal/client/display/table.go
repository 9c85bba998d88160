package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"resultboard/internal/server/core"
)

// JSON writes v indented, or the marshal error in red
func JSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}

// colorValue dims placeholders so real results stand out
func colorValue(v string) string {
	if v == "" || v == core.Placeholder || v == "--" {
		return Yellow + core.Placeholder + Reset
	}
	return Green + v + Reset
}

// Games lists the catalog in rank order
func Games(w io.Writer, games []core.Game) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Rank\tCode\tName\tDefault Time\tActive")
	for _, g := range games {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%v\n", g.OrderIndex, g.Code, g.Name, g.DefaultTime, g.Active)
	}
	tw.Flush()
}

// Matrix renders a day matrix with one row per time slot
func Matrix(w io.Writer, m core.DayMatrix) {
	fmt.Fprintf(w, "%s%s%s\n", Cyan, m.DateStr, Reset)
	if len(m.Rows) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Time\t%s\n", strings.Join(m.Games, "\t"))
	for _, row := range m.Rows {
		cells := make([]string, len(m.Games))
		for i, code := range m.Games {
			cells[i] = colorValue(row.Values[code])
		}
		fmt.Fprintf(tw, "%s\t%s\n", row.Time, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// Values renders one code:value line per game, sorted by code
func Values(w io.Writer, title string, values map[string]string) {
	fmt.Fprintf(w, "%s%s%s\n", Cyan, title, Reset)
	codes := make([]string, 0, len(values))
	for code := range values {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, code := range codes {
		fmt.Fprintf(tw, "  %s\t%s\n", code, colorValue(values[code]))
	}
	tw.Flush()
}

// Monthly renders a month chart, one row per day
func Monthly(w io.Writer, chart core.MonthlyChart) {
	fmt.Fprintf(w, "%s%04d-%02d%s\n", Cyan, chart.Year, chart.Month, Reset)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Date\t%s\n", strings.Join(chart.Games, "\t"))
	for _, row := range chart.Rows {
		cells := make([]string, len(chart.Games))
		for i, code := range chart.Games {
			cells[i] = colorValue(row.Values[code])
		}
		fmt.Fprintf(tw, "%s\t%s\n", row.DateStr, strings.Join(cells, "\t"))
	}
	tw.Flush()
}
