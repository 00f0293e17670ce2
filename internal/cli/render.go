package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/querier"
)

const defaultMaxRows = 10

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetHeader(header)
	return table
}

// renderRows prints up to maxRows rows as a table. maxRows <= 0 prints all.
func renderRows(w io.Writer, columns []string, rows []querier.Row, maxRows int) {
	if len(columns) == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}
	table := newTable(w, columns)
	for i, row := range rows {
		if maxRows > 0 && i >= maxRows {
			break
		}
		cells := make([]string, row.Len())
		for j, v := range row.Values() {
			cells[j] = formatValue(v)
		}
		table.Append(cells)
	}
	table.Render()
	if maxRows > 0 && len(rows) > maxRows {
		fmt.Fprintf(w, "... %d more rows\n", len(rows)-maxRows)
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return `\x` + hex.EncodeToString(v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

// renderOutcome prints an outcome the way the interactive prompt shows it:
// the generated query, the answer, then the raw rows.
func renderOutcome(w io.Writer, out pipeline.Outcome, maxRows int) {
	if !out.Success {
		fmt.Fprintf(w, "Error: %s\n\n%s\n", deref(out.Error), out.NaturalResponse)
		return
	}
	fmt.Fprintf(w, "Generated SQL: %s\n", deref(out.SQLQuery))
	if ctx := deref(out.AdditionalContext); ctx != "" {
		fmt.Fprintf(w, "Additional context: %s\n", ctx)
	}
	fmt.Fprintf(w, "\n%s\n\n", strings.TrimSpace(out.NaturalResponse))
	fmt.Fprintf(w, "Raw results (%d rows, %d ms):\n", out.RowCount, out.ElapsedMS)
	if out.RowCount > 0 {
		renderRows(w, out.Columns, out.Results, maxRows)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
