package notify

import (
	"fmt"
	"strings"
)

// placeholder is rendered in table cells with no value.
const placeholder = "-"

// FormatUpdate renders the single-shipment notification message. The
// timestamp line is omitted when no timestamp is available.
func FormatUpdate(nickname, status, location, timestamp string) string {
	lines := []string{
		"📦 " + nickname,
		"Status: " + status,
		"Location: " + location,
	}
	if timestamp != "" {
		lines = append(lines, "Updated: "+timestamp)
	}
	return strings.Join(lines, "\n")
}

// TableRow is one shipment's summary line in the tracking table.
type TableRow struct {
	Name     string
	Status   string
	Location string
	Updated  string
}

// FormatTable renders one fixed-width row per tracked shipment, bounded
// by a separator rule above and below. Missing values render as a dash.
func FormatTable(rows []TableRow) string {
	headers := []string{"Name", "Status", "Location", "Updated"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{
			orDash(row.Name),
			orDash(row.Status),
			orDash(row.Location),
			orDash(row.Updated),
		}
		for i, cell := range line {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
		cells = append(cells, line)
	}

	var b strings.Builder
	total := len(widths) - 1 // separating spaces
	for _, w := range widths {
		total += w
	}
	rule := strings.Repeat("-", total)

	b.WriteString(rule + "\n")
	b.WriteString(formatRow(headers, widths) + "\n")
	for _, line := range cells {
		b.WriteString(formatRow(line, widths) + "\n")
	}
	b.WriteString(rule)
	return b.String()
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	return strings.TrimRight(strings.Join(padded, " "), " ")
}

func orDash(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
