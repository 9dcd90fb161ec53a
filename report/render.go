package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mel2oo/netsniff/flow"
	"github.com/xlab/tablewriter"
)

// renderHeading formats the "Scanning on" / "Addresses" / "Scanning" block
// that precedes the first table written to a report.
func renderHeading(iface string, addrs []string, updateTime time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scanning on:\n    - Interface %s\n", iface)
	b.WriteString("Addresses:\n")
	for _, addr := range addrs {
		fmt.Fprintf(&b, "    - %s\n", addr)
	}
	b.WriteString("\nScanning:\n")
	fmt.Fprintf(&b, "    - Update Time: %s\n\n", updateTime.Format("2006-01-02 15:04:05"))

	return b.String()
}

// renderTable formats rows as a table with the exact column set and order
// required by the report file format: IP Address | Port | Protocol | Bytes
// Transmitted | First Timestamp | Last Timestamp.
func renderTable(rows []flow.Row) string {
	table := tablewriter.CreateTable()
	table.AddHeaders("IP Address", "Port", "Protocol", "Bytes Transmitted", "First Timestamp", "Last Timestamp")

	for _, row := range rows {
		table.AddRow(
			row.Key.Addr,
			fmt.Sprintf("%d", row.Key.Port),
			row.Aggregate.Protocol.String(),
			fmt.Sprintf("%d", row.Aggregate.Bytes),
			formatTimestamp(row.Aggregate.FirstSeen),
			formatTimestamp(row.Aggregate.LastSeen),
		)
	}

	return table.Render()
}

// formatTimestamp renders a nanosecond timestamp as "HH:MM:SS <nanos> ns".
func formatTimestamp(ns int64) string {
	t := time.Unix(0, ns)
	return fmt.Sprintf("%s %d ns", t.Format("15:04:05"), ns)
}

// Render builds the full content appended to the report file on one
// iteration: the heading (only if this is the first write to the file) plus
// the rendered table.
func Render(file *File, iface string, addrs []string, table *flow.Table, now time.Time) string {
	var b strings.Builder

	if file.needsHeader() {
		b.WriteString(renderHeading(iface, addrs, now))
	}

	b.WriteString(renderTable(flow.Rows(table.Snapshot())))
	b.WriteString("\n")

	return b.String()
}
