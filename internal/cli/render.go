package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"doccheck/internal/consistency"
	"doccheck/internal/extraction"
)

var (
	accent  = lipgloss.Color("#2563EB")
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	fieldStyle = lipgloss.NewStyle().Bold(true).Foreground(fg).Width(22)

	statusStyles = map[consistency.Status]lipgloss.Style{
		consistency.StatusPass:    lipgloss.NewStyle().Bold(true).Foreground(success),
		consistency.StatusWarning: lipgloss.NewStyle().Bold(true).Foreground(warning),
		consistency.StatusFail:    lipgloss.NewStyle().Bold(true).Foreground(danger),
	}
	severityStyles = map[consistency.Severity]lipgloss.Style{
		consistency.SeverityWarning: lipgloss.NewStyle().Bold(true).Foreground(warning),
		consistency.SeverityFail:    lipgloss.NewStyle().Bold(true).Foreground(danger),
	}
)

// RenderResult formats a verdict for the terminal.
func RenderResult(result consistency.ValidationResult) string {
	var b strings.Builder

	status := statusStyles[result.Status].Render(string(result.Status))
	header := titleStyle.Render(result.DocumentName) + "  " + status
	if n := len(result.Issues); n > 0 {
		header += dimStyle.Render(fmt.Sprintf("  ·  %d issue(s)", n))
	}
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n")

	for _, issue := range result.Issues {
		tag := severityStyles[issue.Severity].Render(fmt.Sprintf("%-7s", issue.Severity))
		fmt.Fprintf(&b, "  %s %s %s\n", tag, fieldStyle.Render(issue.Field), issue.Message)
		fmt.Fprintf(&b, "          %s\n", dimStyle.Render(fmt.Sprintf("document: %s  ·  shipment: %s", issue.DocumentValue, issue.ShipmentValue)))
	}
	return b.String()
}

// RenderFields lists extracted values in extraction order.
func RenderFields(fields extraction.FieldSet) string {
	var b strings.Builder
	b.WriteString(boxStyle.Render(titleStyle.Render("Extracted fields") +
		dimStyle.Render(fmt.Sprintf("  ·  %d of %d found", fields.Found(), len(extraction.Fields)))))
	b.WriteString("\n")
	for _, f := range extraction.Fields {
		v, ok := fields.Get(f)
		if !ok {
			v = dimStyle.Render(consistency.NotFound)
		}
		fmt.Fprintf(&b, "  %s %s\n", fieldStyle.Render(string(f)), v)
	}
	return b.String()
}
