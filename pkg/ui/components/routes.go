// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RouteRow is one ranked route in the table.
type RouteRow struct {
	Rank         int
	AggregatorID string
	Output       decimal.Decimal
	OutputSymbol string
	ExchangeRate decimal.Decimal
	CostUSD      decimal.Decimal
	Steps        int
	DeltaToBest  decimal.Decimal
}

// RoutesComponent renders the ranked route table.
type RoutesComponent struct {
	rows     []RouteRow
	selected int
}

// NewRoutesComponent creates an empty routes component.
func NewRoutesComponent() *RoutesComponent {
	return &RoutesComponent{}
}

// Set replaces the table contents and resets the selection.
func (c *RoutesComponent) Set(rows []RouteRow) {
	c.rows = rows
	c.selected = 0
}

// Len returns the number of routes.
func (c *RoutesComponent) Len() int { return len(c.rows) }

// Selected returns the highlighted row, if any.
func (c *RoutesComponent) Selected() (RouteRow, bool) {
	if c.selected < 0 || c.selected >= len(c.rows) {
		return RouteRow{}, false
	}
	return c.rows[c.selected], true
}

// MoveUp moves the selection up one row.
func (c *RoutesComponent) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves the selection down one row.
func (c *RoutesComponent) MoveDown() {
	if c.selected < len(c.rows)-1 {
		c.selected++
	}
}

// View renders the route table.
func (c *RoutesComponent) View() string {
	if len(c.rows) == 0 {
		return "No routes yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	bestStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	selectedStyle := lipgloss.NewStyle().Bold(true)

	result := headerStyle.Render("ROUTES (best first)") + "\n"
	result += "┌────┬────────────┬────────────────────┬──────────────┬──────────┬───────┬──────────────┐\n"
	result += "│ #  │ Aggregator │       Output       │     Rate     │ Cost USD │ Steps │   vs best    │\n"
	result += "├────┼────────────┼────────────────────┼──────────────┼──────────┼───────┼──────────────┤\n"

	for i, row := range c.rows {
		delta := "—"
		if i > 0 {
			delta = "-" + row.DeltaToBest.StringFixed(6)
		}
		line := fmt.Sprintf("│%3d │ %-10s │ %12s %-5s │ %12s │ %8s │ %5d │ %12s │",
			row.Rank,
			row.AggregatorID,
			row.Output.StringFixed(6),
			row.OutputSymbol,
			row.ExchangeRate.StringFixed(8),
			row.CostUSD.StringFixed(2),
			row.Steps,
			delta,
		)
		if i == 0 {
			line = bestStyle.Render(line)
		}
		if i == c.selected {
			line = selectedStyle.Render(line)
		}
		result += line + "\n"
	}

	result += "└────┴────────────┴────────────────────┴──────────────┴──────────┴───────┴──────────────┘"
	return result
}
