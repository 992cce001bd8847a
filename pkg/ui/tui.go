package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	swapApp "github.com/metaswap/swapr/business/swap/app"
	"github.com/metaswap/swapr/business/swap/domain"
	"github.com/metaswap/swapr/pkg/ui/components"
)

// Fetcher runs one fan-out and returns the ranked routes.
type Fetcher func(ctx context.Context) ([]*domain.TransactionRequestWithEstimate, error)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseQuoting Phase = "quoting" // Fan-out in flight
	PhaseResults Phase = "results" // Ranked table shown
	PhaseError   Phase = "error"   // Fan-out failed
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	routes  *components.RoutesComponent
	spinner spinner.Model
	keys    KeyMap

	ctx     context.Context
	fetch   Fetcher
	request string // one-line request summary shown in the header

	phase       Phase
	ranked      []*domain.TransactionRequestWithEstimate
	err         error
	quoteStart  time.Time
	quoteTaken  time.Duration
	showDetails bool
	width       int
	quitting    bool
}

// New creates the TUI model. The fetcher is invoked once at startup and
// again on every re-quote.
func New(ctx context.Context, request string, fetch Fetcher) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Model{
		routes:     components.NewRoutesComponent(),
		spinner:    sp,
		keys:       DefaultKeyMap(),
		ctx:        ctx,
		fetch:      fetch,
		request:    request,
		phase:      PhaseQuoting,
		quoteStart: time.Now(),
	}
}

// Init starts the spinner and the first fan-out.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m Model) fetchCmd() tea.Cmd {
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		ranked, err := fetch(ctx)
		if err != nil {
			return QuoteErrMsg{Error: err}
		}
		return RoutesMsg{Ranked: ranked, Performance: swapApp.Performance(ranked)}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.phase != PhaseQuoting {
				m.phase = PhaseQuoting
				m.quoteStart = time.Now()
				m.showDetails = false
				return m, tea.Batch(m.spinner.Tick, m.fetchCmd())
			}
		case "enter":
			if m.phase == PhaseResults {
				m.showDetails = !m.showDetails
			}
		case "up", "k":
			m.routes.MoveUp()
		case "down", "j":
			m.routes.MoveDown()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		if m.phase == PhaseQuoting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case RoutesMsg:
		m.phase = PhaseResults
		m.ranked = msg.Ranked
		m.err = nil
		m.quoteTaken = time.Since(m.quoteStart)
		rows := make([]components.RouteRow, 0, len(msg.Performance))
		for i, p := range msg.Performance {
			rows = append(rows, components.RouteRow{
				Rank:         i + 1,
				AggregatorID: p.AggregatorID,
				Output:       p.Output,
				OutputSymbol: p.OutputSymbol,
				ExchangeRate: p.ExchangeRate,
				CostUSD:      p.TotalCostUSD,
				Steps:        p.Steps,
				DeltaToBest:  p.DeltaToBest,
			})
		}
		m.routes.Set(rows)

	case QuoteErrMsg:
		m.phase = PhaseError
		m.err = msg.Error
		m.quoteTaken = time.Since(m.quoteStart)
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("swapr"))
	b.WriteString("  ")
	b.WriteString(MutedValue.Render(m.request))
	b.WriteString("\n\n")

	switch m.phase {
	case PhaseQuoting:
		b.WriteString(fmt.Sprintf("%s querying aggregators...\n", m.spinner.View()))

	case PhaseError:
		b.WriteString(ErrorStyle.Render("quote failed: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("r re-quote · q quit"))

	case PhaseResults:
		b.WriteString(BoxStyle.Render(m.routes.View()))
		b.WriteString("\n")
		b.WriteString(MutedValue.Render(fmt.Sprintf("%d routes in %s", m.routes.Len(), m.quoteTaken.Round(time.Millisecond))))
		b.WriteString("\n")
		if m.showDetails {
			b.WriteString(m.detailsView())
		}
		b.WriteString(HelpStyle.Render("↑/↓ select · enter details · r re-quote · q quit"))
	}

	return b.String()
}

// detailsView renders the transaction request of the selected route.
func (m Model) detailsView() string {
	row, ok := m.routes.Selected()
	if !ok {
		return ""
	}
	var record *domain.TransactionRequestWithEstimate
	for _, r := range m.ranked {
		if r.AggregatorID == row.AggregatorID {
			record = r
			break
		}
	}
	if record == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("TRANSACTION · " + record.AggregatorID))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  to        %s\n", record.To.Hex()))
	b.WriteString(fmt.Sprintf("  approval  %s\n", record.ApprovalAddress.Hex()))
	b.WriteString(fmt.Sprintf("  chain     %d\n", record.ChainID))
	value := "0"
	if record.Value != nil {
		value = record.Value.String()
	}
	b.WriteString(fmt.Sprintf("  value     %s wei\n", value))
	b.WriteString(fmt.Sprintf("  calldata  %d bytes\n", len(record.Data)))
	for i, step := range record.Steps {
		b.WriteString(fmt.Sprintf("  step %d    %s via %s: %s -> %s\n",
			i+1, step.Type, step.Protocol.Name, step.Input.String(), step.Output.String()))
	}
	return BoxStyle.Render(b.String()) + "\n"
}
