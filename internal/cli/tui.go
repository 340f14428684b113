package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/vegadeck/pkg/dataflow"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DatasetListModel - Interactive data source browsing
// =============================================================================

// DatasetListModel is the bubbletea model for browsing a specification's
// data sources.
type DatasetListModel struct {
	Nodes    []*dataflow.Node
	Cursor   int
	Selected *dataflow.Node
	Height   int
	Offset   int

	// Inputs and Consumers index the graph edges by dataset name:
	// Inputs[id] are the datasets id reads from, Consumers[id] the
	// datasets that read id.
	Inputs    map[string][]string
	Consumers map[string][]string
}

// NewDatasetListModel creates a dataset list model from a data-flow graph.
func NewDatasetListModel(g *dataflow.Graph) DatasetListModel {
	inputs := make(map[string][]string)
	consumers := make(map[string][]string)
	for _, e := range g.Edges() {
		inputs[e.To] = append(inputs[e.To], e.From)
		consumers[e.From] = append(consumers[e.From], e.To)
	}
	return DatasetListModel{
		Nodes:     g.Nodes(),
		Cursor:    0,
		Height:    15,
		Offset:    0,
		Inputs:    inputs,
		Consumers: consumers,
	}
}

func (m DatasetListModel) Init() tea.Cmd {
	return nil
}

func (m DatasetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Nodes[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m DatasetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Data Sources"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Nodes) {
		end = len(m.Nodes)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{cursor, n.ID, kindLabel(n), n.Type, nodeDetail(m, n)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Dataset", "Kind", "Loader", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			n := m.Nodes[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if n.Conflict || n.Kind == dataflow.KindMissing {
				base = base.Foreground(colorRed)
			} else if n.Kind == dataflow.KindURL {
				base = base.Foreground(colorBlue)
			} else if n.Kind == dataflow.KindEmpty {
				base = base.Foreground(colorDim)
			}

			if isCurrent {
				return base.Bold(true)
			}
			if col == 4 {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  ", m.Cursor+1, len(m.Nodes))))
	b.WriteString(fmt.Sprintf("%s inline   %s remote   %s conflict or undefined",
		StyleSuccess.Render("values"), StyleLink.Render("url"), StyleWarning.Render("!")))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// kindLabel renders the node kind, flagging conflicting stanzas.
func kindLabel(n *dataflow.Node) string {
	if n.Conflict {
		return string(n.Kind) + " !"
	}
	return string(n.Kind)
}

// nodeDetail renders the detail column: the loader detail when present,
// otherwise the dependency fan-in and fan-out.
func nodeDetail(m DatasetListModel, n *dataflow.Node) string {
	if n.Detail != "" {
		return n.Detail
	}
	inputs := len(m.Inputs[n.ID])
	consumers := len(m.Consumers[n.ID])
	if inputs == 0 && consumers == 0 {
		return ""
	}
	return fmt.Sprintf("%d in, %d out", inputs, consumers)
}
