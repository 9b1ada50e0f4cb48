package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/voltcluster/voltcluster/pkg/graph"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ClusterListModel - Interactive cluster browsing
// =============================================================================

// ClusterListModel is the bubbletea model for browsing a cluster assignment.
// The left-hand list shows one row per community; pressing enter expands the
// full member list of the highlighted community.
type ClusterListModel struct {
	Labels   map[int64]string
	Clusters [][]int64
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// NewClusterListModel creates a cluster browser for the given assignment.
func NewClusterListModel(g graph.Graph, clusters [][]int64) ClusterListModel {
	labels := make(map[int64]string, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[n.ID] = n.DisplayLabel()
	}
	return ClusterListModel{
		Labels:   labels,
		Clusters: clusters,
		Height:   15,
	}
}

func (m ClusterListModel) Init() tea.Cmd {
	return nil
}

func (m ClusterListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Expanded {
				m.Expanded = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Clusters)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ClusterListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Communities"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand  q quit"))
	b.WriteString("\n\n")

	if m.Expanded {
		b.WriteString(m.memberView())
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Clusters) {
		end = len(m.Clusters)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(i),
			strconv.Itoa(len(m.Clusters[i])),
			m.sample(i, 5),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Community", "Size", "Members").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Clusters))))

	return b.String()
}

// memberView lists every member of the highlighted community.
func (m ClusterListModel) memberView() string {
	var b strings.Builder
	members := m.Clusters[m.Cursor]
	b.WriteString(StyleValue.Render(fmt.Sprintf("Community %d (%d members)", m.Cursor, len(members))))
	b.WriteString("\n\n")
	for _, id := range members {
		b.WriteString("  " + StyleDim.Render(iconArrow) + " " + m.label(id) + "\n")
	}
	return b.String()
}

// sample renders up to n member labels followed by an ellipsis.
func (m ClusterListModel) sample(i, n int) string {
	members := m.Clusters[i]
	if len(members) < n {
		n = len(members)
	}
	parts := make([]string, 0, n+1)
	for _, id := range members[:n] {
		parts = append(parts, m.label(id))
	}
	if len(members) > n {
		parts = append(parts, "…")
	}
	return strings.Join(parts, ", ")
}

func (m ClusterListModel) label(id int64) string {
	if l, ok := m.Labels[id]; ok && l != "" {
		return l
	}
	return strconv.FormatInt(id, 10)
}

// browseClusters runs the interactive cluster browser.
func browseClusters(g graph.Graph, clusters [][]int64) error {
	model := NewClusterListModel(g, clusters)
	_, err := tea.NewProgram(model).Run()
	return err
}
