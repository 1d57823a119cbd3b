package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fschmidt/virtualcv/pkg/cv"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listDraftStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

// browseCommand creates the browse command: an interactive terminal tree of
// the CV for quick inspection without a browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		file   string
		apiURL string
		drafts bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the CV tree interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var data cv.Data
			var err error
			if file != "" {
				data, err = cv.ReadFile(file)
			} else {
				api, cerr := c.apiClient(apiURL)
				if cerr != nil {
					return cerr
				}
				data, err = api.GetData(ctx, false)
			}
			if err != nil {
				return err
			}

			visible := data.Visible(drafts)
			if len(visible) == 0 {
				printWarning("No nodes to browse")
				return nil
			}

			model := NewTreeModel(visible)
			program := tea.NewProgram(model, tea.WithContext(ctx))
			final, err := program.Run()
			if err != nil {
				return fmt.Errorf("run browser: %w", err)
			}

			if m, ok := final.(TreeModel); ok && m.Chosen != nil {
				printKeyValue("ID", m.Chosen.ID)
				printKeyValue("Type", string(m.Chosen.Type))
				printKeyValue("Label", m.Chosen.Label)
				printKeyValue("Link", cv.FormatNodeFragment(m.Chosen.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "browse a local JSON file instead of the API")
	cmd.Flags().StringVar(&apiURL, "api", "", "API endpoint (default "+defaultAPIURL+")")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft nodes")

	return cmd
}

// =============================================================================
// TreeModel - Interactive CV tree navigation
// =============================================================================

// treeRow is one flattened, currently visible row of the tree.
type treeRow struct {
	node  cv.Node
	depth int
}

// TreeModel is the bubbletea model for browsing the CV tree. Rows are the
// flattened visible portion of the tree; collapsed branches are skipped
// during flattening.
type TreeModel struct {
	nodes     []cv.Node
	children  map[string][]cv.Node
	collapsed map[string]bool
	rows      []treeRow

	Cursor int
	Height int
	Offset int

	// Chosen is set when the user confirms a node with enter.
	Chosen *cv.Node
}

// NewTreeModel creates a tree model over the given nodes.
func NewTreeModel(nodes []cv.Node) TreeModel {
	// Input order is preserved within each parent.
	children := make(map[string][]cv.Node)
	for _, n := range nodes {
		children[n.ParentID] = append(children[n.ParentID], n)
	}

	m := TreeModel{
		nodes:     nodes,
		children:  children,
		collapsed: make(map[string]bool),
		Height:    20,
	}
	m.flatten()
	return m
}

// flatten rebuilds the visible rows from the tree roots.
func (m *TreeModel) flatten() {
	m.rows = m.rows[:0]
	var walk func(parentID string, depth int)
	walk = func(parentID string, depth int) {
		for _, n := range m.children[parentID] {
			m.rows = append(m.rows, treeRow{node: n, depth: depth})
			if !m.collapsed[n.ID] {
				walk(n.ID, depth+1)
			}
		}
	}
	walk("", 0)

	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "left", "h":
			row := m.rows[m.Cursor]
			if !m.collapsed[row.node.ID] && len(m.children[row.node.ID]) > 0 {
				m.collapsed[row.node.ID] = true
				m.flatten()
			}
		case "right", "l":
			row := m.rows[m.Cursor]
			if m.collapsed[row.node.ID] {
				delete(m.collapsed, row.node.ID)
				m.flatten()
			}
		case " ":
			row := m.rows[m.Cursor]
			if len(m.children[row.node.ID]) > 0 {
				if m.collapsed[row.node.ID] {
					delete(m.collapsed, row.node.ID)
				} else {
					m.collapsed[row.node.ID] = true
				}
				m.flatten()
			}
		case "enter":
			node := m.rows[m.Cursor].node
			m.Chosen = &node
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse CV"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ fold  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.rows[i]
		n := row.node

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		fold := "  "
		if len(m.children[n.ID]) > 0 {
			if m.collapsed[n.ID] {
				fold = "+ "
			} else {
				fold = "- "
			}
		}

		line := cursor + strings.Repeat("  ", row.depth) + fold + treeLabel(n)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.IsDraft:
			b.WriteString(listDraftStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	if len(m.rows) > 0 {
		b.WriteString(listDimStyle.Render("  " + m.rows[m.Cursor].node.ID))
	}

	return b.String()
}

// treeLabel formats the display text for one node.
func treeLabel(n cv.Node) string {
	label := n.Label
	if n.Type == cv.TypeProfile && n.Name != "" {
		label = n.Name
	}

	var extra []string
	if n.Company != "" {
		extra = append(extra, n.Company)
	}
	if n.DateRange != "" {
		extra = append(extra, n.DateRange)
	}
	if n.Proficiency != "" {
		extra = append(extra, string(n.Proficiency))
	}
	if n.IsDraft {
		extra = append(extra, "draft")
	}

	if len(extra) > 0 {
		return label + listDimStyle.Render("  ("+strings.Join(extra, ", ")+")")
	}
	return label
}
