package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridkit/pkg/grid"
	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/render/text"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	cursorMarker = "▸ "
	cursorBlank  = "  "

	// chromeLines is the number of lines View uses around the grid.
	chromeLines = 6
)

// =============================================================================
// GridModel - Interactive group browser
// =============================================================================

// GridModel is the bubbletea model for browsing a grouped grid. Enter or
// space toggles the group under the cursor; resizing the terminal re-runs the
// column layout.
type GridModel struct {
	Engine *grid.Engine
	Title  string
	Cursor int
	Offset int
	Height int

	items  []grouping.Item
	header string
	lines  []string
}

// NewGridModel creates a browser over engine.
func NewGridModel(engine *grid.Engine, title string) GridModel {
	m := GridModel{Engine: engine, Title: title, Height: 20}
	m.refresh()
	return m
}

// refresh re-renders the display sequence with the current layout.
func (m *GridModel) refresh() {
	alloc := m.Engine.Layout()
	r := text.New(m.Engine.Columns(), alloc.Widths, text.Options{Styled: true})

	m.items = m.Engine.DisplaySequence()
	m.header = r.TitleLine()
	m.lines = make([]string, len(m.items))
	for i, it := range m.items {
		m.lines[i] = r.Line(it)
	}

	if m.Cursor >= len(m.items) {
		m.Cursor = len(m.items) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *GridModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// toggle opens or closes the group whose header is under the cursor and
// keeps the cursor on that header.
func (m *GridModel) toggle() {
	if m.Cursor >= len(m.items) {
		return
	}
	it := m.items[m.Cursor]
	if it.Kind != grouping.KindHeader {
		return
	}
	if err := m.Engine.ToggleGroup(it.Group.Path()...); err != nil {
		return
	}
	m.refresh()
	for i, other := range m.items {
		if other.Kind == grouping.KindHeader && other.Group == it.Group {
			m.Cursor = i
			break
		}
	}
	m.scroll()
}

// setAll opens or closes every group.
func (m *GridModel) setAll(open bool) {
	var walk func([]*grouping.Node)
	walk = func(nodes []*grouping.Node) {
		for _, n := range nodes {
			if open {
				n.Show()
			} else {
				n.Hide()
			}
			walk(n.SubGroups())
		}
	}
	walk(m.Engine.Tree().Groups())
	m.refresh()
}

func (m GridModel) Init() tea.Cmd {
	return nil
}

func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.items)-1 {
				m.Cursor++
			}
		case "pgup":
			m.Cursor = max(m.Cursor-m.Height, 0)
		case "pgdown":
			m.Cursor = max(min(m.Cursor+m.Height, len(m.items)-1), 0)
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.items)-1, 0)
		case "enter", " ", "space":
			m.toggle()
		case "e":
			m.setAll(true)
		case "c":
			m.setAll(false)
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-chromeLines, 5)
		if err := m.Engine.Resize(max(msg.Width-len(cursorBlank), 0)); err == nil {
			m.refresh()
		}
	}
	return m, nil
}

func (m GridModel) View() string {
	var b strings.Builder

	st := m.Engine.Stats()
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(statsLine(st.Rows, st.Groups, st.Levels))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle  e/c expand/collapse all  q quit"))
	b.WriteString("\n\n")
	b.WriteString(cursorBlank + m.header)
	b.WriteString("\n")

	end := min(m.Offset+m.Height, len(m.lines))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(cursorMarker))
		} else {
			b.WriteString(cursorBlank)
		}
		b.WriteString(m.lines[i])
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(m.lines) == 0 {
		b.WriteString(listDimStyle.Render("  no records"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.lines))))
	}

	return b.String()
}
