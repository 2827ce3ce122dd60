package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lwerner/copperline/pkg/gerber"
)

// List styles.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// layerItem is one row in the layer picker.
type layerItem struct {
	name      string
	extension string
	checked   bool
}

// LayerPickerModel is the bubbletea model for interactive layer selection.
// All layers start selected; the user toggles the subset to emit.
type LayerPickerModel struct {
	items     []layerItem
	cursor    int
	Confirmed bool
}

// NewLayerPickerModel creates a picker listing every emittable layer.
func NewLayerPickerModel() LayerPickerModel {
	var items []layerItem
	for _, l := range gerber.Layers() {
		items = append(items, layerItem{name: l.Name, extension: l.Extension, checked: true})
	}
	return LayerPickerModel{items: items}
}

func (m LayerPickerModel) Init() tea.Cmd {
	return nil
}

func (m LayerPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ":
			m.items[m.cursor].checked = !m.items[m.cursor].checked
		case "a":
			for i := range m.items {
				m.items[i].checked = true
			}
		case "n":
			for i := range m.items {
				m.items[i].checked = false
			}
		case "enter":
			if m.checkedCount() == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m LayerPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  n none  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if item.checked {
			check = "[x]"
		}
		line := cursor + check + " " + item.extension + "  " + item.name
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.checkedCount() == 0 {
		b.WriteString("\n" + StyleWarning.Render("select at least one layer") + "\n")
	}
	return b.String()
}

func (m LayerPickerModel) checkedCount() int {
	n := 0
	for _, item := range m.items {
		if item.checked {
			n++
		}
	}
	return n
}

// Selected returns the extensions of the checked layers. A full selection
// returns nil, which the pipeline treats as "all layers".
func (m LayerPickerModel) Selected() []string {
	var out []string
	for _, item := range m.items {
		if item.checked {
			out = append(out, item.extension)
		}
	}
	if len(out) == len(m.items) {
		return nil
	}
	return out
}
