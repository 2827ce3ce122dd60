package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLayerPickerDefaults(t *testing.T) {
	m := NewLayerPickerModel()
	if got := m.Selected(); got != nil {
		t.Errorf("full selection should return nil (all layers), got %v", got)
	}
	if m.checkedCount() != 6 {
		t.Errorf("checked = %d, want 6", m.checkedCount())
	}
}

func TestLayerPickerToggle(t *testing.T) {
	m := NewLayerPickerModel()

	next, _ := m.Update(key(" "))
	m = next.(LayerPickerModel)
	sel := m.Selected()
	if len(sel) != 5 {
		t.Fatalf("after toggling first layer: %v", sel)
	}
	for _, ext := range sel {
		if ext == "GTL" {
			t.Error("toggled layer should be excluded")
		}
	}

	next, _ = m.Update(key("n"))
	m = next.(LayerPickerModel)
	if m.checkedCount() != 0 {
		t.Error("n should clear the selection")
	}

	// Confirming an empty selection is refused.
	next, cmd := m.Update(key("enter"))
	m = next.(LayerPickerModel)
	if m.Confirmed || cmd != nil {
		t.Error("empty selection must not confirm")
	}

	next, _ = m.Update(key("a"))
	m = next.(LayerPickerModel)
	next, _ = m.Update(key("enter"))
	m = next.(LayerPickerModel)
	if !m.Confirmed {
		t.Error("confirm with full selection failed")
	}
}

func TestLayerPickerCursorBounds(t *testing.T) {
	m := NewLayerPickerModel()

	next, _ := m.Update(key("k"))
	m = next.(LayerPickerModel)
	if m.cursor != 0 {
		t.Error("cursor moved above the first row")
	}

	for i := 0; i < 10; i++ {
		next, _ = m.Update(key("j"))
		m = next.(LayerPickerModel)
	}
	if m.cursor != 5 {
		t.Errorf("cursor = %d, want last row 5", m.cursor)
	}
}
