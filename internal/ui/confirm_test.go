package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m ConfirmModel, msg tea.KeyMsg) (ConfirmModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(ConfirmModel), cmd
}

func TestConfirmModelUpdate(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.KeyMsg
		want    Decision
		wantCmd bool
	}{
		{"yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, Accepted, true},
		{"upper yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")}, Accepted, true},
		{"no", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, Denied, true},
		{"enter defaults to no", tea.KeyMsg{Type: tea.KeyEnter}, Denied, true},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, Denied, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, Denied, true},
		{"other key ignored", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, Undecided, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(NewConfirm("Delete 2 images?"), tt.msg)
			if got := m.Selected(); got != tt.want {
				t.Errorf("Selected() = %v, want %v", got, tt.want)
			}
			if (cmd != nil) != tt.wantCmd {
				t.Errorf("cmd returned = %v, want %v", cmd != nil, tt.wantCmd)
			}
		})
	}
}

func TestConfirmModelView(t *testing.T) {
	m := NewConfirm("Delete 2 images?")
	if v := m.View(); !strings.Contains(v, "Delete 2 images?") || !strings.Contains(v, "y/N") {
		t.Errorf("unexpected view before answer: %q", v)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if v := m.View(); !strings.HasSuffix(v, "yes\n") {
		t.Errorf("unexpected view after answer: %q", v)
	}
}

func TestConfirm(t *testing.T) {
	var out strings.Builder
	ok, err := Confirm("Delete 1 images?", strings.NewReader("y"), &out)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !ok {
		t.Error("Confirm() = false, want true")
	}
}
