// Package ui holds the interactive terminal prompts
package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jimschubert/answer/colors"
)

// Decision is the answer given to a confirmation prompt
type Decision int

const (
	// Undecided means the prompt has not been answered yet
	Undecided Decision = iota
	Accepted
	Denied
)

func (d Decision) String() string {
	return [...]string{"undecided", "accepted", "denied"}[d]
}

// KeyMap defines the key bindings of the confirmation prompt
type KeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var DefaultKeyMap = KeyMap{
	Yes: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "yes"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N", "enter"),
		key.WithHelp("n", "no"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// ConfirmModel is a single-keystroke y/N prompt. Anything other than
// a yes answers no.
type ConfirmModel struct {
	Prompt string
	Keys   KeyMap

	prefixStyle lipgloss.Style
	hintStyle   lipgloss.Style
	selected    Decision
}

// NewConfirm creates a prompt asking the given question
func NewConfirm(prompt string) ConfirmModel {
	return ConfirmModel{
		Prompt:      prompt,
		Keys:        DefaultKeyMap,
		prefixStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(colors.PromptPrefix)),
		hintStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Placeholder)),
	}
}

// Selected returns the decision made so far
func (m ConfirmModel) Selected() Decision {
	return m.selected
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.Keys.Yes):
		m.selected = Accepted
	case key.Matches(keyMsg, m.Keys.No), key.Matches(keyMsg, m.Keys.Cancel):
		m.selected = Denied
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	var b strings.Builder
	b.WriteString(m.prefixStyle.Render("? "))
	b.WriteString(m.Prompt)
	b.WriteString(" ")

	switch m.selected {
	case Accepted:
		b.WriteString("yes\n")
	case Denied:
		b.WriteString("no\n")
	default:
		b.WriteString(m.hintStyle.Render("y/N"))
	}
	return b.String()
}

// Confirm asks the question on the terminal and reports whether it was
// accepted. in and out default to the process stdin and stdout when nil.
func Confirm(prompt string, in io.Reader, out io.Writer) (bool, error) {
	var opts []tea.ProgramOption
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(NewConfirm(prompt), opts...).Run()
	if err != nil {
		return false, err
	}
	return final.(ConfirmModel).Selected() == Accepted, nil
}
