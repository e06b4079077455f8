package log

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

const levelWidth = 5

var levelColors = map[Level]lipgloss.Style{
	DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
	InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#0000FF")),
	WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
	ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
	FatalLevel: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF0000")).
		Background(lipgloss.Color("#000000")).
		Bold(true),
}

// newStyles pads every level name to the same width so that
// messages line up in the log file
func newStyles() *Styles {
	styles := charmlog.DefaultStyles()
	for level, style := range levelColors {
		name := strings.ToUpper(level.String())
		if n := len(name); n < levelWidth {
			name += strings.Repeat(" ", levelWidth-n)
		}
		styles.Levels[level] = style.SetString(name)
	}
	return styles
}
