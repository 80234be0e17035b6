package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Colors{
	Accent: "#7D56F4",
	Good:   "#04B575",
	Bad:    "#FF0000",
	Warn:   "#FFA500",
	Muted:  "#626262",
})

// Colors names the foregrounds of the pipeline views.
type Colors struct {
	Accent string // view titles
	Good   string // accuracy and filled bar cells
	Bad    string // pipeline failures
	Warn   string // unmatched likes, skipped evaluation
	Muted  string // help, labels and empty bar cells
}

// Palette holds the styles shared by the run, result and report views and by [RenderSummary].
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	bar   lipgloss.Style
	label lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	return &Palette{
		title: foreground(c.Accent).Bold(true).MarginBottom(1),
		ok:    foreground(c.Good).Bold(true),
		err:   foreground(c.Bad).Bold(true),
		warn:  foreground(c.Warn),
		help:  foreground(c.Muted).Italic(true),
		bar:   foreground(c.Good),
		label: foreground(c.Muted).Width(18),
	}
}

func foreground(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

// Bar renders a feature weight share v in [0, 1] as a horizontal bar of the given width.
func (p *Palette) Bar(v float64, width int) string {
	v = min(max(v, 0), 1)
	filled := int(v*float64(width) + 0.5)
	return p.bar.Render(strings.Repeat("█", filled)) + p.help.Render(strings.Repeat("░", width-filled))
}
