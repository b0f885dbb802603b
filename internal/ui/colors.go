package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/taskr/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF4672", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	focused lipgloss.Style
	blurred lipgloss.Style
	empty   lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:   NewBold(t).MarginBottom(1),
		ok:      NewBold(s),
		err:     NewBold(e),
		warn:    NewStyle(w),
		help:    NewEm(h),
		focused: NewStyle(t),
		blurred: NewStyle(h),
		empty:   NewEm(h).Padding(1, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

var priorityColors = map[models.Priority]string{
	models.PriorityLow:    "#626262",
	models.PriorityMed:    "#04B575",
	models.PriorityHigh:   "#FFA500",
	models.PriorityUrgent: "#FF4672",
}

// PriorityStyle colors a priority label by urgency.
func PriorityStyle(p models.Priority) lipgloss.Style {
	fg, ok := priorityColors[p]
	if !ok {
		fg = priorityColors[models.DefaultPriority]
	}
	return NewBold(fg)
}
