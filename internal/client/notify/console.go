package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleDefault     = lipgloss.NewStyle().Bold(true)
	titleDestructive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	titleSimulated   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	description      = lipgloss.NewStyle().Faint(true)
)

// Console prints notifications to a terminal writer.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	title := n.Title
	style := titleDefault
	switch n.Severity {
	case SeverityDestructive:
		style = titleDestructive
	case SeveritySimulated:
		style = titleSimulated
		title = "[simulated] " + title
	}

	fmt.Fprintln(c.w, style.Render(title))
	if n.Description != "" {
		fmt.Fprintln(c.w, "  "+description.Render(n.Description))
	}
}
