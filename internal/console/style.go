package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	prompt lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	index  lipgloss.Style
	muted  lipgloss.Style
}

// newStyles binds styles to out so colour is only emitted to terminals.
func newStyles(out io.Writer, color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{prompt: plain, ok: plain, fail: plain, index: plain, muted: plain}
	}
	r := lipgloss.NewRenderer(out)
	return styles{
		prompt: r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		ok:     r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("9")),
		index:  r.NewStyle().Foreground(lipgloss.Color("11")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
