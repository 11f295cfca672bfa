package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/z/xonotic-map-manager/internal/utils"
)

var (
	pk3Style   = lipgloss.NewStyle().Bold(true)
	bspStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	matchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// RenderOptions controls the text produced by MapPackage.Render.
type RenderOptions struct {
	Detail Detail
	// Highlight, when non-empty, decorates occurrences of the substring
	// in rendered bsp names. Rendering never alters the package itself.
	Highlight string
	// DownloadURL is the base URL the pk3 can be fetched from.
	DownloadURL string
}

// Render returns a human-readable view of the package at the requested
// detail level.
func (m *MapPackage) Render(opts RenderOptions) string {
	switch opts.Detail {
	case DetailShort:
		return m.Pk3
	case DetailLong:
		return m.renderLong(opts)
	default:
		return m.renderDefault(opts)
	}
}

func (m *MapPackage) renderDefault(opts RenderOptions) string {
	var b strings.Builder
	b.WriteString(pk3Style.Render(m.Pk3))
	b.WriteString(" [")
	names := m.BspNames()
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(bspStyle.Render(highlight(name, opts.Highlight)))
	}
	b.WriteString("]")
	if opts.DownloadURL != "" {
		b.WriteString("\n")
		b.WriteString(opts.DownloadURL + m.Pk3)
	}
	return b.String()
}

func (m *MapPackage) renderLong(opts RenderOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "         pk3: %s\n", pk3Style.Render(m.Pk3))
	for _, name := range m.BspNames() {
		bsp := m.Bsp[name]
		fmt.Fprintf(&b, "         bsp: %s\n", bspStyle.Render(highlight(name, opts.Highlight)))
		fmt.Fprintf(&b, "       title: %s\n", bsp.Title)
		fmt.Fprintf(&b, " description: %s\n", bsp.Description)
		fmt.Fprintf(&b, "      author: %s\n", bsp.Author)
	}
	fmt.Fprintf(&b, "      shasum: %s\n", m.Shasum)
	fmt.Fprintf(&b, "        date: %s\n", time.Unix(m.Date, 0).UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "        size: %s", utils.ConvertSize(m.Filesize))
	if opts.DownloadURL != "" {
		fmt.Fprintf(&b, "\n          dl: %s%s", opts.DownloadURL, m.Pk3)
	}
	return b.String()
}

// highlight decorates occurrences of sub in s. Text only; the underlying
// data is untouched.
func highlight(s, sub string) string {
	if sub == "" || !strings.Contains(s, sub) {
		return s
	}
	return strings.ReplaceAll(s, sub, matchStyle.Render(sub))
}
