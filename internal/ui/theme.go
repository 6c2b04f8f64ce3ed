package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Accent   lipgloss.Color
	Alt      lipgloss.Color
	Border   lipgloss.Color
	Good     lipgloss.Color
	Warn     lipgloss.Color
	BarFill  lipgloss.Color
	BarEmpty lipgloss.Color
}

var palettes = map[string]palette{
	"sakura": {
		Text:     lipgloss.Color("#f4e8ec"),
		Muted:    lipgloss.Color("#a8929a"),
		Accent:   lipgloss.Color("#f7a1c4"),
		Alt:      lipgloss.Color("#b8a1f7"),
		Border:   lipgloss.Color("#6b5560"),
		Good:     lipgloss.Color("#a1f7c9"),
		Warn:     lipgloss.Color("#f7d9a1"),
		BarFill:  lipgloss.Color("#f7a1c4"),
		BarEmpty: lipgloss.Color("#3a2f34"),
	},
	"midnight": {
		Text:     lipgloss.Color("#dde3f0"),
		Muted:    lipgloss.Color("#7a85a0"),
		Accent:   lipgloss.Color("#7aa2f7"),
		Alt:      lipgloss.Color("#bb9af7"),
		Border:   lipgloss.Color("#414868"),
		Good:     lipgloss.Color("#9ece6a"),
		Warn:     lipgloss.Color("#e0af68"),
		BarFill:  lipgloss.Color("#7aa2f7"),
		BarEmpty: lipgloss.Color("#24283b"),
	},
	"paper": {
		Text:     lipgloss.Color("#2e2a24"),
		Muted:    lipgloss.Color("#8a8072"),
		Accent:   lipgloss.Color("#b5523b"),
		Alt:      lipgloss.Color("#3b6fb5"),
		Border:   lipgloss.Color("#c9bfae"),
		Good:     lipgloss.Color("#4f8a3b"),
		Warn:     lipgloss.Color("#c28a1e"),
		BarFill:  lipgloss.Color("#b5523b"),
		BarEmpty: lipgloss.Color("#e8e0d0"),
	},
}

const defaultTheme = "sakura"

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes[defaultTheme]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := themeNames()
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}

type styles struct {
	title, muted, accent, alt, good, warn lipgloss.Style
	panel, selected, fill, empty          lipgloss.Style
}

func newStyles(name string) styles {
	p := paletteFor(name)
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		muted:    lipgloss.NewStyle().Foreground(p.Muted),
		accent:   lipgloss.NewStyle().Foreground(p.Accent),
		alt:      lipgloss.NewStyle().Foreground(p.Alt),
		good:     lipgloss.NewStyle().Foreground(p.Good),
		warn:     lipgloss.NewStyle().Foreground(p.Warn),
		panel:    lipgloss.NewStyle().Foreground(p.Text).Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.Alt),
		fill:     lipgloss.NewStyle().Foreground(p.BarFill),
		empty:    lipgloss.NewStyle().Foreground(p.BarEmpty),
	}
}
