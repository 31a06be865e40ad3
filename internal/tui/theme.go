package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type ThemeName string

const (
	ThemePorcelain ThemeName = "porcelain"
	ThemeMidnight  ThemeName = "midnight"
)

type Theme struct {
	Name ThemeName

	// Colors
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	TextFaint   lipgloss.AdaptiveColor

	Accent   lipgloss.AdaptiveColor
	Success  lipgloss.AdaptiveColor
	Warn     lipgloss.AdaptiveColor
	Error    lipgloss.AdaptiveColor
	Border   lipgloss.AdaptiveColor
	BorderHi lipgloss.AdaptiveColor

	// Styles
	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarBadge lipgloss.Style
	TopBarMeta  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style
	PaneTitleF  lipgloss.Style
	PaneDivider lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	InputBoxF   lipgloss.Style
	Spinner     lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	RoleSys lipgloss.Style
	RoleErr lipgloss.Style

	Section     lipgloss.Style
	Placeholder lipgloss.Style
	Question    lipgloss.Style

	CaseTitle    lipgloss.Style
	CaseCitation lipgloss.Style
	CaseLink     lipgloss.Style
	BadgeHigh    lipgloss.Style
	BadgeMedium  lipgloss.Style
	BadgeLow     lipgloss.Style

	DocHeading lipgloss.Style
	DocStrong  lipgloss.Style
	DocEm      lipgloss.Style
	DocBody    lipgloss.Style
}

// NewTheme resolves the configured theme name; LAWCLERK_THEME and
// LAWCLERK_NO_COLOR override the config file.
func NewTheme(configured string) Theme {
	name := ThemeName(os.Getenv("LAWCLERK_THEME"))
	if name == "" {
		name = ThemeName(configured)
	}
	if name == "" {
		name = ThemePorcelain
	}

	if os.Getenv("LAWCLERK_NO_COLOR") == "1" {
		return NewNoColorTheme()
	}

	switch name {
	case ThemeMidnight:
		return newMidnightTheme()
	default:
		return newPorcelainTheme()
	}
}

func NewNoColorTheme() Theme {
	t := Theme{
		Name:        "no-color",
		TextPrimary: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#333333", Dark: "#dddddd"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#bbbbbb"},
		Border:      lipgloss.AdaptiveColor{Light: "#555555", Dark: "#777777"},
		BorderHi:    lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
	}
	return t.derive()
}

func newPorcelainTheme() Theme {
	t := Theme{
		Name:        ThemePorcelain,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1d2433", Dark: "#f2f2f2"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#4a5568", Dark: "#c7c7c7"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#718096", Dark: "#9aa0a6"},

		Accent:   lipgloss.AdaptiveColor{Light: "#1f6feb", Dark: "#7aa2ff"},
		Success:  lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#46d1b7"},
		Warn:     lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f4b27d"},
		Error:    lipgloss.AdaptiveColor{Light: "#b42318", Dark: "#ff7a7a"},
		Border:   lipgloss.AdaptiveColor{Light: "#cbd5e0", Dark: "#3a3a3a"},
		BorderHi: lipgloss.AdaptiveColor{Light: "#1f6feb", Dark: "#7aa2ff"},
	}
	return t.derive()
}

func newMidnightTheme() Theme {
	t := Theme{
		Name:        ThemeMidnight,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#111827", Dark: "#eaeaea"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#374151", Dark: "#b7b7b7"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#8d8d8d"},

		Accent:   lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#7aa2ff"},
		Success:  lipgloss.AdaptiveColor{Light: "#059669", Dark: "#46d1b7"},
		Warn:     lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#f4b27d"},
		Error:    lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#ff7a7a"},
		Border:   lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#2a2a2a"},
		BorderHi: lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#7aa2ff"},
	}
	return t.derive()
}

// derive fills in the composite styles from the palette so the three themes
// only differ in their colors.
func (t Theme) derive() Theme {
	accent := t.Accent
	if accent.Light == "" && accent.Dark == "" {
		accent = t.TextPrimary
	}
	success := t.Success
	if success.Light == "" && success.Dark == "" {
		success = t.TextPrimary
	}
	warn := t.Warn
	if warn.Light == "" && warn.Dark == "" {
		warn = t.TextMuted
	}
	errc := t.Error
	if errc.Light == "" && errc.Dark == "" {
		errc = t.TextPrimary
	}

	t.TopBar = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.TopBarBadge = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Pane = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneFocused = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextMuted)
	t.PaneTitleF = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.PaneDivider = lipgloss.NewStyle().Foreground(t.Border)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Bold(true).Foreground(accent)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.RoleSys = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.RoleErr = lipgloss.NewStyle().Bold(true).Foreground(errc)

	t.Section = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.Placeholder = lipgloss.NewStyle().Foreground(t.TextFaint)
	t.Question = lipgloss.NewStyle().Foreground(warn)

	t.CaseTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.CaseCitation = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.CaseLink = lipgloss.NewStyle().Foreground(accent).Underline(true)
	t.BadgeHigh = lipgloss.NewStyle().Bold(true).Foreground(success)
	t.BadgeMedium = lipgloss.NewStyle().Bold(true).Foreground(warn)
	t.BadgeLow = lipgloss.NewStyle().Foreground(t.TextFaint)

	t.DocHeading = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.DocStrong = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.DocEm = lipgloss.NewStyle().Italic(true).Foreground(t.TextPrimary)
	t.DocBody = lipgloss.NewStyle().Foreground(t.TextPrimary)

	return t
}

// TierBadge maps a relevance tier label to its badge style.
func (t Theme) TierBadge(tier string) lipgloss.Style {
	switch tier {
	case "high":
		return t.BadgeHigh
	case "medium":
		return t.BadgeMedium
	default:
		return t.BadgeLow
	}
}
