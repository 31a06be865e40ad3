package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type helpModel struct {
	keys  keyMap
	width int
}

func newHelpModel() helpModel {
	return helpModel{
		keys:  defaultKeyMap(),
		width: 80,
	}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View(t Theme) string {
	var b strings.Builder

	b.WriteString(t.TopBarTitle.Render("lawclerk help"))
	b.WriteString("\n\n")

	b.WriteString(t.Section.Render("keys"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  send query or clarification answers\n", t.TopBarBadge.Render("enter")))
	b.WriteString(fmt.Sprintf("  %s  recall earlier prompts\n", t.TopBarBadge.Render("up/down")))
	b.WriteString(fmt.Sprintf("  %s  switch pane focus\n", t.TopBarBadge.Render("tab")))
	b.WriteString(fmt.Sprintf("  %s  cycle side panel\n", t.TopBarBadge.Render("shift+tab")))
	b.WriteString(fmt.Sprintf("  %s  quit\n", t.TopBarBadge.Render("ctrl+c")))

	b.WriteString("\n")

	b.WriteString(t.Section.Render("commands"))
	b.WriteString("\n")
	b.WriteString(t.Footer.Render("  /analyze           refresh the document analysis"))
	b.WriteString("\n")
	b.WriteString(t.Footer.Render("  /draft <type>      draft a memo, motion or complaint"))
	b.WriteString("\n")
	b.WriteString(t.Footer.Render("  /download <type>   export the finished PDF"))
	b.WriteString("\n")
	b.WriteString(t.Footer.Render("  /upload <path>     upload a PDF for extraction"))
	b.WriteString("\n")
	b.WriteString(t.Footer.Render("  /clear             clear the conversation"))
	b.WriteString("\n")
	b.WriteString(t.Footer.Render("  /help              show this screen"))
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(t.Footer.Render("enter send | tab focus | shift+tab panel | esc close help"))

	return b.String()
}

type keyMap struct {
	Quit      key.Binding
	Enter     key.Binding
	Clear     key.Binding
	FocusNext key.Binding
	NextPanel key.Binding
	Help      key.Binding
	Cancel    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear chat"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		NextPanel: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "cycle panel"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "help"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.FocusNext, k.NextPanel, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.FocusNext, k.NextPanel, k.Clear, k.Quit},
	}
}
