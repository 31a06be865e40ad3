package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lawclerk/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusChat
	focusPanel
)

type panelKind int

const (
	panelAnalysis panelKind = iota
	panelCases
	panelDocument
)

func (p panelKind) title() string {
	switch p {
	case panelCases:
		return "Cases"
	case panelDocument:
		return "Draft"
	default:
		return "Analysis"
	}
}

type Message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
}

type spinMsg struct{}

type chatDoneMsg struct {
	outcome *app.ChatOutcome
	err     error
}

type analysisDoneMsg struct{ err error }

type draftDoneMsg struct {
	docType string
	err     error
}

type downloadDoneMsg struct {
	path string
	err  error
}

type uploadDoneMsg struct {
	resp *app.UploadResponse
	err  error
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type MainModel struct {
	app *app.Application

	theme Theme
	help  helpModel

	width  int
	height int
	ready  bool

	focus    focusArea
	panel    panelKind
	showHelp bool

	messages []Message
	input    textarea.Model
	chatVP   viewport.Model
	panelVP  viewport.Model

	history []string
	histIdx int
	histBuf string

	busy       bool
	statusText string
	spinnerPos int
}

func NewMainModel(application *app.Application) *MainModel {
	ta := textarea.New()
	ta.Placeholder = "Describe your legal question, then press Enter."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false

	// Keep textarea styling minimal; the input container is styled instead.
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()

	history, _ := application.Store.LoadPromptHistory(application.Config.BaseURL)

	m := &MainModel{
		app:        application,
		theme:      NewTheme(application.Config.Theme),
		help:       newHelpModel(),
		width:      100,
		height:     30,
		focus:      focusInput,
		panel:      panelAnalysis,
		input:      ta,
		history:    history,
		histIdx:    len(history),
		statusText: "Ready",
	}

	welcome := "lawclerk ready. Describe your matter or /upload a PDF. Ctrl+H for help."
	if application.Offline {
		welcome = "lawclerk ready (offline mock backend). Ctrl+H for help."
	}
	m.messages = append(m.messages, Message{
		ID:        "welcome-1",
		Role:      "system",
		Content:   welcome,
		Timestamp: time.Now(),
	})

	snap := application.Engine.Snapshot()
	if snap.ContextID != "" {
		m.messages = append(m.messages, Message{
			ID:        "resume-1",
			Role:      "system",
			Content:   "resumed research session " + snap.ContextID,
			Timestamp: time.Now(),
		})
	}
	if snap.Clarifying && len(snap.Questions) > 0 {
		m.messages = append(m.messages, Message{
			ID:        "resume-2",
			Role:      "assistant",
			Content:   renderQuestions(m.theme, snap.Questions, snap.Attempts),
			Timestamp: time.Now(),
		})
	}

	return m
}

func (m *MainModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(m.width)

		layout := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(layout.ChatW, layout.MainH)
			m.panelVP = viewport.New(layout.PanelW, layout.MainH)
			m.ready = true
		} else {
			m.chatVP.Width = layout.ChatW
			m.chatVP.Height = layout.MainH
			m.panelVP.Width = layout.PanelW
			m.panelVP.Height = layout.MainH
		}
		m.input.SetWidth(maxInt(10, layout.InputW))
		m.refreshChat()
		m.refreshPanel()
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.help.keys.Quit) {
				return m, tea.Quit
			}
			if key.Matches(msg, m.help.keys.Cancel) || key.Matches(msg, m.help.keys.Help) {
				m.showHelp = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.help.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.help.keys.Help):
			m.showHelp = true
			return m, nil

		case key.Matches(msg, m.help.keys.NextPanel):
			m.panel = (m.panel + 1) % 3
			m.refreshPanel()
			return m, nil

		case key.Matches(msg, m.help.keys.FocusNext):
			m.cycleFocus()
			return m, nil

		case key.Matches(msg, m.help.keys.Clear):
			m.messages = []Message{{
				ID:        "welcome-1",
				Role:      "system",
				Content:   "cleared.",
				Timestamp: time.Now(),
			}}
			m.refreshChat()
			return m, nil

		case key.Matches(msg, m.help.keys.Enter):
			if m.focus == focusInput {
				return m, m.onEnter()
			}
			return m, nil

		case msg.Type == tea.KeyUp:
			switch m.focus {
			case focusInput:
				m.recallHistory(-1)
				return m, nil
			case focusChat:
				m.chatVP.LineUp(1)
				return m, nil
			case focusPanel:
				m.panelVP.LineUp(1)
				return m, nil
			}
		case msg.Type == tea.KeyDown:
			switch m.focus {
			case focusInput:
				m.recallHistory(1)
				return m, nil
			case focusChat:
				m.chatVP.LineDown(1)
				return m, nil
			case focusPanel:
				m.panelVP.LineDown(1)
				return m, nil
			}
		case msg.Type == tea.KeyPgUp:
			m.chatVP.ViewUp()
			return m, nil
		case msg.Type == tea.KeyPgDown:
			m.chatVP.ViewDown()
			return m, nil
		}

	case chatDoneMsg:
		m.busy = false
		m.statusText = "Ready"
		m.onChatDone(msg)
		return m, nil

	case analysisDoneMsg:
		m.busy = false
		m.statusText = "Ready"
		if msg.err != nil {
			m.appendMessage("error", fmt.Sprintf("analysis failed: %v", msg.err))
		} else {
			m.panel = panelAnalysis
			m.appendMessage("system", "analysis refreshed.")
		}
		m.refreshPanel()
		return m, nil

	case draftDoneMsg:
		m.busy = false
		m.statusText = "Ready"
		if msg.err != nil {
			m.appendMessage("error", fmt.Sprintf("draft failed: %v", msg.err))
		} else {
			m.panel = panelDocument
			m.appendMessage("system", fmt.Sprintf("%s drafted; Shift+Tab cycles to the Draft panel.", msg.docType))
		}
		m.refreshPanel()
		return m, nil

	case downloadDoneMsg:
		m.busy = false
		m.statusText = "Ready"
		if msg.err != nil {
			m.appendMessage("error", fmt.Sprintf("download failed: %v", msg.err))
		} else {
			m.appendMessage("system", "saved "+msg.path)
		}
		return m, nil

	case uploadDoneMsg:
		m.busy = false
		m.statusText = "Ready"
		if msg.err != nil {
			m.appendMessage("error", fmt.Sprintf("upload failed: %v", msg.err))
		} else {
			m.panel = panelAnalysis
			m.appendMessage("system", fmt.Sprintf("uploaded %s; analysis extracted.", msg.resp.Filename))
		}
		m.refreshPanel()
		return m, nil

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.busy {
			return m, m.spinTick()
		}
	}

	var cmd tea.Cmd
	if m.focus == focusInput && !m.busy {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *MainModel) View() string {
	if !m.ready {
		return "…"
	}
	if m.showHelp {
		return m.help.View(m.theme)
	}

	layout := m.computeLayout()
	top := m.renderTopBar()
	main := m.renderMain(layout)
	input := m.renderInputArea(layout)
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, main, input, footer)
}

func (m *MainModel) onEnter() tea.Cmd {
	val := strings.TrimSpace(m.input.Value())
	if val == "" {
		return nil
	}

	if strings.HasPrefix(val, "/") {
		m.input.Reset()
		return m.runCommand(val)
	}

	m.appendMessage("user", val)
	m.input.Reset()
	m.pushHistory(val)

	if m.busy {
		m.appendMessage("system", "a request is already in flight; wait for the answer.")
		return nil
	}

	m.busy = true
	m.statusText = "Researching…"
	m.spinnerPos = 0

	engine := m.app.Engine
	return tea.Batch(func() tea.Msg {
		outcome, err := engine.SubmitMessage(context.Background(), val)
		return chatDoneMsg{outcome: outcome, err: err}
	}, m.spinTick())
}

func (m *MainModel) runCommand(val string) tea.Cmd {
	fields := strings.Fields(val)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		m.showHelp = true
		return nil

	case "/clear":
		m.messages = []Message{{
			ID:        "welcome-1",
			Role:      "system",
			Content:   "cleared.",
			Timestamp: time.Now(),
		}}
		m.refreshChat()
		return nil

	case "/analyze":
		return m.startBusy("Analyzing…", func() tea.Msg {
			_, err := m.app.Engine.RequestAnalysis(context.Background())
			return analysisDoneMsg{err: err}
		})

	case "/draft":
		docType := "memo"
		if len(args) > 0 {
			docType = args[0]
		}
		return m.startBusy("Drafting "+docType+"…", func() tea.Msg {
			_, err := m.app.Engine.RequestDraft(context.Background(), docType)
			return draftDoneMsg{docType: docType, err: err}
		})

	case "/download":
		docType := "memo"
		if len(args) > 0 {
			docType = args[0]
		}
		dir := m.app.Config.DownloadDir
		return m.startBusy("Exporting "+docType+"…", func() tea.Msg {
			dl, err := m.app.Engine.RequestDraftDownload(context.Background(), docType)
			if err != nil {
				return downloadDoneMsg{err: err}
			}
			path := filepath.Join(dir, dl.Filename)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return downloadDoneMsg{err: err}
			}
			if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
				return downloadDoneMsg{err: err}
			}
			return downloadDoneMsg{path: path}
		})

	case "/upload":
		if len(args) == 0 {
			m.appendMessage("error", "usage: /upload <path to pdf>")
			return nil
		}
		path := args[0]
		return m.startBusy("Uploading…", func() tea.Msg {
			resp, err := m.app.Engine.UploadDocument(context.Background(), path)
			return uploadDoneMsg{resp: resp, err: err}
		})

	default:
		m.appendMessage("error", "unknown command "+cmd+"; try /help")
		return nil
	}
}

func (m *MainModel) startBusy(status string, work func() tea.Msg) tea.Cmd {
	if m.busy {
		m.appendMessage("system", "a request is already in flight; wait for the answer.")
		return nil
	}
	m.busy = true
	m.statusText = status
	m.spinnerPos = 0
	return tea.Batch(work, m.spinTick())
}

func (m *MainModel) onChatDone(msg chatDoneMsg) {
	if msg.err != nil {
		m.appendMessage("error", fmt.Sprintf("request failed: %v", msg.err))
		return
	}

	out := msg.outcome
	switch out.Kind {
	case app.OutcomeClarifying:
		m.appendMessage("assistant", renderQuestions(m.theme, out.Questions, out.Attempts))
	case app.OutcomeResults:
		m.panel = panelCases
		body := fmt.Sprintf("Found %d cases.", len(out.Cases))
		if out.Summary != "" {
			body = out.Summary + "\n\n" + body
		}
		m.appendMessage("assistant", body)
	case app.OutcomeNoResults:
		m.panel = panelCases
		m.appendMessage("assistant", "No cases matched. Try rephrasing or adding jurisdiction details.")
	case app.OutcomeError:
		text := out.Message
		if text == "" {
			text = "the backend reported an error"
		}
		m.appendMessage("error", text)
	}
	m.refreshPanel()
}

func (m *MainModel) appendMessage(role, content string) {
	m.messages = append(m.messages, Message{
		ID:        fmt.Sprintf("%s-%d", role, time.Now().UnixNano()),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	m.refreshChat()
	m.chatVP.GotoBottom()
}

func (m *MainModel) pushHistory(val string) {
	if len(m.history) == 0 || m.history[len(m.history)-1] != val {
		m.history = append(m.history, val)
	}
	m.histIdx = len(m.history)
	m.histBuf = ""
	if err := m.app.Store.SavePromptHistory(m.app.Config.BaseURL, m.history); err != nil {
		m.app.Logger.Warn("could not persist prompt history")
	}
}

// recallHistory walks earlier prompts; the in-progress draft is stashed so
// walking back down restores it.
func (m *MainModel) recallHistory(delta int) {
	if len(m.history) == 0 {
		return
	}
	if m.histIdx == len(m.history) && delta < 0 {
		m.histBuf = m.input.Value()
	}
	idx := m.histIdx + delta
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.history) {
		idx = len(m.history)
	}
	m.histIdx = idx
	if idx == len(m.history) {
		m.input.SetValue(m.histBuf)
	} else {
		m.input.SetValue(m.history[idx])
	}
	m.input.CursorEnd()
}

func (m *MainModel) cycleFocus() {
	next := m.focus + 1
	if next > focusPanel {
		next = focusInput
	}
	m.focus = next
	if m.focus == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *MainModel) spinTick() tea.Cmd {
	d := 90 * time.Millisecond
	if os.Getenv("LAWCLERK_REDUCE_MOTION") == "1" {
		d = 250 * time.Millisecond
	}
	return tea.Tick(d, func(_ time.Time) tea.Msg { return spinMsg{} })
}

func (m *MainModel) refreshChat() {
	var b strings.Builder
	chatWidth := m.computeLayout().ChatW - 2
	if chatWidth < 20 {
		chatWidth = 20
	}
	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg, chatWidth))
		b.WriteString("\n\n")
	}
	m.chatVP.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *MainModel) refreshPanel() {
	if !m.ready {
		return
	}
	width := m.computeLayout().PanelW - 4
	if width < 20 {
		width = 20
	}
	snap := m.app.Engine.Snapshot()
	var content string
	switch m.panel {
	case panelCases:
		content = renderCasesPanel(m.theme, snap, width)
	case panelDocument:
		content = renderDocumentPanel(m.theme, snap.Document, width)
	default:
		content = renderAnalysisPanel(m.theme, snap.Analysis, width)
	}
	m.panelVP.SetContent(content)
}

func (m *MainModel) renderMessage(msg Message, width int) string {
	var roleStyle lipgloss.Style
	roleLabel := "SYS"
	switch msg.Role {
	case "user":
		roleStyle = m.theme.RoleYou
		roleLabel = "YOU"
	case "assistant":
		roleStyle = m.theme.RoleAI
		roleLabel = "CLERK"
	case "error":
		roleStyle = m.theme.RoleErr
		roleLabel = "ERR"
	default:
		roleStyle = m.theme.RoleSys
	}

	head := roleStyle.Render(roleLabel)
	meta := m.theme.TopBarMeta.Render(msg.Timestamp.Format("15:04"))
	body := lipgloss.NewStyle().Foreground(m.theme.TextPrimary).Width(width).Render(msg.Content)
	return head + " " + meta + "\n" + body
}

type layoutInfo struct {
	MainH  int
	ChatW  int
	PanelW int
	InputW int
}

func (m *MainModel) computeLayout() layoutInfo {
	top := 1
	foot := 1
	inputH := 3
	mainH := m.height - top - foot - inputH
	if mainH < 3 {
		mainH = 3
	}

	showPanel := m.width >= 90
	chatW := m.width
	panelW := 0
	if showPanel {
		gap := 1
		chatW = int(float64(m.width-gap) * 0.55)
		if chatW < 44 {
			chatW = 44
		}
		panelW = m.width - gap - chatW
		if panelW < 36 {
			panelW = 36
			chatW = m.width - gap - panelW
		}
	}

	return layoutInfo{
		MainH:  mainH,
		ChatW:  chatW,
		PanelW: panelW,
		InputW: chatW - 4,
	}
}

func (m *MainModel) renderTopBar() string {
	snap := m.app.Engine.Snapshot()
	left := m.theme.TopBarTitle.Render("lawclerk")
	if m.app.Offline {
		left += " " + m.theme.TopBarBadge.Render("OFFLINE")
	}
	if snap.Clarifying {
		left += " " + m.theme.Question.Render(fmt.Sprintf("clarifying (round %d)", snap.Attempts))
	}

	status := m.statusText
	if m.busy {
		status = m.theme.Spinner.Render(spinnerFrames[m.spinnerPos] + " " + m.statusText)
	} else {
		status = m.theme.TopBarMeta.Render(status)
	}

	right := ""
	if snap.ContextID != "" {
		id := snap.ContextID
		if len(id) > 8 {
			id = id[:8]
		}
		right = m.theme.TopBarMeta.Render("session " + id)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	a := gap / 2
	b := gap - a
	return m.theme.TopBar.Render(left + strings.Repeat(" ", a) + status + strings.Repeat(" ", b) + right)
}

func (m *MainModel) renderFooter() string {
	hints := "Tab focus  Shift+Tab panel  Ctrl+H help  Ctrl+L clear  Ctrl+C quit"
	if m.width < 80 {
		hints = "Tab focus  Ctrl+H help  Ctrl+C quit"
	}
	return m.theme.Footer.Width(m.width).Render(hints)
}

func (m *MainModel) renderInputArea(l layoutInfo) string {
	box := m.theme.InputBox
	if m.focus == focusInput {
		box = m.theme.InputBoxF
	}
	return box.Width(maxInt(10, m.width-2)).Render(m.input.View())
}

func (m *MainModel) renderMain(l layoutInfo) string {
	chatPane := m.renderPane("Research", m.chatVP.View(), l.ChatW, l.MainH, m.focus == focusChat)
	if l.PanelW <= 0 {
		return chatPane
	}
	side := m.renderPane(m.panel.title(), m.panelVP.View(), l.PanelW, l.MainH, m.focus == focusPanel)
	sep := m.theme.PaneDivider.Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, chatPane, sep, side)
}

func (m *MainModel) renderPane(title, content string, w, h int, focused bool) string {
	box := m.theme.Pane
	head := m.theme.PaneTitle.Render(title)
	if focused {
		box = m.theme.PaneFocused
		head = m.theme.PaneTitleF.Render(title)
	}
	return box.Width(w).Height(h).Render(head + "\n" + content)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
