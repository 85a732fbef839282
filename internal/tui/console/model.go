// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     console
// Description: Interactive Bubbletea console for bridge commands
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/msto63/scenebridge/internal/bridge/dispatch"
	"github.com/msto63/scenebridge/internal/bridge/service"
	"github.com/msto63/scenebridge/pkg/core/logging"
	"github.com/msto63/scenebridge/pkg/core/version"
)

// Console commands start with this prefix so they never shadow a verb
const commandPrefix = ":"

const maxHistory = 200

// Model is the main Bubbletea model for the console
type Model struct {
	// State
	width    int
	height   int
	ready    bool
	running  bool
	showLogs bool

	// Components
	input      textinput.Model
	transcript viewport.Model
	logs       viewport.Model

	// Console state
	exchanges []Exchange
	history   []string
	histPos   int
	hint      string

	// Configuration
	executor Executor
	verbs    []string
	tail     *logging.TailWriter
	timeout  time.Duration
}

// Config holds console configuration
type Config struct {
	Executor Executor
	// Verbs feed completion and suggestions
	Verbs []string
	// Tail supplies the log panel; nil hides it
	Tail    *logging.TailWriter
	Timeout time.Duration
}

// New creates a new console model
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "AddActor /Game/Meshes/Cube Cube1"
	ti.Prompt = "› "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	ti.CharLimit = 0
	ti.Focus()

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return Model{
		input:    ti,
		executor: cfg.Executor,
		verbs:    cfg.Verbs,
		tail:     cfg.Tail,
		timeout:  cfg.Timeout,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKeyPress(msg); handled {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.updateTranscript()
		m.updateLogs()

	case resultMsg:
		m.running = false
		m.exchanges = append(m.exchanges, msg.exchange)
		m.hint = m.hintFor(msg.exchange)
		m.updateTranscript()
		m.transcript.GotoBottom()

	case tickMsg:
		m.updateLogs()
		cmds = append(cmds, tick())
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keys the console claims; the rest go to the input
func (m Model) handleKeyPress(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit, true

	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		if line == "" || m.running {
			return m, nil, true
		}
		m.input.SetValue("")
		m.remember(line)
		m.hint = ""

		if strings.HasPrefix(line, commandPrefix) {
			return m.consoleCommand(strings.TrimPrefix(line, commandPrefix))
		}
		m.running = true
		return m, m.execute(line), true

	case tea.KeyTab:
		if completed, ok := CompleteVerb(m.input.Value(), m.verbs); ok {
			m.input.SetValue(completed)
			m.input.CursorEnd()
		}
		return m, nil, true

	case tea.KeyUp:
		m.recall(-1)
		return m, nil, true

	case tea.KeyDown:
		m.recall(1)
		return m, nil, true

	case tea.KeyPgUp:
		m.transcript.ViewUp()
		return m, nil, true

	case tea.KeyPgDown:
		m.transcript.ViewDown()
		return m, nil, true

	case tea.KeyF2:
		if m.tail != nil {
			m.showLogs = !m.showLogs
			m.layout()
			m.updateLogs()
		}
		return m, nil, true
	}
	return m, nil, false
}

// consoleCommand runs a built-in console command
func (m Model) consoleCommand(name string) (Model, tea.Cmd, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "q", "quit", "exit":
		return m, tea.Quit, true
	case "clear":
		m.exchanges = nil
		m.updateTranscript()
	case "verbs":
		m.hint = "Verben: " + strings.Join(m.verbs, ", ")
	case "logs":
		if m.tail != nil {
			m.showLogs = !m.showLogs
			m.layout()
			m.updateLogs()
		}
	default:
		m.hint = "Konsolenbefehle: :verbs :logs :clear :quit"
	}
	return m, nil, true
}

// execute runs line through the executor
func (m Model) execute(line string) tea.Cmd {
	executor := m.executor
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		result, err := executor.Execute(ctx, line)
		return resultMsg{exchange: Exchange{
			Timestamp: start,
			Command:   line,
			Result:    result,
			Err:       err,
			Duration:  time.Since(start),
		}}
	}
}

// remember appends line to the input history
func (m *Model) remember(line string) {
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.histPos = len(m.history)
}

// recall moves through the history; moving past the end clears the input
func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	pos := m.histPos + delta
	if pos < 0 {
		pos = 0
	}
	if pos >= len(m.history) {
		m.histPos = len(m.history)
		m.input.SetValue("")
		return
	}
	m.histPos = pos
	m.input.SetValue(m.history[pos])
	m.input.CursorEnd()
}

// hintFor suggests a verb after an unknown command
func (m Model) hintFor(ex Exchange) string {
	if ex.Err != nil || ex.Result != service.ResultUnknownCommand {
		return ""
	}
	verb, _ := dispatch.Split(ex.Command)
	if suggestion, ok := SuggestVerb(verb, m.verbs); ok {
		return fmt.Sprintf("Unbekanntes Verb %q - meinten Sie %s?", verb, suggestion)
	}
	return fmt.Sprintf("Unbekanntes Verb %q (:verbs listet alle)", verb)
}

// CompleteVerb completes the verb of a partially typed line. Only the
// first token is completed and only when the line has no arguments yet.
func CompleteVerb(input string, verbs []string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t") {
		return input, false
	}

	var prefixed []string
	for _, v := range verbs {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(trimmed)) {
			prefixed = append(prefixed, v)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0] + " ", true
	}
	if len(prefixed) > 1 {
		return input, false
	}

	if suggestion, ok := SuggestVerb(trimmed, verbs); ok {
		return suggestion + " ", true
	}
	return input, false
}

// SuggestVerb returns the closest registered verb by fuzzy match
func SuggestVerb(verb string, verbs []string) (string, bool) {
	if verb == "" {
		return "", false
	}
	matches := fuzzy.Find(verb, verbs)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}

// layout sizes the panels for the current window
func (m *Model) layout() {
	headerHeight := 3
	inputHeight := 3
	footerHeight := 3
	available := m.height - headerHeight - inputHeight - footerHeight - 2
	if available < 3 {
		available = 3
	}

	transcriptHeight := available
	logHeight := 0
	if m.showLogs {
		logHeight = available / 3
		transcriptHeight = available - logHeight - 2
	}

	m.transcript = resize(m.transcript, m.width-4, transcriptHeight)
	m.logs = resize(m.logs, m.width-4, logHeight)
	m.input.Width = m.width - 8
}

func resize(vp viewport.Model, width, height int) viewport.Model {
	if vp.Width == 0 && vp.Height == 0 {
		return viewport.New(width, height)
	}
	vp.Width = width
	vp.Height = height
	return vp
}

// updateTranscript renders the exchanges into the transcript viewport
func (m *Model) updateTranscript() {
	var content strings.Builder

	for _, ex := range m.exchanges {
		timeStr := TimestampStyle.Render(ex.Timestamp.Format("15:04:05"))
		cmdStr := CommandStyle.Render(ex.Command)

		var resultStr string
		if ex.Err != nil {
			resultStr = ResultErrorStyle.Render("Fehler: " + ex.Err.Error())
		} else {
			resultStr = RenderResult(ex.Result)
		}

		content.WriteString(fmt.Sprintf("%s %s\n", timeStr, cmdStr))
		content.WriteString(fmt.Sprintf("         %s %s\n", resultStr,
			TimestampStyle.Render(ex.Duration.Round(time.Microsecond).String())))
	}

	m.transcript.SetContent(content.String())
}

// updateLogs renders the tail writer entries into the log viewport
func (m *Model) updateLogs() {
	if m.tail == nil || !m.showLogs {
		return
	}

	var content strings.Builder
	for _, e := range m.tail.Entries() {
		if e.Raw != "" {
			content.WriteString(e.Raw)
			content.WriteString("\n")
			continue
		}
		line := fmt.Sprintf("%s %s %s", RenderLevelBadge(e.Level), HintStyle.Render(e.Logger), e.Message)
		if e.Error != "" {
			line += " " + ResultErrorStyle.Render(e.Error)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	m.logs.SetContent(content.String())
	m.logs.GotoBottom()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Lade Konsole..."
	}

	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		HelpDescStyle.Render("Ziel: "+m.executor.Target()),
	)
	b.WriteString(TitlePanelStyle.Width(m.width - 4).Render(header))
	b.WriteString("\n")

	b.WriteString(PanelStyle.Width(m.width - 2).Render(m.transcript.View()))
	b.WriteString("\n")

	if m.showLogs {
		b.WriteString(PanelStyle.Width(m.width - 2).Render(m.logs.View()))
		b.WriteString("\n")
	}

	b.WriteString(FocusedPanelStyle.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")

	b.WriteString(HintStyle.Render(m.hint))
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return b.String()
}

// renderStatusBar renders the status bar
func (m Model) renderStatusBar() string {
	left := HelpDescStyle.Render(fmt.Sprintf("Befehle: %d", len(m.exchanges)))
	right := HelpDescStyle.Render("v" + version.Console)
	if m.running {
		right = ResultWarnStyle.Render("läuft...")
	}

	space := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if space < 1 {
		space = 1
	}
	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", space) + right)
}

// renderHelpBar renders the help shortcuts bar
func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("Enter", "Ausführen"),
		RenderKeyHint("Tab", "Verb ergänzen"),
		RenderKeyHint("↑/↓", "Verlauf"),
		RenderKeyHint("PgUp/PgDn", "Scrollen"),
	}
	if m.tail != nil {
		items = append(items, RenderKeyHint("F2", "Logs"))
	}
	items = append(items, RenderKeyHint("Esc", "Beenden"))
	return strings.Join(items, "  ")
}

// Run starts the console TUI
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
