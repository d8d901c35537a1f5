// Package tui provides a Bubble Tea terminal user interface for ytd.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firekeepers/ytd/internal/config"
	"github.com/firekeepers/ytd/internal/download"
	"github.com/firekeepers/ytd/internal/engine"
	"github.com/firekeepers/ytd/internal/logging"
	"github.com/firekeepers/ytd/internal/youtube"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

const maxLogLines = 12

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateDownloading
	StateComplete
	StateError
)

// event is one engine log line forwarded to the UI.
type event struct {
	level string // "debug", "info", "warning", "error"
	text  string
}

// Message types
type (
	logMsg      struct{ ev event }
	progressMsg struct{ p engine.Progress }
	doneMsg     struct{ err error }
)

// uiLogger satisfies engine.Logger: it mirrors every line into the
// structured file log and forwards it to the UI event channel. Progress
// lines additionally update the progress bar.
type uiLogger struct {
	adapter *logging.EngineAdapter
	events  chan tea.Msg
}

func (l *uiLogger) Debug(msg string) {
	l.adapter.Debug(msg)
	if p, ok := engine.ParseProgress(msg); ok {
		l.events <- progressMsg{p: p}
		return
	}
	if strings.TrimSpace(msg) == "" {
		return
	}
	if strings.HasPrefix(msg, "[debug]") {
		l.events <- logMsg{ev: event{level: "debug", text: msg}}
		return
	}
	l.events <- logMsg{ev: event{level: "info", text: msg}}
}

func (l *uiLogger) Warning(msg string) {
	l.adapter.Warning(msg)
	if strings.TrimSpace(msg) != "" {
		l.events <- logMsg{ev: event{level: "warning", text: msg}}
	}
}

func (l *uiLogger) Error(msg string) {
	l.adapter.Error(msg)
	if strings.TrimSpace(msg) != "" {
		l.events <- logMsg{ev: event{level: "error", text: msg}}
	}
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	settings *config.Settings
	orch     *download.Orchestrator
	events   chan tea.Msg

	url     string
	percent float64
	logs    []event
	err     error

	ctx    context.Context
	cancel context.CancelFunc
}

// NewModel creates a new TUI model wired to the given settings and
// orchestrator.
func NewModel(settings *config.Settings, orch *download.Orchestrator, events chan tea.Msg) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		orch:      orch,
		events:    events,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// waitForEvent forwards the next engine event to the update loop.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// startDownload classifies the URL and runs the matching download in the
// background, reporting completion through the event channel.
func (m Model) startDownload(url string) tea.Cmd {
	return func() tea.Msg {
		if !youtube.IsYouTubeURL(url) {
			return doneMsg{err: fmt.Errorf("%w: %q", youtube.ErrNotYouTube, url)}
		}
		single, err := youtube.IsSingleVideo(url)
		if err != nil {
			return doneMsg{err: err}
		}

		go func() {
			var dlErr error
			if single {
				dlErr = m.orch.SingleVideo(m.ctx, url, m.settings.CookieFile)
			} else {
				dlErr = m.orch.Playlist(m.ctx, url, m.settings.CookieFile)
			}
			m.events <- doneMsg{err: dlErr}
		}()

		return logMsg{ev: event{level: "info", text: "starting download: " + url}}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		case "enter":
			if m.state == StateInput {
				url := strings.TrimSpace(m.textInput.Value())
				if url == "" {
					return m, nil
				}
				m.url = url
				m.state = StateDownloading
				return m, tea.Batch(m.startDownload(url), m.waitForEvent(), m.spinner.Tick)
			}
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}
		}

	case logMsg:
		m.logs = append(m.logs, msg.ev)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		return m, m.waitForEvent()

	case progressMsg:
		m.percent = msg.p.Percent / 100
		return m, m.waitForEvent()

	case doneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = StateError
		} else {
			m.state = StateComplete
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ytd - YouTube Downloader"))
	b.WriteString("\n")

	switch m.state {
	case StateInput:
		b.WriteString("Enter a video or playlist URL:\n\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("enter: download • esc: quit"))

	case StateDownloading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Downloading " + m.url + "\n\n")
		b.WriteString(m.progress.ViewAs(m.percent))
		b.WriteString("\n\n")
		b.WriteString(m.renderLogs())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("esc: cancel"))

	case StateComplete:
		b.WriteString(successStyle.Render("Download complete: " + m.url))
		b.WriteString("\n\n")
		b.WriteString(m.renderLogs())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("enter: quit"))

	case StateError:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Failed: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(m.renderLogs())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("enter: quit"))
	}

	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder
	for _, ev := range m.logs {
		var style lipgloss.Style
		switch ev.level {
		case "error":
			style = errorStyle
		case "warning":
			style = warningStyle
		case "debug":
			style = dimStyle
		default:
			style = infoStyle
		}
		b.WriteString(style.Render(ev.text))
		b.WriteString("\n")
	}
	return b.String()
}

// Run wires the engine, orchestrator and file-only logging together and
// starts the interactive UI.
func Run() error {
	settings, err := config.Load("")
	if err != nil {
		return err
	}

	logger, closer, err := logging.SetupFile(logging.Config{
		FilePath:   settings.LogFilePath,
		MaxSizeMB:  settings.LogMaxSizeMB,
		MaxBackups: settings.LogMaxBackups,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	events := make(chan tea.Msg, 64)
	engineLog := &uiLogger{adapter: logging.NewEngineAdapter(logger), events: events}

	eng := engine.NewYtdlp()
	eng.Path = settings.YtdlpPath
	eng.ExtractTimeout = settings.ExtractTimeout

	base := engine.DefaultOptions(engineLog)
	// The UI renders its own progress bar from the engine's progress lines.
	base.NoProgress = false

	orch := download.New(eng, base, logger)

	model := NewModel(settings, orch, events)
	_, err = tea.NewProgram(model).Run()
	return err
}
