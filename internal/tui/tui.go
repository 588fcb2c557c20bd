// Package tui provides a Bubble Tea terminal user interface for splitmix.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/splitmix/internal/config"
	"github.com/handiism/splitmix/internal/fetch"
	"github.com/handiism/splitmix/internal/model"
	"github.com/handiism/splitmix/internal/split"
	"github.com/handiism/splitmix/internal/tracklist"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

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

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many log lines stay on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateFetching
	StateSplitting
	StateComplete
	StateError
)

// Form fields, in focus order. The tracklist is a textarea, the rest are
// single line inputs.
const (
	fieldSource = iota
	fieldCover
	fieldArtist
	fieldAlbum
	fieldOutput
	fieldTracklist
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Source (audio file or video URL)",
	"Cover image (optional)",
	"Artist",
	"Album",
	"Output directory (optional)",
	"Tracklist",
}

var errCancelled = errors.New("cancelled by user")

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   split.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	inputs    []textinput.Model
	tracklist textarea.Model
	focus     int
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	formErr   error
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	engine *split.Engine
	events chan split.Event
	report *split.Report

	// Export progress
	done      int
	total     int
	outputDir string

	// Options
	playlist     bool
	abortOnError bool
	verbose      bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	inputs := make([]textinput.Model, fieldTracklist)
	placeholders := []string{
		"/path/to/mix.wav or https://www.youtube.com/watch?v=...",
		"/path/to/cover.jpg",
		"Artist name",
		"Album name",
		settings.OutputPath,
	}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 500
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[fieldSource].Focus()

	ta := textarea.New()
	ta.Placeholder = "00:00 - Track 1\n03:24 - Track 2\n07:15 - Track 3"
	ta.SetWidth(62)
	ta.SetHeight(8)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		inputs:    inputs,
		tracklist: ta,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// FetchDoneMsg is sent when the source download finishes.
	FetchDoneMsg struct {
		Result *fetch.Result
		Err    error
	}

	// SplitDoneMsg is sent when the export run finishes.
	SplitDoneMsg struct {
		Report *split.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateFetching || m.state == StateSplitting {
				// the current track still finishes; SplitDoneMsg follows
				m.cancel()
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == StateInput {
				step := 1
				if msg.String() == "shift+tab" {
					step = fieldCount - 1
				}
				cmd := m.setFocus((m.focus + step) % fieldCount)
				return m, cmd
			}

		case "enter":
			if m.state == StateInput && m.focus != fieldTracklist {
				cmd := m.setFocus(m.focus + 1)
				return m, cmd
			}

		case "ctrl+s":
			if m.state == StateInput {
				return m.start()
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}
			return m, nil

		case "ctrl+e":
			if m.state == StateInput {
				m.abortOnError = !m.abortOnError
			}
			return m, nil

		case "ctrl+b":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Keep the form, start over
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.formErr = nil
				m.report = nil
				m.engine = nil
				m.done, m.total = 0, 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				cmd := m.setFocus(fieldSource)
				return m, cmd
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case FetchDoneMsg:
		m.drainEvents()
		if msg.Err != nil {
			m.fail(msg.Err)
			break
		}
		m.inputs[fieldSource].SetValue(msg.Result.AudioPath)
		if m.inputs[fieldCover].Value() == "" {
			m.inputs[fieldCover].SetValue(msg.Result.CoverPath)
		}
		cmds = append(cmds, m.startSplit(msg.Result.AudioPath, m.inputs[fieldCover].Value()))

	case SplitDoneMsg:
		m.drainEvents()
		m.report = msg.Report
		if m.engine != nil {
			m.done, m.total = m.engine.GetProgress()
		}
		if msg.Err != nil {
			m.fail(msg.Err)
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state != StateFetching && m.state != StateSplitting {
			break
		}
		m.drainEvents()
		if m.engine != nil {
			m.done, m.total = m.engine.GetProgress()
			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent))
		}
		cmds = append(cmds, m.tickProgress())

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused field
	if m.state == StateInput {
		cmds = append(cmds, m.updateFocused(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.focus == fieldTracklist {
		m.tracklist, cmd = m.tracklist.Update(msg)
	} else {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return cmd
}

// setFocus moves the cursor to field i.
func (m *Model) setFocus(i int) tea.Cmd {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.tracklist.Blur()

	m.focus = i
	if i == fieldTracklist {
		return m.tracklist.Focus()
	}
	return m.inputs[i].Focus()
}

func (m *Model) fail(err error) {
	m.state = StateError
	if m.ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", errCancelled, err)
	}
	m.err = err
}

// validate checks the form before anything is started.
func (m Model) validate() error {
	switch {
	case strings.TrimSpace(m.inputs[fieldSource].Value()) == "":
		return errors.New("source is required")
	case strings.TrimSpace(m.inputs[fieldArtist].Value()) == "":
		return errors.New("artist is required")
	case strings.TrimSpace(m.inputs[fieldAlbum].Value()) == "":
		return errors.New("album is required")
	}
	_, err := tracklist.Parse(m.tracklist.Value())
	return err
}

// start validates the form and begins with a fetch or directly with the split.
func (m Model) start() (tea.Model, tea.Cmd) {
	if err := m.validate(); err != nil {
		m.formErr = err
		return m, nil
	}
	m.formErr = nil
	m.events = make(chan split.Event, 256)

	source := strings.TrimSpace(m.inputs[fieldSource].Value())
	if isURL(source) {
		m.state = StateFetching
		cmd := tea.Batch(m.fetchSource(source), m.spinner.Tick, m.tickProgress())
		return m, cmd
	}

	cmd := m.startSplit(source, strings.TrimSpace(m.inputs[fieldCover].Value()))
	return m, cmd
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// fetchSource downloads the source in background.
func (m *Model) fetchSource(url string) tea.Cmd {
	fetcher := fetch.NewFetcher(m.settings, sendTo(m.events))
	ctx := m.ctx
	return func() tea.Msg {
		res, err := fetcher.Fetch(ctx, url)
		return FetchDoneMsg{Result: res, Err: err}
	}
}

// startSplit creates the engine and runs the export in background.
func (m *Model) startSplit(source, cover string) tea.Cmd {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.ContinueOnError = !m.abortOnError

	meta := model.Metadata{
		Artist: strings.TrimSpace(m.inputs[fieldArtist].Value()),
		Album:  strings.TrimSpace(m.inputs[fieldAlbum].Value()),
	}
	m.outputDir = strings.TrimSpace(m.inputs[fieldOutput].Value())
	if m.outputDir == "" {
		m.outputDir = settings.OutputDir(meta)
	}

	m.state = StateSplitting
	m.engine = split.NewEngine(&settings, nil, sendTo(m.events))

	engine, ctx := m.engine, m.ctx
	req := split.Request{
		Job: split.Job{
			Metadata:  meta,
			OutputDir: m.outputDir,
			CoverPath: cover,
		},
		SourcePath: source,
		Tracklist:  m.tracklist.Value(),
	}

	run := func() tea.Msg {
		report, err := engine.Run(ctx, req)
		return SplitDoneMsg{Report: report, Err: err}
	}
	return tea.Batch(run, m.spinner.Tick, m.tickProgress())
}

// sendTo forwards events without ever blocking the engine.
func sendTo(ch chan split.Event) func(split.Event) {
	return func(event split.Event) {
		select {
		case ch <- event:
		default:
		}
	}
}

// drainEvents moves queued events into the log.
func (m *Model) drainEvents() {
	for {
		select {
		case event := <-m.events:
			m.addLog(event)
		default:
			return
		}
	}
}

func (m *Model) addLog(event split.Event) {
	if event.Level == split.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 splitmix"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Split a long recording into tagged tracks"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateFetching:
		b.WriteString(m.viewFetching())
	case StateSplitting:
		b.WriteString(m.viewSplitting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	for i, input := range m.inputs {
		b.WriteString(m.label(i))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}
	b.WriteString(m.label(fieldTracklist))
	b.WriteString("\n")
	b.WriteString(m.tracklist.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlist (ctrl+p)\n", checkbox(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Stop at first failed track (ctrl+e)\n", checkbox(m.abortOnError)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (ctrl+b)\n", checkbox(m.verbose)))

	if m.formErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + m.formErr.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) label(field int) string {
	if field == m.focus {
		return subtitleStyle.Render("› " + fieldLabels[field])
	}
	return dimStyle.Render("  " + fieldLabels[field])
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewFetching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Downloading source..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewSplitting() string {
	var b strings.Builder

	if m.total == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Decoding source..."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.progress.View())
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", m.done, m.total)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	summary := "✨ Split complete!"
	if m.report != nil && !m.report.OK() {
		summary = "⚠ Split finished with failures"
	}

	var details strings.Builder
	if m.report != nil {
		details.WriteString(fmt.Sprintf("Tracks: %d/%d\n", m.report.Succeeded(), m.report.Total))
		details.WriteString(fmt.Sprintf("Warnings: %d\n", len(m.report.Warnings())))
		if m.report.PlaylistPath != "" {
			details.WriteString(fmt.Sprintf("Playlist: %s\n", m.report.PlaylistPath))
		}
	}
	details.WriteString(fmt.Sprintf("Output: %s", m.outputDir))

	b.WriteString(boxStyle.Render(summary + "\n\n" + details.String()))
	b.WriteString("\n")

	if m.report != nil {
		for _, f := range m.report.Failures {
			b.WriteString(errorStyle.Render("✗ " + f.Error()))
			b.WriteString("\n")
		}
		for _, t := range m.report.Exported {
			b.WriteString(trackStyle.Render("  ♪ " + t.FileName()))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
	}
	if m.report != nil && m.report.Total > 0 {
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(m.report.Summary()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case split.LevelError:
			style = errorStyle
			prefix = "✗"
		case split.LevelWarning:
			style = warningStyle
			prefix = "!"
		case split.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case split.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "tab: next field • ctrl+s: start • ctrl+p: playlist • ctrl+e: stop on error • ctrl+b: verbose • esc: quit"
	case StateFetching, StateSplitting:
		return "esc: cancel after current track"
	case StateComplete, StateError:
		return "r: new split • q: quit"
	}
	return ""
}

// Run loads the settings and starts the TUI application.
func Run() error {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}
	env, err := config.LoadEnv(".env")
	if err != nil {
		return err
	}
	if err := settings.ApplyEnv(env); err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
