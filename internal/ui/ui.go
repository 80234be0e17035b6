package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tastemaker/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunView ViewState = iota
	ResultView
	ReportView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.PipelineEngine
	opts         tasks.PipelineOptions
	width        int
	height       int
	spinner      spinner.Model
	recList      list.Model
	progressChan chan tasks.ProgressUpdate
	doneChan     chan runOutcome
	progress     tasks.ProgressUpdate
	reached      map[tasks.Phase]bool
	result       *tasks.PipelineResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that runs engine with opts.
func NewModel(ctx context.Context, engine *tasks.PipelineEngine, opts tasks.PipelineOptions) *Model {
	return &Model{
		ctx:     ctx,
		view:    RunView,
		engine:  engine,
		opts:    opts,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		reached: make(map[tasks.Phase]bool),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and the pipeline run.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun())
}

// Result returns the finished run, or nil while it is in flight or after a failure.
func (m *Model) Result() *tasks.PipelineResult { return m.result }

// Err returns the error of the last run.
func (m *Model) Err() error { return m.err }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.result != nil {
			m.recList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RunView:
			return m.handleRunKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ReportView:
			return m.handleReportKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != RunView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		m.reached[m.progress.Phase] = true
		return m, m.waitForProgress()

	case MsgRunComplete:
		out := msg.data.(runOutcome)
		m.progressChan = nil
		m.doneChan = nil
		m.result = out.result
		m.err = out.err
		if out.err != nil {
			m.result = nil
			return m, nil
		}
		m.recList = list.New(recommendationItems(out.result.Recommendations), list.NewDefaultDelegate(), 0, 0)
		m.recList.Title = fmt.Sprintf("Top %d recommendations", len(out.result.Recommendations))
		m.recList.SetSize(m.width-4, m.height-8)
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleRunKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart) && m.err != nil:
		return m, tea.Batch(m.spinner.Tick, m.startRun())
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recList, cmd = m.recList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.report):
		m.view = ReportView
		return m, nil
	case key.Matches(msg, m.keys.restart):
		return m, tea.Batch(m.spinner.Tick, m.startRun())
	}

	var cmd tea.Cmd
	m.recList, cmd = m.recList.Update(msg)
	return m, cmd
}

func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.report):
		m.view = ResultView
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != ResultView {
		return m, nil
	}
	var cmd tea.Cmd
	m.recList, cmd = m.recList.Update(msg)
	return m, cmd
}

// startRun launches the engine in its own goroutine. The goroutine owns both channels and only
// communicates through them.
func (m *Model) startRun() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan runOutcome, 1)
	m.progressChan = progress
	m.doneChan = done
	m.view = RunView
	m.result = nil
	m.err = nil
	m.progress = tasks.ProgressUpdate{}
	m.reached = make(map[tasks.Phase]bool)

	ctx, engine, opts := m.ctx, m.engine, m.opts
	go func() {
		result, err := engine.Run(ctx, progress, opts)
		close(progress)
		done <- runOutcome{result: result, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			out := <-done
			return runCompleteMsg(out.result, out.err)
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	case ReportView:
		return m.renderReport()
	default:
		return ""
	}
}

func (m *Model) renderRun() string {
	if m.err != nil {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Pipeline failed: %v", m.err)), helpView)
	}

	title := styles.title.Render("Training recommender")

	var b strings.Builder
	for _, phase := range tasks.PipelinePhases {
		switch {
		case m.reached[phase] && phase != m.progress.Phase:
			b.WriteString(styles.ok.Render("✓ ") + phase.String())
		case phase == m.progress.Phase && m.reached[phase]:
			b.WriteString(m.spinner.View() + phase.String())
		default:
			b.WriteString(styles.help.Render("· " + phase.String()))
		}
		b.WriteString("\n")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, b.String(), m.progress.Message, helpView)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.report, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.recList.View(), helpView)
}

func (m *Model) renderReport() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render("Evaluation"), RenderSummary(m.result, 8), helpView)
}
