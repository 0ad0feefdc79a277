package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"csvmp3/internal/models"
	"csvmp3/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TrackListView ViewState = iota
	ConfirmView
	DownloadView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	engine       *tasks.DownloadEngine
	opts         tasks.RunOpts
	tracks       []models.Track
	playlistName string
	trackList    list.Model
	width        int
	height       int
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	recent       []string
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model for downloading the given tracks.
func NewModel(ctx context.Context, engine *tasks.DownloadEngine, tracks []models.Track, playlistName string, opts tasks.RunOpts) *Model {
	runCtx, cancel := context.WithCancel(ctx)

	trackList := list.New(trackItems(tracks), list.NewDefaultDelegate(), 0, 0)
	trackList.Title = fmt.Sprintf("Tracks in '%s'", playlistName)

	return &Model{
		ctx:          runCtx,
		cancel:       cancel,
		view:         TrackListView,
		engine:       engine,
		opts:         opts,
		tracks:       tracks,
		playlistName: playlistName,
		trackList:    trackList,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case DownloadView:
			return m.handleDownloadKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		m.pushRecent(m.progress.Message)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	var cmd tea.Cmd
	if m.view == TrackListView {
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case DownloadView:
		return m.renderDownload()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.download):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = DownloadView
		return m, m.startDownload()
	}
	return m, nil
}

func (m *Model) handleDownloadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) {
		// Stop the run; the engine reports interrupted tracks as failed
		// and the result view still shows up.
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) || key.Matches(msg, m.keys.download) {
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startDownload() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Run(m.ctx, m.progressChan, m.tracks, m.opts)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return runCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return runCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

// pushRecent keeps a short scrollback of progress messages.
func (m *Model) pushRecent(message string) {
	if message == "" {
		return
	}
	m.recent = append(m.recent, message)
	if len(m.recent) > 8 {
		m.recent = m.recent[len(m.recent)-8:]
	}
}

func (m *Model) renderTrackList() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Download %d tracks from '%s'?", len(m.tracks), m.playlistName))
	info := fmt.Sprintf("\nOutput directory: %s\nWorkers: %d\n", m.opts.OutputDir, m.opts.Workers)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderDownload() string {
	title := styles.title.Render("Downloading Tracks")
	counter := fmt.Sprintf("%d/%d", m.progress.Step, m.progress.Total)

	var lines string
	for _, line := range m.recent {
		lines += "  " + line + "\n"
	}

	cancelHint := m.help.ShortHelpView([]key.Binding{m.keys.cancel})
	return fmt.Sprintf("%s\n%s\n\n%s\n%s", title, counter, lines, cancelHint)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Download failed: %v\n\nPress q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	header := styles.ok.Render("✓ Download Complete")
	if m.result.Cancelled {
		header = styles.warn.Render("Download Cancelled")
	}

	info := fmt.Sprintf("\nCompleted: %d\nFailed: %d\nTotal: %d", m.result.Completed, m.result.Failed, m.result.Total)
	if m.result.Skipped > 0 {
		info += fmt.Sprintf("\nAlready present: %d", m.result.Skipped)
	}

	var failed string
	if m.result.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed %d tracks:", m.result.Failed)))
		for _, res := range m.result.Results {
			if res.Status == models.StatusFailed {
				failed += fmt.Sprintf("\n  • %s", res.Track.BaseName())
			}
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", header, info, failed, helpView)
}
