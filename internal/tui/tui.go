// Package tui provides the Bubble Tea terminal user interface for
// rom-browser: the browse list, search and folder prompts, the download
// confirmation flow and the progress screens.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/handiism/rom-browser/internal/catalog"
	"github.com/handiism/rom-browser/internal/config"
	"github.com/handiism/rom-browser/internal/download"
	"github.com/handiism/rom-browser/internal/model"
	"github.com/handiism/rom-browser/internal/session"
)

// state identifies the active screen.
type state int

const (
	stateRefreshing state = iota
	stateBrowse
	stateSearch
	stateConfirmDest
	statePathInput
	stateStrategy
	stateDownloading
	stateSummary
	stateInfo
	stateEditGlobal
	stateEditSource
)

// eventLog collects refresh events from the background refresh command;
// the UI polls it on ticks, the same way download telemetry is polled.
type eventLog struct {
	mu      sync.Mutex
	entries []catalog.Event
}

func (l *eventLog) add(e catalog.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

func (l *eventLog) tail(n int) []catalog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) <= n {
		return append([]catalog.Event(nil), l.entries...)
	}
	return append([]catalog.Event(nil), l.entries[len(l.entries)-n:]...)
}

// Message types
type (
	// refreshDoneMsg is sent when the catalog refresh completes.
	refreshDoneMsg struct{ cache *catalog.Cache }

	// downloadDoneMsg carries the final telemetry of a download attempt.
	downloadDoneMsg struct{ final download.Progress }

	// tickMsg drives progress polling and marquee animation.
	tickMsg struct{}

	// statusClearMsg expires a transient status line.
	statusClearMsg struct{ id int }
)

// Model is the Bubble Tea model for the browser.
type Model struct {
	state state
	theme Theme

	cfg       *config.Config
	store     *catalog.Store
	extractor catalog.Extractor
	engine    *download.Engine
	sess      *session.Session
	events    *eventLog
	cache     *catalog.Cache

	forceRefresh bool

	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	// Transient status line, cleared on a timer.
	status   string
	statusID int

	// persistWarn is a sticky banner shown after a failed config or
	// cache write, since silently losing an edit is a correctness risk.
	persistWarn string

	// Download flow state.
	pending  model.Record
	destDir  string
	snapshot download.Progress
	final    download.Progress

	// Marquee phase per record key; presentation-owned.
	marquee map[string]int

	width  int
	height int
}

// NewModel assembles the TUI model. The cache may be empty; the model
// refreshes it before entering the browse screen.
func NewModel(cfg *config.Config, store *catalog.Store, cache *catalog.Cache, extractor catalog.Extractor, engine *download.Engine, forceRefresh bool) Model {
	ti := textinput.New()
	ti.CharLimit = 300
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:        stateRefreshing,
		theme:        DefaultTheme(),
		cfg:          cfg,
		store:        store,
		extractor:    extractor,
		engine:       engine,
		sess:         session.New(cfg, cache),
		events:       &eventLog{},
		cache:        cache,
		forceRefresh: forceRefresh,
		textInput:    ti,
		spinner:      sp,
		progress:     prog,
		marquee:      make(map[string]int),
	}
}

// Init starts the catalog refresh and the animation ticks.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRefresh(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// startRefresh runs the cache refresh in the background; events are
// collected in the shared log and polled on ticks.
func (m Model) startRefresh() tea.Cmd {
	refresher := catalog.NewRefresher(m.store, m.extractor, m.events.add)
	cfg := m.cfg
	cache := m.cache
	force := m.forceRefresh
	return func() tea.Msg {
		fresh := refresher.Refresh(context.Background(), cfg, cache, force)
		return refreshDoneMsg{cache: fresh}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = clampInt(msg.Width-20, 20, 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case refreshDoneMsg:
		m.cache = msg.cache
		m.sess.SetCache(msg.cache)
		m.state = stateBrowse

	case downloadDoneMsg:
		m.final = msg.final
		m.snapshot = msg.final
		m.state = stateSummary

	case tickMsg:
		if m.state == stateDownloading {
			m.snapshot = m.engine.Snapshot()
			cmds = append(cmds, m.progress.SetPercent(m.snapshot.Percent()))
		}
		if m.state == stateBrowse {
			m.advanceMarquee()
		}
		cmds = append(cmds, m.tick())

	case statusClearMsg:
		if msg.id == m.statusID {
			m.status = ""
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.inputActive() {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) inputActive() bool {
	switch m.state {
	case stateSearch, statePathInput, stateEditGlobal, stateEditSource:
		return true
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateRefreshing:
		if msg.String() == "q" || msg.String() == "esc" {
			return m, tea.Quit
		}
		return m, nil
	case stateBrowse:
		return m.handleBrowseKey(msg)
	case stateSearch:
		return m.handlePromptKey(msg, func(m Model, value string) (tea.Model, tea.Cmd) {
			return m.applySearch(value)
		})
	case stateConfirmDest:
		return m.handleConfirmKey(msg)
	case statePathInput:
		return m.handlePromptKey(msg, func(m Model, value string) (tea.Model, tea.Cmd) {
			dir := value
			if dir == "" {
				dir = defaultDownloadDir()
			}
			return m.chooseStrategy(dir)
		})
	case stateStrategy:
		return m.handleStrategyKey(msg)
	case stateSummary, stateInfo:
		m.state = stateBrowse
		return m, nil
	case stateEditGlobal:
		return m.handlePromptKey(msg, func(m Model, value string) (tea.Model, tea.Cmd) {
			m.cfg.SetGlobalFolders(config.ParseFolderInput(value))
			m.persistConfig()
			return m, nil
		})
	case stateEditSource:
		return m.handlePromptKey(msg, func(m Model, value string) (tea.Model, tea.Cmd) {
			m.cfg.SetSourceFolders(m.sess.SourceName(), config.ParseFolderInput(value))
			m.persistConfig()
			return m, nil
		})
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.sess.MoveUp()
	case "down", "j":
		m.sess.MoveDown()
	case "left", "h":
		m.sess.PrevSource()
	case "right", "l":
		m.sess.NextSource()
	case "r":
		m.sess.ToggleGroup(session.ViewByRegion)
	case "t":
		m.sess.ToggleGroup(session.ViewByType)
	case "tab":
		m.sess.CycleBucket()
	case "f", "/":
		return m.openPrompt(stateSearch, "Search (empty to clear)", m.sess.Query())
	case "i":
		m.state = stateInfo
	case "g":
		return m.openPrompt(stateEditGlobal, "Global download folders (comma separated, empty to clear)", "")
	case "d":
		return m.openPrompt(stateEditSource,
			fmt.Sprintf("Download folders for %q (comma separated, empty to clear)", m.sess.SourceName()), "")
	case "enter", "D":
		if rec, ok := m.sess.Selected(); ok {
			m.pending = rec
			m.state = stateConfirmDest
		}
	}
	return m, nil
}

// openPrompt switches into a textinput-backed modal state. The event loop
// keeps ticking; only this interaction waits for a definite keystroke.
func (m Model) openPrompt(target state, prompt, initial string) (tea.Model, tea.Cmd) {
	m.state = target
	m.textInput.Prompt = prompt + ": "
	m.textInput.SetValue(initial)
	m.textInput.CursorEnd()
	m.textInput.Focus()
	return m, textinput.Blink
}

// handlePromptKey runs a modal prompt: enter submits, esc cancels. The
// submit callback receives the model with the prompt already closed.
func (m Model) handlePromptKey(msg tea.KeyMsg, submit func(Model, string) (tea.Model, tea.Cmd)) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.textInput.Blur()
		return m, nil
	case "enter":
		value := m.textInput.Value()
		m.state = stateBrowse
		m.textInput.Blur()
		return submit(m, value)
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) applySearch(value string) (tea.Model, tea.Cmd) {
	if !m.sess.Search(value) {
		return m.setStatus(fmt.Sprintf("No results for %q", value))
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	folders := m.cfg.FoldersFor(m.sess.SourceName())
	switch msg.String() {
	case "c", "esc":
		m.state = stateBrowse
		return m, nil
	case "1":
		if len(folders) > 0 {
			return m.chooseStrategy(folders[0])
		}
	case "2":
		return m.chooseStrategy(defaultDownloadDir())
	case "3":
		return m.openPrompt(statePathInput, "Enter folder path", "")
	}
	return m, nil
}

// chooseStrategy asks which downloader to use when the external tool is
// installed, otherwise starts the built-in streaming download directly.
func (m Model) chooseStrategy(destDir string) (tea.Model, tea.Cmd) {
	m.destDir = destDir
	if m.engine.ExternalAvailable() {
		m.state = stateStrategy
		return m, nil
	}
	return m.startDownload(download.StrategyStream)
}

func (m Model) handleStrategyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "a":
		return m.startDownload(download.StrategyExternal)
	case "n", "s", "enter":
		return m.startDownload(download.StrategyStream)
	case "c", "esc":
		m.state = stateBrowse
	}
	return m, nil
}

func (m Model) startDownload(strategy download.Strategy) (tea.Model, tea.Cmd) {
	m.state = stateDownloading
	m.snapshot = download.Progress{State: download.StateConnecting, Name: m.pending.Name}

	engine := m.engine
	rec := m.pending
	destDir := m.destDir
	cmd := func() tea.Msg {
		final := engine.Download(context.Background(), rec, destDir, strategy)
		return downloadDoneMsg{final: final}
	}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// persistConfig saves folder edits immediately; a failed write becomes a
// sticky warning banner instead of a silent loss.
func (m *Model) persistConfig() {
	if err := m.cfg.Save(); err != nil {
		m.persistWarn = fmt.Sprintf("Could not save config: %v", err)
		return
	}
	m.persistWarn = ""
}

func (m Model) setStatus(text string) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusID++
	id := m.statusID
	return m, tea.Tick(1500*time.Millisecond, func(time.Time) tea.Msg {
		return statusClearMsg{id: id}
	})
}

// advanceMarquee moves the scroll phase of the selected item when its name
// is wider than the list column; all other phases reset so items restart
// from the beginning when re-selected. Phases count runes, not bytes, so
// multibyte names scroll one glyph at a time.
func (m *Model) advanceMarquee() {
	rec, ok := m.sess.Selected()
	if !ok {
		return
	}
	key := rec.Key(m.sess.SourceName())
	limit := m.nameColumnWidth()
	if runewidth.StringWidth(rec.Name) <= limit {
		delete(m.marquee, key)
		return
	}
	runes := []rune(rec.Name)
	phase := m.marquee[key] + 1
	if phase >= len(runes) || runewidth.StringWidth(string(runes[phase:])) <= limit {
		phase = 0
	}
	for k := range m.marquee {
		if k != key {
			delete(m.marquee, k)
		}
	}
	m.marquee[key] = phase
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Downloads"
	}
	return filepath.Join(home, "Downloads")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run starts the TUI application and blocks until it exits.
func Run(cfg *config.Config, store *catalog.Store, cache *catalog.Cache, extractor catalog.Extractor, engine *download.Engine, forceRefresh bool) error {
	p := tea.NewProgram(NewModel(cfg, store, cache, extractor, engine, forceRefresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
