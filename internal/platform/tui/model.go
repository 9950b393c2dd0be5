package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/core"
	"github.com/christian-post/NPC-Escort-Mission/internal/escort"
	"github.com/christian-post/NPC-Escort-Mission/internal/registry"
	"github.com/christian-post/NPC-Escort-Mission/internal/storage"
)

// noticeSeconds is how long a game event stays on screen.
const noticeSeconds = 2

// runReporter is implemented by games that keep run statistics.
type runReporter interface {
	Stats() escort.Stats
	LevelID() string
}

// resizer is implemented by games that can change view size mid-run.
type resizer interface {
	Resize(w, h int)
}

// configurable is implemented by games that take tuning changes mid-run.
type configurable interface {
	ApplyConfig(cfg config.EscortConfig)
}

// configMsg carries a reloaded tuning file.
type configMsg struct {
	cfg config.EscortConfig
}

// configErrMsg reports a tuning file that failed to load.
type configErrMsg struct {
	err error
}

// waitForConfig blocks until the watcher reports a change.
func waitForConfig(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case cfg, ok := <-w.Configs:
			if !ok {
				return nil
			}
			return configMsg{cfg: cfg}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return configErrMsg{err: err}
		}
	}
}

// Model is the Bubble Tea model for running the game.
type Model struct {
	game        registry.Game
	screen      *core.Screen
	store       *storage.Store
	watcher     *config.Watcher
	config      core.RuntimeConfig
	inputFrame  core.InputFrame
	held        *HeldKeys
	keyMapper   *KeyMapper
	gameState   core.GameState
	notice      string
	noticeTicks int
	quitting    bool
	backToMenu  bool
	embedded    bool // back returns to a menu instead of quitting
	runSaved    bool // whether the current finished run has been recorded
}

// NewModel creates a new Bubble Tea model for the given game.
// store and watcher may be nil.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, watcher *config.Watcher) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		watcher:    watcher,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		held:       NewHeldKeys(cfg.TickRate),
		keyMapper:  NewKeyMapper(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	// Note: gameState will be set on first tick (value receiver limitation)

	return tea.Batch(tickCmd(m.config.TickRate), waitForConfig(m.watcher))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case configMsg:
		if c, ok := m.game.(configurable); ok {
			c.ApplyConfig(msg.cfg)
			m.showNotice("config reloaded")
		}
		return m, waitForConfig(m.watcher)

	case configErrMsg:
		m.showNotice("config error: " + msg.err.Error())
		return m, waitForConfig(m.watcher)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, _ := m.keyMapper.MapKey(msg)
	if action == core.ActionBack && (m.gameState.GameOver || m.gameState.Paused) {
		m.backToMenu = true
		if !m.embedded {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame, m.held) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(resizer); ok {
		r.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	// Check for restart
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		// Reset seed for new game
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.runSaved = false
		m.held.Release()
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	m.held.Apply(&m.inputFrame)
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	for _, ev := range result.Events {
		m.showNotice(ev)
	}

	// Record the run once per game over
	if m.gameState.GameOver {
		if !m.runSaved {
			m.saveRun()
			m.runSaved = true
		}
	} else {
		m.runSaved = false
	}

	if m.noticeTicks > 0 {
		m.noticeTicks--
	}
	m.inputFrame.Clear()
	m.held.Advance()

	return m, tickCmd(m.config.TickRate)
}

func (m *Model) showNotice(text string) {
	m.notice = text
	m.noticeTicks = noticeSeconds * max(m.config.TickRate, 1)
}

// saveRun stores the finished run, if the game reports one.
func (m *Model) saveRun() {
	if m.store == nil {
		return
	}
	rec, ok := runRecord(m.game, m.gameState)
	if !ok {
		return
	}
	//nolint:errcheck // Best-effort save, game continues regardless
	m.store.SaveRun(rec)
}

// runRecord builds a storage record for a finished game.
func runRecord(game registry.Game, state core.GameState) (storage.RunRecord, bool) {
	r, ok := game.(runReporter)
	if !ok {
		return storage.RunRecord{}, false
	}
	st := r.Stats()
	if st.Ticks == 0 {
		return storage.RunRecord{}, false
	}

	mode := storage.ModePlay
	if strings.HasSuffix(game.ID(), "_attract") {
		mode = storage.ModeAttract
	}
	return storage.RunRecord{
		LevelID:      r.LevelID(),
		Mode:         mode,
		Ticks:        st.Ticks,
		SightTicks:   st.SightTicks,
		PathRequests: st.PathRequests,
		LostEvents:   st.LostEvents,
		Escorted:     st.Escorted,
		Score:        state.Score,
	}, true
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".escort", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	if m.noticeTicks > 0 && m.notice != "" {
		m.screen.DrawTextColored(1, m.screen.Height()-2, m.notice, core.ColorBrightYellow)
	}

	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given game. It reports
// whether the player asked to go back rather than quit.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, watcher *config.Watcher) (back bool, err error) {
	model := NewModel(game, store, cfg, watcher)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	if fm, ok := final.(Model); ok {
		return fm.BackToMenu(), nil
	}
	return false, nil
}
