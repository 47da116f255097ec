package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"github.com/petems/hotkeyd/internal/config"
	"github.com/petems/hotkeyd/internal/logging"
	"github.com/rs/zerolog"
)

// Controller is what the tray menu acts on.
type Controller interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Paused() bool
	Reload(ctx context.Context, cfg *config.Config) error
}

type UI struct {
	app     Controller
	cfgPath string
	version string
	commit  string
	log     zerolog.Logger
	onQuit  func()

	mu       sync.Mutex
	ready    bool
	status   string
	bindings []string

	// Menu items
	mBindings *systray.MenuItem
	items     []*systray.MenuItem
	mPause    *systray.MenuItem
}

// Status update methods for the app to call
func (u *UI) SetIdle() {
	u.updateStatus("idle")
}

func (u *UI) SetPaused() {
	u.updateStatus("paused")
}

func (u *UI) SetError() {
	u.updateStatus("error")
}

// SetBindings replaces the list shown under the Bindings menu.
func (u *UI) SetBindings(bindings []string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bindings = append([]string(nil), bindings...)
	if u.ready {
		u.renderBindingsLocked()
	}
}

func New(cfgPath, version, commit string, log zerolog.Logger) *UI {
	return &UI{
		cfgPath: cfgPath,
		version: version,
		commit:  commit,
		log:     log.With().Str("component", "tray").Logger(),
		status:  "idle",
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application Controller) {
	u.app = application
}

// Run shows the tray and blocks until Quit is chosen or Stop is called. It
// must run on the main goroutine. onQuit runs when the tray exits.
func (u *UI) Run(ctx context.Context, onQuit func()) error {
	u.onQuit = onQuit
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	systray.SetTooltip("Global hotkey daemon")

	u.mBindings = systray.AddMenuItem("Bindings", "Registered hotkeys")
	systray.AddSeparator()
	u.mPause = systray.AddMenuItem("Pause Hotkeys", "Release every hotkey until resumed")
	mReload := systray.AddMenuItem("Reload Config", u.cfgPath)

	systray.AddSeparator()
	mLogs := systray.AddMenuItem("Open Logs", logging.LogPath())
	mAbout := systray.AddMenuItem("About", "About hotkeyd")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	u.mu.Lock()
	u.ready = true
	systray.SetTitle(titleFor(u.status))
	u.renderBindingsLocked()
	u.mu.Unlock()

	// Event loop
	go u.handleEvents(mReload, mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mReload, mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mPause.ClickedCh:
			u.togglePause()
		case <-mReload.ClickedCh:
			u.reload()
		case <-mLogs.ClickedCh:
			u.log.Info().Str("path", logging.LogPath()).Msg("Log file")
		case <-mAbout.ClickedCh:
			u.log.Info().Msg(aboutText(u.version, u.commit))
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) togglePause() {
	if u.app == nil {
		return
	}
	ctx := context.Background()
	if u.app.Paused() {
		if err := u.app.Resume(ctx); err != nil {
			u.log.Error().Err(err).Msg("Failed to resume hotkeys")
		}
		u.mPause.SetTitle("Pause Hotkeys")
		return
	}
	if err := u.app.Pause(ctx); err != nil {
		u.log.Error().Err(err).Msg("Failed to pause hotkeys")
	}
	u.mPause.SetTitle("Resume Hotkeys")
}

func (u *UI) reload() {
	if u.app == nil {
		return
	}
	cfg, err := config.LoadFile(u.cfgPath)
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to load config")
		u.SetError()
		return
	}
	if err := u.app.Reload(context.Background(), cfg); err != nil {
		u.log.Error().Err(err).Msg("Reload applied with errors")
	}
}

// renderBindingsLocked reuses submenu items; systray cannot remove them.
func (u *UI) renderBindingsLocked() {
	u.mBindings.SetTitle(bindingsTitle(len(u.bindings)))
	for i, b := range u.bindings {
		if i < len(u.items) {
			u.items[i].SetTitle(b)
			u.items[i].Show()
			continue
		}
		item := u.mBindings.AddSubMenuItem(b, "")
		item.Disable()
		u.items = append(u.items, item)
	}
	for _, item := range u.items[min(len(u.bindings), len(u.items)):] {
		item.Hide()
	}
}

func (u *UI) onExit() {
	if u.onQuit != nil {
		u.onQuit()
	}
}

// updateStatus sets the tray title with keyboard emoji and status indicator
func (u *UI) updateStatus(status string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
	if u.ready {
		systray.SetTitle(titleFor(status))
	}
}

func titleFor(status string) string {
	return fmt.Sprintf("⌨️ %s", emojiForStatus(status))
}

func bindingsTitle(n int) string {
	switch n {
	case 0:
		return "No Bindings"
	case 1:
		return "1 Binding"
	default:
		return fmt.Sprintf("%d Bindings", n)
	}
}

func aboutText(version, commit string) string {
	return fmt.Sprintf("hotkeyd %s (%s)", version, commit)
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "paused":
		return "⏸️"
	case "error":
		return "🔴"
	case "idle":
		return "🟢"
	default:
		return "🟢"
	}
}
