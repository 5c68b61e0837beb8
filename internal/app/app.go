// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/folio/internal/canvas"
	"github.com/zjrosen/folio/internal/config"
	"github.com/zjrosen/folio/internal/geometry"
	"github.com/zjrosen/folio/internal/keys"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
	"github.com/zjrosen/folio/internal/render"
	"github.com/zjrosen/folio/internal/store"
	"github.com/zjrosen/folio/internal/ui/compositor"
	"github.com/zjrosen/folio/internal/ui/pane"
	"github.com/zjrosen/folio/internal/ui/styles"
	"github.com/zjrosen/folio/internal/watcher"
	"github.com/zjrosen/folio/internal/window"
)

const statusBarHeight = 1

// promptKind selects what the text input at the bottom is collecting.
type promptKind int

const (
	promptNone promptKind = iota
	promptRename
	promptNotes
	promptGoToPage
	promptSection
	promptSearch
)

// fileDroppedMsg announces a settled file in the drop directory.
type fileDroppedMsg struct{ path string }

// writerSink adapts the store writer to the canvas persistence contract.
type writerSink struct {
	writer *store.Writer
}

func (s writerSink) Save(rec window.Record) {
	fields, err := rec.Fields()
	if err != nil {
		log.ErrorErr(log.CatStore, "encoding window record", err, "id", rec.ID)
		return
	}
	s.writer.Put(rec.ID, fields)
}

func (s writerSink) Delete(id string) {
	s.writer.Delete(id)
}

// Model is the root application state.
type Model struct {
	cfg    config.Config
	keymap keys.KeyMap

	canvas *canvas.Canvas
	st     store.Store
	writer *store.Writer

	width  int
	height int

	status     string
	statusWarn bool

	prompt promptKind
	input  textinput.Model

	showHelp bool

	eventCtx      context.Context
	eventCancel   context.CancelFunc
	eventListener *pubsub.Listener[window.Event]

	watcherHandle *watcher.Watcher
	dropped       <-chan string
}

// New creates the application model, restoring any persisted session.
func New(cfg config.Config, st store.Store) *Model {
	writer := store.NewWriter(st)
	cv := canvas.New(geometry.Rect{Width: 80, Height: 24}, writerSink{writer: writer})

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		cfg:         cfg,
		keymap:      keys.DefaultKeyMap(),
		canvas:      cv,
		st:          st,
		writer:      writer,
		input:       textinput.New(),
		eventCtx:    ctx,
		eventCancel: cancel,
	}
	m.eventListener = pubsub.NewListener(ctx, cv.Broker())

	m.syncPreferences()
	m.restoreSession()
	m.startWatcher()
	return m
}

// syncPreferences reconciles stored display preferences with the config.
// Values already in the store win, so an imported snapshot restyles the
// session; missing keys are seeded from the config so exports carry them.
func (m *Model) syncPreferences() {
	ctx := context.Background()
	if v, err := m.st.Preference(ctx, "markdown_style"); err == nil && v != "" {
		m.cfg.UI.MarkdownStyle = v
	} else if err := m.st.SetPreference(ctx, "markdown_style", m.cfg.UI.MarkdownStyle); err != nil {
		log.ErrorErr(log.CatStore, "saving markdown style preference", err)
	}
	if v, err := m.st.Preference(ctx, "theme"); err == nil && v != "" {
		m.cfg.Theme.Highlight = v
	} else if err := m.st.SetPreference(ctx, "theme", m.cfg.Theme.Highlight); err != nil {
		log.ErrorErr(log.CatStore, "saving theme preference", err)
	}
	styles.ApplyTheme(m.cfg.Theme.Highlight, m.cfg.Theme.Subtle, m.cfg.Theme.Error, m.cfg.Theme.Success)
}

// restoreSession reopens every persisted window.
func (m *Model) restoreSession() {
	entries, err := m.st.GetAll(context.Background())
	if err != nil {
		log.ErrorErr(log.CatCanvas, "reading persisted session", err)
		return
	}

	payloads := make(map[string][]byte, len(entries))
	recs := make([]window.Record, 0, len(entries))
	for _, entry := range entries {
		rec, err := window.RecordFromFields(entry.Fields)
		if err != nil {
			log.Warn(log.CatCanvas, "skipping undecodable entry", "id", entry.ID, "err", err.Error())
			continue
		}
		payloads[rec.ID] = entry.Payload
		recs = append(recs, rec)
	}

	restored, skipped := m.canvas.Restore(recs, func(rec window.Record) (render.Renderer, render.Searcher) {
		doc := m.documentFor(rec, payloads[rec.ID])
		return doc, doc
	})
	if restored > 0 || skipped > 0 {
		log.Info(log.CatCanvas, "session restored", "windows", restored, "skipped", skipped)
	}
}

// documentFor builds the renderer for a window's payload. Windows without
// a payload get an empty document rather than no renderer.
func (m *Model) documentFor(rec window.Record, payload []byte) *render.TextDocument {
	name := rec.PayloadRef
	if name == "" {
		name = rec.Title
	}
	markdown := rec.Kind == window.KindMemo || strings.HasSuffix(strings.ToLower(name), ".md")
	doc := render.NewTextDocument(name, payload, markdown)
	doc.SetStyle(m.cfg.UI.MarkdownStyle)
	return doc
}

func (m *Model) startWatcher() {
	if !m.cfg.AutoOpen || m.cfg.DropDir == "" {
		return
	}
	w, err := watcher.New(watcher.Config{
		Dir:         m.cfg.DropDir,
		DebounceDur: time.Duration(m.cfg.AutoOpenDebounce) * time.Millisecond,
	})
	if err != nil {
		log.ErrorErr(log.CatWatcher, "creating drop watcher", err, "dir", m.cfg.DropDir)
		return
	}
	dropped, err := w.Start()
	if err != nil {
		log.ErrorErr(log.CatWatcher, "starting drop watcher", err, "dir", m.cfg.DropDir)
		_ = w.Stop()
		return
	}
	m.watcherHandle = w
	m.dropped = dropped
}

// Close flushes pending writes and releases resources. Called after the
// program loop exits.
func (m *Model) Close() error {
	m.canvas.CloseAll(false)
	m.eventCancel()
	if m.watcherHandle != nil {
		_ = m.watcherHandle.Stop()
	}
	return m.writer.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.eventListener.Listen()}
	if m.dropped != nil {
		cmds = append(cmds, waitForDrop(m.dropped))
	}
	return tea.Batch(cmds...)
}

func waitForDrop(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return fileDroppedMsg{path: path}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.canvas.SetViewport(geometry.Rect{Width: msg.Width, Height: msg.Height - m.barHeight()})
		return m, nil

	case fileDroppedMsg:
		m.openDroppedFile(msg.path)
		return m, waitForDrop(m.dropped)

	case pubsub.Event[window.Event]:
		m.applyEvent(msg.Payload)
		return m, m.eventListener.Listen()

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// applyEvent updates transient UI state from a domain event.
func (m *Model) applyEvent(ev window.Event) {
	switch ev.Type {
	case window.EventStatus:
		if st, ok := ev.Value.(window.Status); ok {
			m.setStatus(st)
		}
	case window.EventSearch:
		if act, ok := ev.Value.(window.SearchActivity); ok {
			switch act.State {
			case window.SearchFinished:
				m.status = fmt.Sprintf("%d matches for %q", len(act.Matches), act.Query)
				m.statusWarn = false
			case window.SearchFailed:
				m.status = fmt.Sprintf("search for %q failed", act.Query)
				m.statusWarn = true
			}
		}
	case window.EventBookmarkJumped:
		if page, ok := ev.Value.(int); ok {
			m.status = fmt.Sprintf("jumped to bookmark on page %d", page)
			m.statusWarn = false
		}
	}
}

func (m *Model) setStatus(st window.Status) {
	if st.OK() {
		m.status = ""
		m.statusWarn = false
		return
	}
	m.status = st.Message
	m.statusWarn = st.Kind == window.StatusWarn
}

func (m *Model) openDroppedFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "reading dropped file", err, "path", path)
		return
	}

	name := filepath.Base(path)
	markdown := strings.HasSuffix(strings.ToLower(name), ".md")
	doc := render.NewTextDocument(name, data, markdown)
	doc.SetStyle(m.cfg.UI.MarkdownStyle)

	bounds := geometry.Rect{
		X: 2, Y: 1,
		Width:  m.cfg.UI.DefaultWindowWidth,
		Height: m.cfg.UI.DefaultWindowHeight,
	}
	ctrl, err := m.canvas.Open(window.KindDocument, name, bounds, doc, doc)
	if err != nil {
		log.ErrorErr(log.CatCanvas, "opening dropped file", err, "path", path)
		return
	}
	ctrl.Window().SetPayloadRef(name)
	m.writer.PutWithPayload(ctrl.ID(), mustFields(ctrl.Record()), data)
	m.status = fmt.Sprintf("opened %s", name)
	m.statusWarn = false
}

// openMemo opens an empty memo window. The body fills in through the
// rename and notes commands; it persists like any document window.
func (m *Model) openMemo() {
	doc := render.NewTextDocument("Memo", nil, true)
	doc.SetStyle(m.cfg.UI.MarkdownStyle)
	bounds := geometry.Rect{
		X: 2, Y: 1,
		Width:  m.cfg.UI.DefaultWindowWidth,
		Height: m.cfg.UI.DefaultWindowHeight,
	}
	if _, err := m.canvas.Open(window.KindMemo, "Memo", bounds, doc, doc); err != nil {
		log.ErrorErr(log.CatCanvas, "opening memo window", err)
		m.status = "could not open memo window"
		m.statusWarn = true
		return
	}
	m.status = "opened memo"
	m.statusWarn = false
}

func mustFields(rec window.Record) store.Fields {
	fields, err := rec.Fields()
	if err != nil {
		log.ErrorErr(log.CatStore, "encoding window record", err, "id", rec.ID)
		return store.Fields{"id": rec.ID}
	}
	return fields
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap

	if key.Matches(msg, km.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, km.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if key.Matches(msg, km.Escape) {
		m.status = ""
		m.showHelp = false
		return m, nil
	}
	if key.Matches(msg, km.CycleFocus) {
		m.canvas.CycleFocus(true)
		return m, nil
	}
	if key.Matches(msg, km.CycleFocusBack) {
		m.canvas.CycleFocus(false)
		return m, nil
	}
	if key.Matches(msg, km.NewMemo) {
		m.openMemo()
		return m, nil
	}

	active, ok := m.canvas.Active()
	if !ok {
		return m, nil
	}

	switch {
	// Paging
	case key.Matches(msg, km.NextPage):
		m.setStatus(active.StepPage(1))
	case key.Matches(msg, km.PrevPage):
		m.setStatus(active.StepPage(-1))
	case key.Matches(msg, km.FirstPage):
		m.setStatus(active.FirstPage())
	case key.Matches(msg, km.LastPage):
		m.setStatus(active.LastPage())
	case key.Matches(msg, km.Back):
		m.setStatus(active.Back())
	case key.Matches(msg, km.Forward):
		m.setStatus(active.Forward())
	case key.Matches(msg, km.GoToPage):
		return m.openPrompt(promptGoToPage, "page")
	case key.Matches(msg, km.GoToSection):
		return m.openSectionPrompt(active)

	// View
	case key.Matches(msg, km.ZoomIn):
		m.setStatus(active.StepZoom(window.ZoomStep))
	case key.Matches(msg, km.ZoomOut):
		m.setStatus(active.StepZoom(-window.ZoomStep))
	case key.Matches(msg, km.ZoomReset):
		m.setStatus(active.ResetZoom())
	case key.Matches(msg, km.FitWidth):
		m.setStatus(active.FitZoom(window.FitWidth))
	case key.Matches(msg, km.FitPage):
		m.setStatus(active.FitZoom(window.FitPage))
	case key.Matches(msg, km.Rotate):
		m.setStatus(active.RotateStep(1))
	case key.Matches(msg, km.CycleColor):
		m.setStatus(active.CycleColor())
	case key.Matches(msg, km.TogglePin):
		m.setStatus(active.TogglePin())

	// Bookmarks
	case key.Matches(msg, km.AddBookmark):
		m.setStatus(active.AddBookmark(0))
	case key.Matches(msg, km.NextBookmark):
		m.setStatus(active.NextBookmark())
	case key.Matches(msg, km.PrevBookmark):
		m.setStatus(active.PrevBookmark())

	// Window management
	case key.Matches(msg, km.MoveUp):
		m.setStatus(active.Move(0, -1))
	case key.Matches(msg, km.MoveDown):
		m.setStatus(active.Move(0, 1))
	case key.Matches(msg, km.MoveLeft):
		m.setStatus(active.Move(-2, 0))
	case key.Matches(msg, km.MoveRight):
		m.setStatus(active.Move(2, 0))
	case key.Matches(msg, km.GrowWidth):
		m.setStatus(active.Resize(2, 0))
	case key.Matches(msg, km.GrowHeight):
		m.setStatus(active.Resize(0, 1))
	case key.Matches(msg, km.Shrink):
		m.setStatus(active.Resize(-2, -1))
	case key.Matches(msg, km.Maximize):
		m.setStatus(active.ToggleMaximize())
	case key.Matches(msg, km.Duplicate):
		if _, err := m.canvas.Duplicate(active.ID()); err != nil {
			m.status = "could not duplicate window"
			m.statusWarn = true
		}
	case key.Matches(msg, km.CloseWindow):
		m.canvas.CloseWindow(active.ID(), true)
	case key.Matches(msg, km.Rename):
		return m.openPrompt(promptRename, "title")
	case key.Matches(msg, km.EditNotes):
		return m.openPrompt(promptNotes, "notes")
	case key.Matches(msg, km.Search):
		return m.openPrompt(promptSearch, "search")
	}

	return m, nil
}

func (m *Model) openPrompt(kind promptKind, placeholder string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input = textinput.New()
	m.input.Placeholder = placeholder
	m.input.PromptStyle = lipgloss.NewStyle().Foreground(styles.HighlightColor)
	m.input.Focus()
	return m, textinput.Blink
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.prompt = promptNone
		m.commitPrompt(kind, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// openSectionPrompt asks for an outline entry by number. Documents
// without headings get a status message instead of a prompt.
func (m *Model) openSectionPrompt(active *window.Controller) (tea.Model, tea.Cmd) {
	outline := active.Doc().Outline()
	if len(outline) == 0 {
		m.status = "document has no sections"
		m.statusWarn = true
		return m, nil
	}
	return m.openPrompt(promptSection, fmt.Sprintf("section 1-%d", len(outline)))
}

func (m *Model) commitPrompt(kind promptKind, value string) {
	active, ok := m.canvas.Active()
	if !ok {
		return
	}

	switch kind {
	case promptRename:
		m.setStatus(active.Rename(value))
	case promptNotes:
		m.setStatus(active.SetNotes(value))
	case promptGoToPage:
		n, err := strconv.Atoi(value)
		if err != nil {
			m.status = fmt.Sprintf("%q is not a page number", value)
			m.statusWarn = true
			return
		}
		m.setStatus(active.SetPage(n))
	case promptSection:
		n, err := strconv.Atoi(value)
		outline := active.Doc().Outline()
		if err != nil || n < 1 || n > len(outline) {
			m.status = fmt.Sprintf("%q is not a section number", value)
			m.statusWarn = true
			return
		}
		m.setStatus(active.GoToOutline(outline[n-1]))
	case promptSearch:
		if value != "" {
			m.setStatus(active.Search(value))
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width < 1 || m.height < 2 {
		return ""
	}

	canvasHeight := m.height - m.barHeight()
	out := compositor.Blank(m.width, canvasHeight)

	activeID := ""
	if active, ok := m.canvas.Active(); ok {
		activeID = active.ID()
	}

	for _, id := range m.canvas.ZOrder() {
		ctrl, ok := m.canvas.Controller(id)
		if !ok {
			continue
		}
		win := ctrl.Window()
		bounds := win.Bounds()

		content := ""
		if frame, ready := ctrl.Frame(); ready {
			content = frame.Content
		}

		rendered := pane.Render(pane.Props{
			Title:     win.Title(),
			Color:     win.Color(),
			Content:   content,
			Width:     bounds.Width,
			Height:    bounds.Height,
			Focused:   id == activeID,
			Pinned:    win.Pinned(),
			Maximized: win.Maximized(),
			Page:      win.Page(),
			PageCount: ctrl.TotalPages(),
			Zoom:      win.Zoom(),
			Rotation:  win.Rotation(),
		})
		out = compositor.Place(bounds.X, bounds.Y, rendered, out)
	}

	if m.cfg.UI.ShowStatusBar {
		return out + "\n" + m.statusBar()
	}
	// With the bar hidden, prompts and help still need a row; borrow the
	// bottom canvas line while they are up.
	if m.prompt != promptNone || m.showHelp {
		lines := strings.Split(out, "\n")
		out = strings.Join(lines[:len(lines)-1], "\n")
		return out + "\n" + m.statusBar()
	}
	return out
}

// barHeight is the number of rows reserved for the status bar.
func (m *Model) barHeight() int {
	if m.cfg.UI.ShowStatusBar {
		return statusBarHeight
	}
	return 0
}

func (m *Model) statusBar() string {
	if m.prompt != promptNone {
		return m.input.View()
	}
	if m.showHelp {
		return styles.HelpStyle.Render(
			"tab focus · j/k page · [/] history · b/n/N bookmarks · =/-/0 zoom · r rotate · m max · p pin · o memo · d dup · x close · / search · q quit")
	}
	if m.status != "" {
		if m.statusWarn {
			return styles.StatusBarWarnStyle.Render(m.status)
		}
		return styles.StatusBarStyle.Render(m.status)
	}

	if active, ok := m.canvas.Active(); ok {
		win := active.Window()
		return styles.StatusBarStyle.Render(fmt.Sprintf("%s · page %d/%d · %d windows",
			win.Title(), win.Page(), active.TotalPages(), m.canvas.Len()))
	}
	return styles.StatusBarStyle.Render("no windows · drop a file or press ? for help")
}
