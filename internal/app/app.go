// Package app contains the root application model. It owns the committed
// object list: every list the labeling mode proposes is committed here,
// persisted, and handed back to the mode.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/keys"
	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/mode"
	"github.com/zjrosen/spanmark/internal/mode/labeling"
	"github.com/zjrosen/spanmark/internal/pubsub"
	"github.com/zjrosen/spanmark/internal/ui/help"
	"github.com/zjrosen/spanmark/internal/ui/labelpicker"
	"github.com/zjrosen/spanmark/internal/ui/logoverlay"
	"github.com/zjrosen/spanmark/internal/ui/toaster"
	"github.com/zjrosen/spanmark/internal/watcher"
)

// Options configures a new application model.
type Options struct {
	Services mode.Services
	Loader   *document.Loader

	// Path is the document file; Text is its current contents.
	Path string
	Text string

	// Objects, when non-nil, seeds the list instead of loading it from the
	// repository.
	Objects []document.Span

	// Watch enables reloading the document when the file changes.
	Watch bool
	Debug bool
}

// storeLoadedMsg carries the result of loading the list from the repository.
type storeLoadedMsg struct {
	record annotations.Record
	err    error
}

// savedMsg reports the outcome of persisting a committed list.
type savedMsg struct {
	seq int64
	err error
}

// labelSavedMsg reports the outcome of persisting the active label.
type labelSavedMsg struct {
	err error
}

// saver serializes saves so a slow older save never overwrites a newer one.
type saver struct {
	mu     sync.Mutex
	latest int64
}

// Model is the root application state.
type Model struct {
	services mode.Services
	keys     keys.KeyMap
	loader   *document.Loader
	saver    *saver
	saveSeq  int64

	// committed is the Seq of the newest proposal committed.
	committed int64

	path    string
	doc     document.Document
	objects []document.Span

	labeling   labeling.Model
	help       help.Model
	showHelp   bool
	picker     labelpicker.Model
	showPicker bool
	toaster    toaster.Model

	debugMode  bool
	logOverlay logoverlay.Model
	logCmd     tea.Cmd

	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc

	watcherHandle   *watcher.Watcher
	watcherListener *pubsub.ContinuousListener[watcher.Change]
}

// New creates the application model.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.Loader == nil {
		opts.Loader = document.NewLoader(nil)
	}
	if opts.Services.Config == nil {
		cfg := config.Defaults()
		opts.Services.Config = &cfg
	}

	m := Model{
		services:   opts.Services,
		keys:       keys.DefaultKeyMap(),
		loader:     opts.Loader,
		saver:      &saver{},
		path:       opts.Path,
		doc:        opts.Loader.Load(ctx, opts.Text),
		objects:    opts.Objects,
		toaster:    toaster.New(),
		debugMode:  opts.Debug,
		logOverlay: logoverlay.New(),
		ctx:        ctx,
		cancel:     cancel,
	}
	m.help = help.New(m.keys, opts.Services.Config.Resolver().Categories())
	m.labeling = labeling.New(opts.Services).SetDocument(m.path, m.doc).SetObjects(m.objects)

	if opts.Debug {
		m.logCmd = m.logOverlay.StartListening(ctx)
	}

	if opts.Watch && opts.Path != "" {
		w, err := watcher.New(watcher.DefaultConfig(opts.Path))
		if err == nil {
			if err := w.Start(); err == nil {
				m.watcherHandle = w
				m.watcherListener = pubsub.NewContinuousListener[watcher.Change](ctx, w)
			} else {
				log.Warn(log.CatWatcher, "auto reload disabled", "error", err)
				_ = w.Stop()
			}
		}
	}
	return m
}

// Init implements tea.Model. It loads the stored list unless one was given
// and starts listening for document changes.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.labeling.Init()}
	if m.objects == nil {
		cmds = append(cmds, m.loadCmd())
	}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logCmd != nil {
		cmds = append(cmds, m.logCmd)
	}
	return tea.Batch(cmds...)
}

// Objects returns the committed list.
func (m Model) Objects() []document.Span {
	return m.objects
}

// Document returns the current document.
func (m Model) Document() document.Document {
	return m.doc
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.labeling = m.labeling.SetSize(msg.Width, msg.Height)
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.logOverlay = m.logOverlay.SetSize(msg.Width, msg.Height)
		m.picker = m.picker.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.debugMode && key.Matches(msg, m.keys.ToggleLogs) {
			m.logOverlay = m.logOverlay.Toggle()
			return m, nil
		}
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Cancel) {
				m.showHelp = false
			} else if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.showPicker {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.LabelMenu):
			cats := m.services.Config.Resolver().Categories()
			m.picker = labelpicker.New(cats, m.labeling.ActiveLabel()).SetSize(m.width, m.height)
			m.showPicker = true
			return m, nil
		}

	case tea.MouseMsg:
		if m.showHelp || m.showPicker || m.logOverlay.Visible() {
			return m, nil
		}

	case labelpicker.SelectMsg:
		m.showPicker = false
		m.labeling = m.labeling.SetActiveLabel(msg.Label)
		m.services.Config.ActiveLabel = msg.Label
		return m, m.saveLabelCmd(msg.Label)

	case labelpicker.CancelMsg:
		m.showPicker = false
		return m, nil

	case log.LogEvent:
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd

	case labeling.ObjectsChangedMsg:
		if msg.Seq != 0 {
			if msg.Seq <= m.committed {
				log.Debug(log.CatStore, "dropping stale proposal", "seq", msg.Seq, "committed", m.committed)
				return m, nil
			}
			m.committed = msg.Seq
		}
		return m.commit(msg.Objects, msg.Seq)

	case labeling.ActiveLabelChangedMsg:
		m.services.Config.ActiveLabel = msg.Label
		return m, m.saveLabelCmd(msg.Label)

	case labeling.ReloadRequestMsg:
		return m, m.loadCmd()

	case storeLoadedMsg:
		return m.handleStoreLoaded(msg)

	case savedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatStore, "saving annotations", msg.err, "path", m.path)
			return m, toaster.Toast("Saving failed: "+msg.err.Error(), toaster.StyleError)
		}
		return m, nil

	case labelSavedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatConfig, "saving active label", msg.err)
		}
		return m, nil

	case pubsub.Event[watcher.Change]:
		return m.handleDocumentChanged(msg)

	case toaster.ShowToastMsg:
		m.toaster = m.toaster.Show(msg.Message, msg.Style)
		return m, m.toaster.ScheduleDismiss(toaster.DefaultDuration)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Dismiss(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.labeling, cmd = m.labeling.Update(msg)
	return m, cmd
}

// commit makes objects the current list, redraws, and persists it. The
// mode already draws its own proposals; a list is handed back unless a
// newer proposal is still in flight.
func (m Model) commit(objects []document.Span, seq int64) (tea.Model, tea.Cmd) {
	m.objects = objects
	if seq == 0 || seq == m.labeling.LastProposal() {
		m.labeling = m.labeling.SetObjects(objects)
	}
	log.Debug(log.CatStore, "committed object list", "spans", len(objects))
	return m, m.saveCmd(objects)
}

func (m *Model) saveCmd(objects []document.Span) tea.Cmd {
	repo := m.services.Repository
	if repo == nil || m.path == "" {
		return nil
	}
	m.saveSeq++
	seq, s := m.saveSeq, m.saver
	ctx, path, version := m.ctx, m.path, m.doc.Version
	return func() tea.Msg {
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq < s.latest {
			return savedMsg{seq: seq}
		}
		s.latest = seq
		_, err := repo.Save(ctx, path, version, objects)
		return savedMsg{seq: seq, err: err}
	}
}

func (m Model) loadCmd() tea.Cmd {
	repo := m.services.Repository
	if repo == nil || m.path == "" {
		return nil
	}
	ctx, path := m.ctx, m.path
	return func() tea.Msg {
		rec, err := repo.Load(ctx, path)
		return storeLoadedMsg{record: rec, err: err}
	}
}

func (m Model) saveLabelCmd(label string) tea.Cmd {
	path := m.services.ConfigPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		return labelSavedMsg{err: config.SaveActiveLabel(path, label)}
	}
}

func (m Model) handleStoreLoaded(msg storeLoadedMsg) (tea.Model, tea.Cmd) {
	var nf *annotations.DocumentNotFoundError
	switch {
	case errors.As(msg.err, &nf):
		log.Info(log.CatStore, "no stored annotations", "path", m.path)
		m.objects = document.Clear()
		m.labeling = m.labeling.SetObjects(m.objects)
		return m, nil
	case msg.err != nil:
		log.ErrorErr(log.CatStore, "loading annotations", msg.err, "path", m.path)
		return m, toaster.Toast("Loading failed: "+msg.err.Error(), toaster.StyleError)
	}

	m.objects = msg.record.Objects
	m.labeling = m.labeling.SetObjects(m.objects)
	log.Info(log.CatStore, "loaded annotations", "path", m.path, "spans", len(m.objects))
	if n := m.staleCount(); n > 0 {
		return m, toaster.Toast(staleMessage(n), toaster.StyleWarn)
	}
	return m, nil
}

func (m Model) handleDocumentChanged(ev pubsub.Event[watcher.Change]) (tea.Model, tea.Cmd) {
	var next tea.Cmd
	if m.watcherListener != nil {
		next = m.watcherListener.Listen()
	}
	if err := ev.Payload.Err; err != nil {
		style, text := toaster.StyleError, "Reading document failed: "+err.Error()
		if ev.Type == pubsub.DeletedEvent {
			style, text = toaster.StyleWarn, "Document was removed"
		}
		return m, tea.Batch(next, toaster.Toast(text, style))
	}

	doc := m.loader.Load(m.ctx, ev.Payload.Text)
	if doc.Version == m.doc.Version {
		return m, next
	}
	m.doc = doc
	// the list is kept; only the tokens it is drawn against change
	m.labeling = m.labeling.SetDocument(m.path, doc).SetObjects(m.objects)
	log.Info(log.CatWatcher, "document reloaded", "path", m.path, "tokens", doc.Len())

	cmds := []tea.Cmd{next}
	if n := m.staleCount(); n > 0 {
		cmds = append(cmds, toaster.Toast(staleMessage(n), toaster.StyleWarn))
	} else {
		cmds = append(cmds, toaster.Toast("Document reloaded", toaster.StyleInfo))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) staleCount() int {
	n := 0
	for _, s := range m.objects {
		if document.Stale(m.doc.Tokens, s) {
			n++
		}
	}
	return n
}

func staleMessage(n int) string {
	if n == 1 {
		return "1 span no longer matches the document"
	}
	return fmt.Sprintf("%d spans no longer match the document", n)
}

// View implements tea.Model.
func (m Model) View() string {
	view := m.labeling.View()
	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.showPicker {
		view = m.picker.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	m.cancel()
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}
	return nil
}
