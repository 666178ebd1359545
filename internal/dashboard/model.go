// Package dashboard is the terminal UI for browsing the journal: weekly
// activity charts, the record lists, and on-demand coaching insights.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/leaderlog/internal/insight"
	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
)

// Store is the part of journal.Store the dashboard reads and mutates.
type Store interface {
	Snapshot() journal.AppState
	AddReflection(ctx context.Context, r journal.Reflection) error
	AddTrigger(ctx context.Context, t journal.Trigger) error
	AddAccomplishment(ctx context.Context, a journal.Accomplishment) error
	Delete(ctx context.Context, kind journal.Kind, id string) (bool, error)
	LastSaveError() error
}

// Insighter produces coaching summaries. *insight.Requester implements it.
type Insighter interface {
	Generate(ctx context.Context, state journal.AppState, now time.Time) insight.Outcome
}

// View identifies a dashboard tab.
type View int

const (
	ViewDashboard View = iota
	ViewReflections
	ViewTriggers
	ViewAccomplishments
)

const viewCount = 4

func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewReflections:
		return "Reflections"
	case ViewTriggers:
		return "Triggers"
	case ViewAccomplishments:
		return "Accomplishments"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// kind returns the record kind listed by v; the dashboard tab lists none.
func (v View) kind() (journal.Kind, bool) {
	switch v {
	case ViewReflections:
		return journal.KindReflection, true
	case ViewTriggers:
		return journal.KindTrigger, true
	case ViewAccomplishments:
		return journal.KindAccomplishment, true
	default:
		return "", false
	}
}

const defaultWrap = 80

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx       context.Context
	store     Store
	insighter Insighter
	now       func() time.Time
	logger    *logging.Logger
	changes   <-chan error

	state  journal.AppState
	view   View
	cursor int
	width  int

	pending    bool
	spinner    spinner.Model
	outcome    insight.Outcome
	hasOutcome bool
	rendered   string
	renderer   *glamour.TermRenderer

	adding bool
	form   addForm

	severityBar progress.Model
	status      string
	quitting    bool
}

// Option configures a Model.
type Option func(*Model)

// WithClock replaces time.Now, used for week buckets and the insight window.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithContext sets the context passed to store and insight calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithChanges makes the dashboard re-read the store whenever a value arrives
// on ch. A nil value means the store was reloaded; an error is shown in the
// status line.
func WithChanges(ch <-chan error) Option {
	return func(m *Model) {
		m.changes = ch
	}
}

// NewModel creates a dashboard over store. A nil insighter disables `g`.
func NewModel(store Store, insighter Insighter, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = labelStyle

	m := Model{
		ctx:         context.Background(),
		store:       store,
		insighter:   insighter,
		now:         time.Now,
		logger:      logging.NewNop(),
		spinner:     sp,
		severityBar: newSeverityBar(),
		width:       defaultWrap,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.logger = m.logger.Named("dashboard")
	m.renderer = newRenderer(m.width)
	m.state = store.Snapshot()
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	if width <= 0 || width > defaultWrap {
		width = defaultWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// Run starts the dashboard in the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	m.ctx = ctx
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Message types
type (
	insightMsg insight.Outcome

	changeMsg struct {
		err    error
		closed bool
	}
)

// Init starts listening for outside changes, if any were wired.
func (m Model) Init() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		return changeMsg{err: err, closed: !ok}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.renderer = newRenderer(msg.Width - 8)
		if m.hasOutcome {
			m.rendered = m.renderInsight(m.outcome)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case changeMsg:
		if msg.closed {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn(m.ctx, "reload failed", zap.Error(msg.err))
			m.status = "reload failed: " + msg.err.Error()
		} else {
			m.state = m.store.Snapshot()
			m.cursor = clamp(m.cursor, m.listLen())
			m.status = "journal changed on disk, reloaded"
		}
		return m, waitForChange(m.changes)

	case insightMsg:
		out := insight.Outcome(msg)
		m.pending = false
		m.outcome = out
		m.hasOutcome = true
		m.rendered = m.renderInsight(out)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.handleFormKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m.switchView((m.view + 1) % viewCount), nil
	case "shift+tab":
		return m.switchView((m.view + viewCount - 1) % viewCount), nil
	case "1", "2", "3", "4":
		return m.switchView(View(msg.String()[0] - '1')), nil
	case "r":
		m.state = m.store.Snapshot()
		m.cursor = clamp(m.cursor, m.listLen())
		m.status = ""
		return m, nil
	case "j", "down":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "d":
		return m.deleteSelected(), nil
	case "a":
		return m.openForm()
	case "g":
		return m.requestInsight()
	}
	return m, nil
}

func (m Model) switchView(v View) Model {
	if v != m.view {
		m.view = v
		m.cursor = 0
	}
	return m
}

// requestInsight starts at most one outstanding request.
func (m Model) requestInsight() (tea.Model, tea.Cmd) {
	if m.pending || m.insighter == nil {
		return m, nil
	}
	m.pending = true

	ctx, ins := m.ctx, m.insighter
	state, now := m.store.Snapshot(), m.now()
	fetch := func() tea.Msg {
		return insightMsg(ins.Generate(ctx, state, now))
	}
	return m, tea.Batch(m.spinner.Tick, fetch)
}

func (m Model) deleteSelected() Model {
	kind, ok := m.view.kind()
	if !ok {
		return m
	}
	id, ok := m.selectedID()
	if !ok {
		return m
	}

	removed, err := m.store.Delete(m.ctx, kind, id)
	m.state = m.store.Snapshot()
	m.cursor = clamp(m.cursor, m.listLen())

	switch {
	case err != nil:
		m.logger.Warn(m.ctx, "delete not persisted", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
		m.status = ""
	case removed:
		m.status = fmt.Sprintf("deleted %s", kind)
	}
	return m
}

// selectedID returns the ID under the cursor in the current list view.
func (m Model) selectedID() (string, bool) {
	i := m.cursor
	switch m.view {
	case ViewReflections:
		items := journal.NewestFirst(m.state.Reflections)
		if i < len(items) {
			return items[i].ID, true
		}
	case ViewTriggers:
		items := journal.NewestFirst(m.state.Triggers)
		if i < len(items) {
			return items[i].ID, true
		}
	case ViewAccomplishments:
		items := journal.NewestFirst(m.state.Accomplishments)
		if i < len(items) {
			return items[i].ID, true
		}
	}
	return "", false
}

func (m Model) listLen() int {
	kind, ok := m.view.kind()
	if !ok {
		return 0
	}
	return m.state.Len(kind)
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// renderInsight renders generated text as markdown. Fixed messages and
// renderer failures fall back to the plain text.
func (m Model) renderInsight(out insight.Outcome) string {
	if !out.Generated() || m.renderer == nil {
		return out.Text
	}
	s, err := m.renderer.Render(out.Text)
	if err != nil {
		m.logger.Debug(m.ctx, "markdown render failed", zap.Error(err))
		return out.Text
	}
	return s
}
