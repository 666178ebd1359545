package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

const formInputWidth = 50

type formField struct {
	label string
	input textinput.Model
}

// addForm collects the fields of one new record.
type addForm struct {
	kind   journal.Kind
	fields []formField
	focus  int
	err    error
}

func newField(label, placeholder, value string, limit int) formField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = formInputWidth
	in.Prompt = "  "
	in.SetValue(value)
	return formField{label: label, input: in}
}

func newAddForm(kind journal.Kind) addForm {
	f := addForm{kind: kind}
	switch kind {
	case journal.KindReflection:
		f.fields = []formField{
			newField("Reflection", "what did you notice about how you led?", "", 500),
			newField("Category", "progress, communication or stress", journal.CategoryProgress.Short(), 32),
		}
	case journal.KindTrigger:
		f.fields = []formField{
			newField("What happened", "the event that set you off", "", 300),
			newField("Intensity", fmt.Sprintf("%d-%d", journal.MinIntensity, journal.MaxIntensity), strconv.Itoa(journal.DefaultIntensity), 2),
			newField("Notes", "how you responded (optional)", "", 500),
		}
	case journal.KindAccomplishment:
		f.fields = []formField{
			newField("Title", "what you shipped or unblocked", "", 200),
			newField("Details", "optional", "", 500),
		}
	}
	f.fields[0].input.Focus()
	return f
}

func (f addForm) values() []string {
	out := make([]string, len(f.fields))
	for i, fld := range f.fields {
		out[i] = fld.input.Value()
	}
	return out
}

func (f addForm) focusOn(i int) addForm {
	f.fields = slices.Clone(f.fields)
	f.fields[f.focus].input.Blur()
	f.focus = (i + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
	return f
}

func (f addForm) update(msg tea.Msg) (addForm, tea.Cmd) {
	f.fields = slices.Clone(f.fields)
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

// openForm starts an add form for the record kind of the current tab.
func (m Model) openForm() (tea.Model, tea.Cmd) {
	kind, ok := m.view.kind()
	if !ok {
		return m, nil
	}
	m.form = newAddForm(kind)
	m.adding = true
	m.status = ""
	return m, textinput.Blink
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.adding = false
		m.status = "add cancelled"
		return m, nil
	case "tab", "down":
		m.form = m.form.focusOn(m.form.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.form = m.form.focusOn(m.form.focus - 1)
		return m, nil
	case "enter":
		if m.form.focus < len(m.form.fields)-1 {
			m.form = m.form.focusOn(m.form.focus + 1)
			return m, nil
		}
		return m.submitForm(), nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// submitForm adds the record. Invalid input keeps the form open with the
// error; a failed save still adds the record in memory.
func (m Model) submitForm() Model {
	kind := m.form.kind
	err := m.addRecord(kind, m.form.values())
	if err != nil && !errors.Is(err, journal.ErrPersist) {
		m.form.err = err
		return m
	}
	if err != nil {
		m.logger.Warn(m.ctx, "add not persisted", zap.String("kind", string(kind)), zap.Error(err))
	}

	m.adding = false
	m.state = m.store.Snapshot()
	m.cursor = 0
	m.status = fmt.Sprintf("added %s", kind)
	return m
}

func (m Model) addRecord(kind journal.Kind, v []string) error {
	now := m.now()
	switch kind {
	case journal.KindReflection:
		category, err := journal.ParseCategory(v[1])
		if err != nil {
			return err
		}
		r, err := journal.NewReflection(v[0], category, now)
		if err != nil {
			return err
		}
		return m.store.AddReflection(m.ctx, r)
	case journal.KindTrigger:
		intensity, err := strconv.Atoi(strings.TrimSpace(v[1]))
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", journal.ErrIntensityRange, v[1])
		}
		t, err := journal.NewTrigger(v[0], v[2], intensity, now)
		if err != nil {
			return err
		}
		return m.store.AddTrigger(m.ctx, t)
	case journal.KindAccomplishment:
		a, err := journal.NewAccomplishment(v[0], v[1], now)
		if err != nil {
			return err
		}
		return m.store.AddAccomplishment(m.ctx, a)
	default:
		return fmt.Errorf("%w: %s", journal.ErrUnknownKind, kind)
	}
}

func (m Model) renderForm() string {
	title := map[journal.Kind]string{
		journal.KindReflection:     "New Reflection",
		journal.KindTrigger:        "New Trigger",
		journal.KindAccomplishment: "New Accomplishment",
	}[m.form.kind]

	content := "\n" + sectionStyle.Render("┃ "+title) + "\n"
	for i, f := range m.form.fields {
		label := labelStyle.Render(f.label)
		if i == m.form.focus {
			label = selectedStyle.Render("▶ " + f.label)
		} else {
			label = "  " + label
		}
		content += label + "\n" + f.input.View() + "\n"
	}
	if m.form.err != nil {
		content += "\n" + errorStyle.Render("  "+m.form.err.Error()) + "\n"
	}
	return content
}
