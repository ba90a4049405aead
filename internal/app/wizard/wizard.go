// Package wizard is the interactive character builder. It walks the ten
// creation steps as one cursor-driven screen per step, applies every change
// through the step validators, and schedules a debounced save after each
// accepted edit.
package wizard

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
	"github.com/louisbranch/morphsheet/internal/export/html"
	"github.com/louisbranch/morphsheet/internal/export/pdf"
	"github.com/louisbranch/morphsheet/internal/export/text"
	"github.com/louisbranch/morphsheet/internal/platform/errors/usermsg"
	"github.com/louisbranch/morphsheet/internal/sheet"
	"github.com/louisbranch/morphsheet/internal/storage"
)

// Options wires a wizard session to the rest of the application. Saver and
// Exporter may be nil, which disables autosave and PDF export.
type Options struct {
	Character *character.Character
	Rules     *rulebook.Rulebook
	Saver     *storage.Autosaver
	Exporter  *pdf.Exporter
	OutDir    string
	Degraded  bool
}

// Run drives the builder until the user quits. Pending edits are flushed to
// the store before it returns.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- Styles ---

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	sectionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type model struct {
	ctx      context.Context
	char     *character.Character
	rules    *rulebook.Rulebook
	saver    *storage.Autosaver
	exporter *pdf.Exporter
	outDir   string

	step      int
	cursor    int
	editing   bool
	input     textinput.Model
	status    string
	exporting bool

	saveErrs <-chan error
}

func newModel(ctx context.Context, opts Options) model {
	ti := textinput.New()
	ti.Width = 40
	ti.Focus()

	m := model{
		ctx:      ctx,
		char:     opts.Character,
		rules:    opts.Rules,
		saver:    opts.Saver,
		exporter: opts.Exporter,
		outDir:   opts.OutDir,
		step:     character.StepIdentityNum,
		input:    ti,
	}
	if opts.Saver != nil {
		m.saveErrs = opts.Saver.Errs()
	}
	if opts.Degraded {
		m.status = "The last save could not be read. Starting from a fresh sheet."
	}
	return m
}

type saveFailedMsg struct{ err error }

type exportDoneMsg struct {
	path string
	err  error
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, watchSaveErrors(m.saveErrs))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateStep(msg)
	case saveFailedMsg:
		m.status = usermsg.Format(msg.err)
		return m, watchSaveErrors(m.saveErrs)
	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.status = usermsg.Format(msg.err)
			return m, nil
		}
		m.status = "Wrote " + msg.path
		return m, nil
	}
	return m, nil
}

func (m model) updateStep(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	if len(rows) > 0 && m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "tab":
		return m.gotoStep(1), nil
	case "shift+tab":
		return m.gotoStep(-1), nil
	case "up", "k":
		if len(rows) > 0 {
			m.cursor = wrapIndex(m.cursor, -1, len(rows))
		}
		return m, nil
	case "down", "j":
		if len(rows) > 0 {
			m.cursor = wrapIndex(m.cursor, 1, len(rows))
		}
		return m, nil
	case "left":
		return m.adjustRow(rows, -1)
	case "right":
		return m.adjustRow(rows, 1)
	case " ":
		if m.cursor < len(rows) && rows[m.cursor].toggle != nil {
			return m.applyRow(rows[m.cursor].toggle())
		}
		return m, nil
	case "enter":
		if m.cursor >= len(rows) {
			return m, nil
		}
		r := rows[m.cursor]
		switch {
		case r.edit != nil:
			return m.startEditing(r)
		case r.toggle != nil:
			return m.applyRow(r.toggle())
		case r.adjust != nil:
			return m.applyRow(r.adjust(1))
		}
		return m, nil
	case "e":
		return m.startPDFExport()
	case "h":
		return m.exportHTML()
	case "c":
		return m.copySheet()
	}
	return m, nil
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		m.editing = false
		rows := m.rows()
		if m.cursor >= len(rows) || rows[m.cursor].edit == nil {
			return m, nil
		}
		return m.applyRow(rows[m.cursor].edit.commit(strings.TrimSpace(m.input.Value())))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) startEditing(r row) (tea.Model, tea.Cmd) {
	m.editing = true
	m.status = ""
	m.input.Prompt = r.label + ": "
	m.input.CharLimit = r.edit.limit
	m.input.SetValue(r.edit.initial)
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m model) gotoStep(delta int) model {
	m.step = 1 + wrapIndex(m.step-1, delta, character.StepCount)
	m.cursor = 0
	m.status = ""
	return m
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.saver != nil {
		m.saver.Flush()
	}
	return m, tea.Quit
}

func (m model) adjustRow(rows []row, delta int) (tea.Model, tea.Cmd) {
	if m.cursor >= len(rows) || rows[m.cursor].adjust == nil {
		return m, nil
	}
	return m.applyRow(rows[m.cursor].adjust(delta))
}

// applyRow validates and applies one step submission, then schedules an
// autosave. Rows return nil at the edge of their range, which is a no-op.
func (m model) applyRow(in *character.StepInput) (tea.Model, tea.Cmd) {
	if in == nil {
		return m, nil
	}
	if err := in.Apply(m.char, m.rules); err != nil {
		m.status = usermsg.Format(err)
		return m, nil
	}
	m.char.Touch()
	m.status = ""
	return m.scheduleSave(), nil
}

func (m model) scheduleSave() model {
	if m.saver == nil {
		return m
	}
	snap, err := storage.SnapshotOf(m.char)
	if err != nil {
		m.status = usermsg.Format(err)
		return m
	}
	m.saver.Schedule(snap)
	return m
}

func (m model) startPDFExport() (tea.Model, tea.Cmd) {
	if m.exporter == nil {
		m.status = "PDF export is not configured."
		return m, nil
	}
	if m.exporting {
		m.status = "An export is already running. Wait for it to finish."
		return m, nil
	}
	m.exporting = true
	m.status = "Exporting PDF..."
	return m, exportPDFCmd(m.ctx, m.exporter, sheet.Build(m.char, m.rules))
}

func (m model) exportHTML() (tea.Model, tea.Cmd) {
	path, err := html.Export(sheet.Build(m.char, m.rules), m.outDir)
	if err != nil {
		m.status = usermsg.Format(err)
		return m, nil
	}
	m.status = "Wrote " + path
	return m, nil
}

func (m model) copySheet() (tea.Model, tea.Cmd) {
	if err := text.Copy(sheet.Build(m.char, m.rules)); err != nil {
		m.status = usermsg.Format(err)
		return m, nil
	}
	m.status = "Copied the sheet to the clipboard."
	return m, nil
}

func exportPDFCmd(ctx context.Context, exporter *pdf.Exporter, s sheet.Sheet) tea.Cmd {
	return func() tea.Msg {
		path, err := exporter.Export(ctx, s)
		return exportDoneMsg{path: path, err: err}
	}
}

// watchSaveErrors delivers the next autosave failure as a message. The
// handler re-arms it, so every failure reaches the status line.
func watchSaveErrors(errs <-chan error) tea.Cmd {
	if errs == nil {
		return nil
	}
	return func() tea.Msg {
		if err, ok := <-errs; ok {
			return saveFailedMsg{err: err}
		}
		return nil
	}
}

func wrapIndex(current, delta, size int) int {
	next := current + delta
	for next < 0 {
		next += size
	}
	return next % size
}

// cycleKey steps through keys from the current selection, wrapping at both
// ends. An unknown current key lands on the first or last entry depending on
// direction.
func cycleKey(keys []string, current string, delta int) string {
	if len(keys) == 0 {
		return current
	}
	idx := -1
	for i, k := range keys {
		if k == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta < 0 {
			return keys[len(keys)-1]
		}
		return keys[0]
	}
	return keys[wrapIndex(idx, delta, len(keys))]
}

func textOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func clip(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}
