// Package tui is the single-page terminal interface: a URL form, a progress
// line while the service works, and the rendered README with copy and
// download actions.
package tui

import (
	stdErrors "errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
	"git.home.luguber.info/inful/readmegen/internal/presenter"
	"git.home.luguber.info/inful/readmegen/internal/session"
)

// snapshotMsg carries a session snapshot into the update loop.
type snapshotMsg session.Snapshot

// copyStatusMsg signals that the copy label changed.
type copyStatusMsg presenter.CopyStatus

// copyDoneMsg is the result of a copy the user asked for.
type copyDoneMsg presenter.CopyStatus

// exportDoneMsg reports the outcome of a download.
type exportDoneMsg struct {
	path string
	err  error
}

// Model is the bubbletea model. Session and presenter own all state that
// outlives a frame; the model only keeps what the view needs.
type Model struct {
	sess *session.Session
	pres *presenter.Presenter
	loc  *i18n.Localizer

	snapCh <-chan session.Snapshot
	copyCh <-chan presenter.CopyStatusChanged

	input   textinput.Model
	spin    spinner.Model
	formErr string

	snap   session.Snapshot
	lines  []string
	offset int
	notice string

	width  int
	height int
}

// NewModel wires a model to a session and a presenter. The caller owns both
// and closes them after the program exits.
func NewModel(sess *session.Session, pres *presenter.Presenter, loc *i18n.Localizer) Model {
	if loc == nil {
		loc = i18n.New(i18n.BaseLocale)
	}

	in := textinput.New()
	in.Placeholder = loc.T("ui.placeholder")
	in.CharLimit = 300
	in.Width = 60
	in.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(progressStyle),
	)

	snapCh, _ := sess.Subscribe(4)
	copyCh, _ := pres.Subscribe(4)

	return Model{
		sess:   sess,
		pres:   pres,
		loc:    loc,
		snapCh: snapCh,
		copyCh: copyCh,
		input:  in,
		spin:   sp,
		snap:   sess.Snapshot(),
		width:  100,
		height: 30,
	}
}

// WithInput prefills the URL field.
func (m Model) WithInput(url string) Model {
	m.input.SetValue(url)
	m.input.CursorEnd()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitSnapshot(m.snapCh), waitCopyStatus(m.copyCh))
}

func waitSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func waitCopyStatus(ch <-chan presenter.CopyStatusChanged) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return copyStatusMsg(evt.Status)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, min(80, msg.Width-12))
		if m.snap.Phase == session.Succeeded {
			m.renderDocument()
		}
		return m, nil

	case snapshotMsg:
		// Snapshots may arrive out of order; the session holds the truth.
		cmd := m.applySnapshot(m.sess.Snapshot())
		return m, tea.Batch(cmd, waitSnapshot(m.snapCh))

	case copyStatusMsg:
		switch presenter.CopyStatus(msg) {
		case presenter.CopyError:
			m.notice = m.loc.T("copy.failed")
		case presenter.CopyIdle:
			if m.notice == m.loc.T("copy.failed") {
				m.notice = ""
			}
		}
		return m, waitCopyStatus(m.copyCh)

	case copyDoneMsg:
		if presenter.CopyStatus(msg) == presenter.CopyError {
			m.notice = m.loc.T("copy.failed")
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.notice = ferrors.UserMessage(msg.err, m.loc.T("export.failed"))
		} else {
			m.notice = m.loc.T("export.done", msg.path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.snap.Phase != session.InFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.snap.Phase {
		case session.Idle, session.Failed:
			return m.updateForm(msg)
		case session.Succeeded:
			return m.updateResult(msg)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applySnapshot moves the view to the phase in s.
func (m *Model) applySnapshot(s session.Snapshot) tea.Cmd {
	prev := m.snap.Phase
	m.snap = s

	switch s.Phase {
	case session.InFlight:
		m.input.Blur()
		if prev != session.InFlight {
			m.notice = ""
			return m.spin.Tick
		}
	case session.Succeeded:
		if prev != session.Succeeded {
			m.offset = 0
			m.notice = ""
		}
		m.renderDocument()
	case session.Idle:
		if prev != session.Idle {
			m.lines = nil
			m.notice = ""
		}
		return m.input.Focus()
	case session.Failed:
		return m.input.Focus()
	}
	return nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.snap.Phase == session.Failed {
			m.sess.Reset()
			m.snap = m.sess.Snapshot()
			return m, nil
		}
		return m, tea.Quit

	case "enter":
		err := m.sess.Submit(m.input.Value())
		switch {
		case err == nil:
			m.formErr = ""
			m.input.Blur()
			m.snap = m.sess.Snapshot()
			return m, m.spin.Tick
		case stdErrors.Is(err, session.ErrInFlight):
			return m, nil
		default:
			m.formErr = ferrors.UserMessage(err, m.loc.T("validation.malformed"))
			return m, nil
		}
	}

	// Editing the URL clears the form error.
	m.formErr = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "c":
		doc, pres := m.snap.Document, m.pres
		return m, func() tea.Msg {
			return copyDoneMsg(pres.Copy(doc))
		}
	case "d":
		doc, pres := m.snap.Document, m.pres
		return m, func() tea.Msg {
			path, err := pres.Export(doc)
			return exportDoneMsg{path: path, err: err}
		}
	case "n":
		m.sess.Reset()
		m.snap = m.sess.Snapshot()
		m.input.SetValue("")
		m.lines = nil
		m.notice = ""
		return m, m.input.Focus()
	case "up", "k":
		m.scroll(-1)
	case "down", "j":
		m.scroll(1)
	case "pgup", "u":
		m.scroll(-m.visibleRows())
	case "pgdown", " ":
		m.scroll(m.visibleRows())
	case "home", "g":
		m.offset = 0
	case "end", "G":
		m.scroll(len(m.lines))
	}
	return m, nil
}

func (m *Model) renderDocument() {
	rendered := m.pres.Render(m.snap.Document, max(20, m.width-4))
	m.lines = splitLines(rendered)
	m.scroll(0)
}

func (m *Model) scroll(delta int) {
	m.offset += delta
	maxOffset := max(0, len(m.lines)-m.visibleRows())
	m.offset = max(0, min(m.offset, maxOffset))
}

// visibleRows is the document area height: header, title, action bar, notice
// and help take the rest.
func (m Model) visibleRows() int {
	chrome := lipgloss.Height(m.headerView()) + 4
	return max(3, m.height-chrome)
}
