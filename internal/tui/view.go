package tui

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/readmegen/internal/presenter"
	"git.home.luguber.info/inful/readmegen/internal/session"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	switch m.snap.Phase {
	case session.Succeeded:
		b.WriteString(m.resultView())
	default:
		b.WriteString(m.formView())
	}
	return b.String()
}

func (m Model) headerView() string {
	return titleStyle.Render(m.loc.T("ui.title")) + "\n" + subtitleStyle.Render(m.loc.T("ui.subtitle"))
}

func (m Model) formView() string {
	var form strings.Builder
	form.WriteString(labelStyle.Render(m.loc.T("ui.label")))
	form.WriteString("\n")
	form.WriteString(m.input.View())
	form.WriteString("\n")
	if m.formErr != "" {
		form.WriteString(formErrorStyle.Render(m.formErr))
		form.WriteString("\n")
	}
	form.WriteString("\n")

	var help string
	switch m.snap.Phase {
	case session.InFlight:
		label := m.loc.T("ui.generating", m.snap.ElapsedSeconds)
		form.WriteString(disabledButtonStyle.Render(m.spin.View() + " " + label))
		help = m.loc.T("ui.help_busy")
	case session.Failed:
		form.WriteString(buttonStyle.Render(m.loc.T("ui.submit")))
		help = m.loc.T("ui.help_failed")
	default:
		form.WriteString(buttonStyle.Render(m.loc.T("ui.submit")))
		help = m.loc.T("ui.help_form")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(formBoxStyle.Render(form.String()))
	b.WriteString("\n")
	if m.snap.Phase == session.Failed && m.snap.ErrorMessage != "" {
		b.WriteString(failureBoxStyle.Render(m.snap.ErrorMessage))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m Model) resultView() string {
	var b strings.Builder

	title := m.loc.T("ui.result")
	if m.snap.Duration > 0 {
		title = m.loc.T("ui.result_timed", m.snap.Elapsed())
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString(" ")
	b.WriteString(m.copyButton())
	b.WriteString(" ")
	b.WriteString(actionStyle.Render(m.loc.T("export.label")))
	b.WriteString(" ")
	b.WriteString(actionStyle.Render(m.loc.T("ui.new")))
	b.WriteString("\n")

	visible := m.visibleRows()
	end := min(m.offset+visible, len(m.lines))
	for i := m.offset; i < end; i++ {
		b.WriteString("  ")
		b.WriteString(m.lines[i])
		b.WriteString("\n")
	}
	for i := end - m.offset; i < visible; i++ {
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString(dimStyle.Render(m.notice))
	} else if len(m.lines) > visible {
		pct := 100
		if maxOffset := len(m.lines) - visible; maxOffset > 0 {
			pct = m.offset * 100 / maxOffset
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s %d%%", m.loc.T("ui.preview"), pct)))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.loc.T("ui.help_result")))
	return b.String()
}

func (m Model) copyButton() string {
	label := m.pres.CopyLabel()
	switch m.pres.CopyStatus() {
	case presenter.CopySuccess:
		return copySuccessStyle.Render(label)
	case presenter.CopyError:
		return copyErrorStyle.Render(label)
	default:
		return actionStyle.Render(label)
	}
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
