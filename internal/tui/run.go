package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

// Run shows the interface on the alternate screen until the user quits or
// ctx is canceled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if err != nil && ctx.Err() == nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "terminal UI failed").Build()
	}
	return nil
}
