package commands

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/githuburl"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	URL string `arg:"" name:"url" help:"Candidate repository URL"`
}

// Run prints the normalized URL, or fails with the localized reason.
func (v *ValidateCmd) Run(global *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	outcome := githuburl.Validate(v.URL)
	if !outcome.Valid {
		loc := i18n.New(cfg.UI.Language)
		return ferrors.ValidationError(loc.T("validation."+string(outcome.Reason))).
			WithContext("reason", string(outcome.Reason)).
			Build()
	}
	_, err = fmt.Fprintln(global.Stdout, outcome.URL)
	return err
}
