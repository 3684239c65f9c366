package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/readmegen/cmd/readmegen/commands"
	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	global := commands.NewGlobal(ctx)

	var cli commands.CLI
	kctx := kong.Parse(&cli, commands.KongOptions(global, version.String())...)

	err := kctx.Run(&cli)
	stop()
	if err != nil {
		os.Exit(ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).Report(err))
	}
}
