package main

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/identitystore/internal/flagx"
	"github.com/dmitrijs2005/identitystore/internal/server"
	"github.com/dmitrijs2005/identitystore/internal/server/cli"
	"github.com/dmitrijs2005/identitystore/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	args := flagx.Positional(os.Args[1:], config.ValueFlags)

	app := server.NewApp(cfg)

	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, cli.ErrUsage) || errors.Is(err, cli.ErrUnknownCommand) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
