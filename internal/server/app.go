// Package server wires configuration, storage and services into the
// identity management application and runs one command against them.
package server

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/identitystore/internal/cryptox"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/server/authz"
	"github.com/dmitrijs2005/identitystore/internal/server/cli"
	"github.com/dmitrijs2005/identitystore/internal/server/config"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/identitystore/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	commands *cli.Commands
}

// openDB is a seam for tests.
var openDB = repomanager.Open

// NewApp prepares the command set. The database is opened by Run, and only
// for commands that use it.
func NewApp(c *config.Config) *App {
	logger := logging.New(os.Stderr, c.LogFormat, c.LogLevel)

	commands := cli.NewCommands(logger, os.Stdin, os.Stdout)
	commands.Perms = authz.NewRoleAuthorizer(nil, c.RolePermissions)

	return &App{config: c, logger: logger, commands: commands}
}

// connect opens the database and binds the services to it.
func (app *App) connect(ctx context.Context) error {
	db, err := openDB(ctx, app.config.DatabaseDSN)
	if err != nil {
		return err
	}
	app.db = db

	c := app.config
	rm := repomanager.NewPostgresRepositoryManager()
	passwords := cryptox.NewPasswords(c.Argon2Params())

	us := services.NewUserService(db, rm, passwords, app.logger)
	roleAuthz := authz.NewRoleAuthorizer(us, c.RolePermissions)

	commands := app.commands
	commands.Migrate = func(ctx context.Context) error { return rm.RunMigrations(ctx, db) }
	commands.Users = us
	commands.Tokens = services.NewTokenService(db, rm, c.SecretKey, app.logger)
	commands.Groups = services.NewGroupService(db, rm, app.logger)
	commands.Roles = services.NewRoleService(db, rm, app.logger)
	commands.Authz = newAuthorizer(c, roleAuthz)
	commands.Perms = roleAuthz
	commands.Avatars = services.NewAvatarService(db, rm, c, app.logger)
	return nil
}

func newAuthorizer(c *config.Config, byRole *authz.RoleAuthorizer) authz.Authorizer {
	if c.AuthzMode == config.AuthzBlanket {
		return authz.BlanketAuthorizer{}
	}
	return byRole
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run executes the command in args, opening the database first when the
// command needs it, and closes the database afterwards.
func (app *App) Run(ctx context.Context, args []string) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(ctx, cancelFunc)

	if cli.NeedsStore(args) {
		if err := app.connect(ctx); err != nil {
			app.logger.Error(ctx, "database unavailable", "error", err)
			return err
		}
		defer func() {
			if err := app.db.Close(); err != nil {
				app.logger.Warn(ctx, "db close error", "error", err)
			}
		}()
	}

	app.logger.Debug(ctx, "running command", "args", args)

	if err := app.commands.Run(ctx, args); err != nil {
		app.logger.Error(ctx, "command failed", "error", err)
		return err
	}
	return nil
}
