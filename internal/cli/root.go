// Package cli is the scriptable surface: one cobra subcommand per entity,
// JSON on stdout, errors on stderr. Running `duet` with no subcommand opens
// the interactive TUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"duet-cli/internal/config"
	"duet-cli/internal/logging"
	"duet-cli/internal/model"
	"duet-cli/internal/mutate"
	"duet-cli/internal/remote"
	"duet-cli/internal/remote/local"
	"duet-cli/internal/remote/rest"
	"duet-cli/internal/session"
	"duet-cli/internal/tui"
)

type App struct {
	Dir        string
	Local      bool
	Debug      bool
	PrettyJSON bool

	// Injected in tests; nil means "build from config".
	Service remote.Service

	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "duet",
		Short:        "Shared calendar, tasks and notes for two",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI (board, events, notes)
  duet

  # Scriptable commands
  duet tasks list
  duet events add --title "Cena" --date 2025-12-24T20:00 --category cita

  # Watch a list live
  duet notes list --watch
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("DUET_DIR", ""), "Config directory (default: XDG config dir)")
	cmd.PersistentFlags().BoolVar(&app.Local, "local", false, "Solo mode: run against the local database, no server")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Verbose logging to the log file")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// service builds the remote backend from config (or returns the injected
// test double). The returned cleanup is safe to call multiple times.
func (app *App) service(ctx context.Context) (remote.Service, func(), error) {
	if app.Service != nil {
		return app.Service, func() {}, nil
	}

	cfg, err := config.Load(app.Dir)
	if err != nil {
		return nil, nil, err
	}
	app.log = logging.Open(cfg.LogPath(), cfg.Debug || app.Debug)

	if app.Local || cfg.Local {
		svc, err := local.Open(ctx, cfg.LocalDBPath(), app.log)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() { _ = svc.Close() }, nil
	}

	if cfg.ServiceURL == "" || cfg.AnonKey == "" {
		return nil, nil, errors.New("no service configured; run `duet init --url <url> --key <anon-key>` (or `duet init --local`)")
	}
	svc := rest.New(cfg.ServiceURL, cfg.AnonKey, cfg.SessionPath(), app.log)
	return svc, func() {}, nil
}

// principal resolves the signed-in identity through the session guard.
func (app *App) principal(ctx context.Context, svc remote.Service) (model.Principal, error) {
	return session.NewGuard(svc).Require(ctx)
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	svc, cleanup, err := app.service(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer cleanup()

	p, err := app.principal(ctx, svc)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(ctx, svc, p, app.log)
}

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board (same as running `duet` bare)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

// authed runs fn with a connected backend and a signed-in principal, and
// routes any error through stderr. Every data subcommand goes through here.
func (app *App) authed(cmd *cobra.Command, fn func(ctx context.Context, svc remote.Service, p model.Principal) error) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	svc, cleanup, err := app.service(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer cleanup()

	p, err := app.principal(ctx, svc)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := fn(ctx, svc, p); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

// dispatch routes one mutation through the shared dispatcher.
func (app *App) dispatch(ctx context.Context, svc remote.Service, p model.Principal, c mutate.Command) error {
	return mutate.NewDispatcher(svc, app.log).Do(ctx, p, c)
}

// signalContext makes Ctrl-C end watch loops and the TUI cleanly, which also
// tears down any open change-feed subscriptions.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
