package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"duet-cli/internal/config"
)

func newInitCmd(app *App) *cobra.Command {
	var (
		url   string
		key   string
		local bool
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the client configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !local && (url == "" || key == "") {
				return writeErr(cmd, errors.New("either --local or both --url and --key are required"))
			}
			cfg, err := config.Load(app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			if url != "" {
				cfg.ServiceURL = url
			}
			if key != "" {
				cfg.AnonKey = key
			}
			cfg.Local = local
			cfg.Debug = debug
			if err := cfg.Save(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"config_dir": cfg.Dir, "local": cfg.Local})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Remote data service base URL")
	cmd.Flags().StringVar(&key, "key", "", "Service anon key")
	cmd.Flags().BoolVar(&local, "local", false, "Solo mode: keep everything in a local database")
	cmd.Flags().BoolVar(&debug, "debug", false, "Persist verbose logging")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var (
		email    string
		password string
		signup   bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in (or sign up with --signup) and cache the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(email) == "" || password == "" {
				return writeErr(cmd, errors.New("--email and --password are required"))
			}
			svc, cleanup, err := app.service(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()

			auth := svc.SignIn
			if signup {
				auth = svc.SignUp
			}
			p, err := auth(ctx, strings.TrimSpace(email), password)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, p)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&signup, "signup", false, "Create the account first")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := app.service(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			if err := svc.SignOut(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"signed_out": true})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := app.service(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			p, err := app.principal(ctx, svc)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, p)
		},
	}
}
