package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"duet-cli/internal/export"
	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		outPath string
		raw     bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the relationship summary document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				data, err := export.Collect(ctx, svc, p, time.Now())
				if err != nil {
					return err
				}
				md := export.Markdown(data)

				if outPath != "" {
					if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
						return err
					}
					return writeOut(cmd, app, map[string]any{"written": outPath})
				}
				if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
					_, err := fmt.Fprint(cmd.OutOrStdout(), md)
					return err
				}
				width := 80
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
					width = w
				}
				dark := exportDarkStyle(data.Profile.PrefTheme)
				_, err = fmt.Fprint(cmd.OutOrStdout(), export.RenderTerminal(md, width, dark))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write markdown to a file instead of the terminal")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain markdown even on a terminal")
	return cmd
}

// exportDarkStyle follows the saved theme preference, falling back to the
// terminal's background.
func exportDarkStyle(pref string) bool {
	switch strings.ToLower(strings.TrimSpace(pref)) {
	case "dark":
		return true
	case "light":
		return false
	}
	return termenv.HasDarkBackground()
}
