package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"duet-cli/internal/docs"
	"duet-cli/internal/export"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show the built-in guides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"topics": docs.Index()})
			}

			body, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic: %q (run `duet docs` to list topics)", args[0]))
			}
			if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), export.RenderTerminal(body, width, exportDarkStyle("")))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain markdown")
	return cmd
}
