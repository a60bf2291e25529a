package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"duet-cli/internal/model"
	"duet-cli/internal/mutate"
	"duet-cli/internal/remote"
)

// noteMaxLen mirrors the input limit of the interactive surface.
const noteMaxLen = 200

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Shared notes, visible to both partners",
	}

	var watch bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				load := func(ctx context.Context) ([]model.Note, error) {
					return svc.ListNotes(ctx, p.ID)
				}
				if watch {
					return watchList(ctx, cmd, app, svc, remote.TableNotes, load)
				}
				notes, err := load(ctx)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, notes)
			})
		},
	}
	listCmd.Flags().BoolVar(&watch, "watch", false, "Keep printing on every remote change")

	var color string
	addCmd := &cobra.Command{
		Use:   "add <message>",
		Short: "Leave a note for the two of you",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := strings.Join(args, " ")
			if n := len([]rune(msg)); n > noteMaxLen {
				return writeErr(cmd, fmt.Errorf("note is %d characters, max %d", n, noteMaxLen))
			}
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.CreateNote{Message: msg, Color: color}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"created": true})
			})
		},
	}
	addCmd.Flags().StringVar(&color, "color", "", "Card color (hex or name)")

	rmCmd := &cobra.Command{
		Use:   "rm <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.DeleteNote{ID: args[0]}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"deleted": true})
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, rmCmd)
	return cmd
}
