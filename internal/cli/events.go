package cli

import (
	"context"

	"github.com/spf13/cobra"

	"duet-cli/internal/model"
	"duet-cli/internal/mutate"
	"duet-cli/internal/remote"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Shared calendar events",
	}

	var watch bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events in date order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				load := func(ctx context.Context) ([]model.Event, error) {
					return svc.ListEvents(ctx, p.ID)
				}
				if watch {
					return watchList(ctx, cmd, app, svc, remote.TableEvents, load)
				}
				events, err := load(ctx)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, events)
			})
		},
	}
	listCmd.Flags().BoolVar(&watch, "watch", false, "Keep printing on every remote change")

	var (
		title    string
		date     string
		category string
		desc     string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.CreateEvent{
					Title: title, Date: date, Category: category, Description: desc,
				}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"created": true})
			})
		},
	}
	addCmd.Flags().StringVar(&title, "title", "", "Event title (required)")
	addCmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD or RFC 3339 (required)")
	addCmd.Flags().StringVar(&category, "category", "", "cita|aniversario|viaje|pago|...")
	addCmd.Flags().StringVar(&desc, "desc", "", "Longer description")

	var newTitle string
	retitleCmd := &cobra.Command{
		Use:   "retitle <event-id>",
		Short: "Change an event's title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.RetitleEvent{ID: args[0], Title: newTitle}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"updated": true})
			})
		},
	}
	retitleCmd.Flags().StringVar(&newTitle, "title", "", "New title (required)")

	rmCmd := &cobra.Command{
		Use:   "rm <event-id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.DeleteEvent{ID: args[0]}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"deleted": true})
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, retitleCmd, rmCmd)
	return cmd
}
