package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"duet-cli/internal/format"
	"duet-cli/internal/model"
	"duet-cli/internal/mutate"
	"duet-cli/internal/remote"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task board (pendiente / progreso / hecha)",
	}

	var watch bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in creation order, with board progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				load := func(ctx context.Context) ([]model.Task, error) {
					return svc.ListTasks(ctx, p.ID)
				}
				if watch {
					return watchList(ctx, cmd, app, svc, remote.TableTasks, load)
				}
				tasks, err := load(ctx)
				if err != nil {
					return err
				}
				done, total := 0, 0
				for _, t := range tasks {
					total++
					if t.Completed {
						done++
					}
				}
				return writeOut(cmd, app, map[string]any{
					"tasks":    tasks,
					"progress": format.Progress(done, total),
				})
			})
		},
	}
	listCmd.Flags().BoolVar(&watch, "watch", false, "Keep printing on every remote change")

	addCmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Create a task in the pendiente column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.CreateTask{
					Description: strings.Join(args, " "),
				}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"created": true})
			})
		},
	}

	mvCmd := &cobra.Command{
		Use:   "mv <task-id> <pendiente|progreso|hecha>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.MoveTask{
					ID: args[0], Status: model.TaskStatus(args[1]),
				}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"moved": true})
			})
		},
	}

	doneCmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleTask(cmd, app, args[0], true)
		},
	}
	undoneCmd := &cobra.Command{
		Use:   "undone <task-id>",
		Short: "Clear a task's completed mark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleTask(cmd, app, args[0], false)
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := app.dispatch(ctx, svc, p, mutate.DeleteTask{ID: args[0]}); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"deleted": true})
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, mvCmd, doneCmd, undoneCmd, rmCmd)
	return cmd
}

func toggleTask(cmd *cobra.Command, app *App, id string, completed bool) error {
	return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
		if err := app.dispatch(ctx, svc, p, mutate.ToggleTask{ID: id, Completed: completed}); err != nil {
			return err
		}
		return writeOut(cmd, app, map[string]any{"completed": completed})
	})
}
