package cli

import (
	"context"

	"github.com/spf13/cobra"

	"duet-cli/internal/format"
	"duet-cli/internal/remote"
	"duet-cli/internal/sync"
)

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"data": v}, app.PrettyJSON)
}

// watchList prints the projection once, then again after every change signal,
// until the context is cancelled (Ctrl-C). Each frame is a full JSON document
// on its own lines; consumers are expected to stream-parse.
func watchList[T any](ctx context.Context, cmd *cobra.Command, app *App, svc remote.Service, table remote.Table, load sync.LoadFunc[T]) error {
	changes, err := svc.Subscribe(ctx, table)
	if err != nil {
		return err
	}
	s := sync.New(load, app.log)
	s.Watch(ctx, changes, func(rows []T) {
		_ = writeOut(cmd, app, rows)
	})
	return nil
}
