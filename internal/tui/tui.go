// Package tui is the interactive terminal surface: the task board, the event
// list, and the shared notes, all rendered from server-derived projections.
// Key presses that change data fire a single remote write; the screen only
// advances when the reload triggered by the change feed lands.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

// Run starts the interactive session for an already-authenticated principal
// and blocks until the user quits or ctx is cancelled. Cancelling ctx also
// tears down the change-feed subscriptions.
func Run(ctx context.Context, svc remote.Service, principal model.Principal, log *zap.Logger) error {
	p := tea.NewProgram(
		newAppModel(ctx, svc, principal, log),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
