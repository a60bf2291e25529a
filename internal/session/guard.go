// Package session gates every authenticated surface: no principal, no view.
package session

import (
	"context"
	"errors"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

// ErrAuthRequired means there is no signed-in principal. The CLI resolves it
// to a "run `duet login`" message; nothing renders past it.
var ErrAuthRequired = errors.New("not signed in (run `duet login`)")

type Guard struct {
	svc remote.Service
}

func NewGuard(svc remote.Service) *Guard {
	return &Guard{svc: svc}
}

// Require returns the current principal or ErrAuthRequired. Safe to call any
// number of times per invocation; it has no side effects of its own.
func (g *Guard) Require(ctx context.Context) (model.Principal, error) {
	p, err := g.svc.CurrentPrincipal(ctx)
	if err != nil {
		if errors.Is(err, remote.ErrNoSession) {
			return model.Principal{}, ErrAuthRequired
		}
		return model.Principal{}, err
	}
	return p, nil
}
