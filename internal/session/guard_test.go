package session

import (
	"context"
	"errors"
	"testing"

	"duet-cli/internal/remote/remotetest"
)

func TestRequireWithoutSession(t *testing.T) {
	g := NewGuard(remotetest.NewFakeService())
	if _, err := g.Require(context.Background()); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("err=%v, want ErrAuthRequired", err)
	}
}

func TestRequireWithSession(t *testing.T) {
	fake := remotetest.NewFakeService()
	p := fake.SignInAs("alice")
	g := NewGuard(fake)

	// Idempotent: repeated calls keep returning the principal.
	for i := 0; i < 3; i++ {
		got, err := g.Require(context.Background())
		if err != nil {
			t.Fatalf("Require: %v", err)
		}
		if got.ID != p.ID {
			t.Fatalf("principal=%+v, want %+v", got, p)
		}
	}
}
