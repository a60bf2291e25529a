package sync

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"duet-cli/internal/remote"
)

func TestLoadAppliesResult(t *testing.T) {
	s := New(func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	}, nil)

	got := s.Load(context.Background())
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("projection=%v, want [a b]", got)
	}
	if !s.Loaded() {
		t.Fatalf("expected Loaded() after successful load")
	}
}

func TestLoadFailureKeepsPreviousProjection(t *testing.T) {
	fail := false
	s := New(func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []string{"keep"}, nil
	}, nil)

	s.Load(context.Background())
	fail = true
	got := s.Load(context.Background())
	if !reflect.DeepEqual(got, []string{"keep"}) {
		t.Fatalf("projection after failed reload=%v, want [keep]", got)
	}
}

func TestProjectionReturnsCopy(t *testing.T) {
	s := New(func(ctx context.Context) ([]string, error) {
		return []string{"a"}, nil
	}, nil)
	s.Load(context.Background())

	p := s.Projection()
	p[0] = "mutated"
	if got := s.Projection()[0]; got != "a" {
		t.Fatalf("internal projection was mutated through the returned slice: %q", got)
	}
}

// A delete racing an in-flight load: the older load resolves after the newer
// one and must be discarded, so the deleted row never reappears.
func TestStaleLoadDiscarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var call atomic.Int32
	s := New(func(ctx context.Context) ([]string, error) {
		if call.Add(1) == 1 {
			close(entered)
			<-release
			return []string{"note-X", "note-Y"}, nil
		}
		return []string{"note-Y"}, nil
	}, nil)

	done := make(chan struct{})
	go func() {
		s.Load(context.Background()) // issued first, resolves last
		close(done)
	}()

	// Wait until the first load is stamped and in flight.
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never started")
	}

	got := s.Load(context.Background())
	if !reflect.DeepEqual(got, []string{"note-Y"}) {
		t.Fatalf("fresh load projection=%v, want [note-Y]", got)
	}

	close(release)
	<-done

	if got := s.Projection(); !reflect.DeepEqual(got, []string{"note-Y"}) {
		t.Fatalf("stale load overwrote fresher projection: %v", got)
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	rows := []string{"one"}
	s := New(func(ctx context.Context) ([]string, error) {
		out := make([]string, len(rows))
		copy(out, rows)
		return out, nil
	}, nil)

	changes := make(chan remote.Change)
	updates := make(chan []string, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.Watch(ctx, changes, func(p []string) { updates <- p })

	if got := <-updates; !reflect.DeepEqual(got, []string{"one"}) {
		t.Fatalf("initial projection=%v, want [one]", got)
	}

	rows = []string{"one", "two"}
	changes <- remote.Change{Table: remote.TableTasks, Kind: remote.ChangeInsert}
	if got := <-updates; !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Fatalf("projection after change=%v, want [one two]", got)
	}

	// Closing the feed ends the watch.
	close(changes)
}
