package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/mrwolf/daybook/internal/pipeline"
	"go.uber.org/zap/zaptest"
)

type fakeRunner struct {
	mu       sync.Mutex
	calls    int
	err      error
	deadline bool
}

func (f *fakeRunner) Run(ctx context.Context, now time.Time) (*pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{Document: pipeline.Document{RunID: "run-1"}, NoteID: "note-1"}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunNow(t *testing.T) {
	runner := &fakeRunner{}
	s, err := New(runner, Config{Hour: 6}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("creating scheduler: %v", err)
	}

	res, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if res.NoteID != "note-1" {
		t.Errorf("expected note-1, got %q", res.NoteID)
	}
	if runner.count() != 1 {
		t.Errorf("expected 1 run, got %d", runner.count())
	}
	if !runner.deadline {
		t.Error("expected run context to carry a deadline")
	}
}

func TestRunNowError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("mappiness down")}
	s, err := New(runner, Config{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("creating scheduler: %v", err)
	}

	if _, err := s.RunNow(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestDailyJobSchedule(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 19, 5, 0, 0, 0, london))

	s, err := New(&fakeRunner{}, Config{
		Location: london,
		Hour:     6,
		Minute:   30,
		Clock:    gocron.WithClock(clock),
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("creating scheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("starting scheduler: %v", err)
	}
	defer s.Stop()

	want := time.Date(2026, 10, 19, 6, 30, 0, 0, london)
	deadline := time.Now().Add(2 * time.Second)
	for {
		next, err := s.NextRun()
		if err == nil && next.Equal(want) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected next run %v, got %v (err %v)", want, next, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
