package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSaver struct {
	calls atomic.Int32
	err   error
}

func (c *countingSaver) Save(context.Context) (string, error) {
	c.calls.Add(1)
	return "slot-1", c.err
}

func TestAutosaveRejectsBadSpec(t *testing.T) {
	if _, err := NewAutosave("whenever", &countingSaver{}); err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestAutosaveRunsOnSchedule(t *testing.T) {
	saver := &countingSaver{}
	a, err := NewAutosave("@every 1s", saver)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Start()
	if a.Next().IsZero() {
		t.Fatal("no next run scheduled")
	}
	deadline := time.Now().Add(5 * time.Second)
	for saver.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	a.Stop()
	if saver.calls.Load() == 0 {
		t.Fatal("autosave never ran")
	}
}

func TestAutosaveSurvivesFailures(t *testing.T) {
	saver := &countingSaver{err: errors.New("disk full")}
	a, err := NewAutosave("@every 1h", saver)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.run()
	a.run()
	if saver.calls.Load() != 2 {
		t.Fatalf("calls = %d", saver.calls.Load())
	}
}
