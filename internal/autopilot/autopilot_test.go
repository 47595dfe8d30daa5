package autopilot

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talgya/orbital-trader/internal/api"
	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/persistence"
	"github.com/talgya/orbital-trader/internal/session"
)

func TestPilotPlaysAgainstServer(t *testing.T) {
	ctx := context.Background()
	cat := catalog.MustDefault()
	sess, err := session.Open(ctx, cat, persistence.NewMemoryStore(), "", "Bot")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	srv := httptest.NewServer(api.NewServer(sess, "", nil, nil).Handler())
	defer srv.Close()

	p := New(cat, srv.URL, LoadMemory(""), Config{Interval: time.Millisecond, MinFuel: 0.4, MinHull: 0.5})
	for i := range 20 {
		if _, err := p.RunCycle(ctx); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	if len(p.Memory.Records) != 20 {
		t.Fatalf("records = %d", len(p.Memory.Records))
	}
	traded := false
	for _, r := range p.Memory.Records {
		if r.Action == ActionBuy || r.Action == ActionTravel {
			traded = true
		}
	}
	if !traded {
		t.Fatalf("pilot never bought or travelled:\n%s", p.Memory.Summary(20))
	}
}

func TestRunCycleReportsUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	p := New(catalog.MustDefault(), url, LoadMemory(""), Config{Interval: time.Millisecond})
	if _, err := p.RunCycle(context.Background()); err == nil {
		t.Fatal("expected an error from a closed server")
	}
	if len(p.Memory.Records) != 0 {
		t.Fatal("recorded a cycle that never observed the game")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	p := New(catalog.MustDefault(), url, LoadMemory(""), Config{Interval: time.Millisecond, MaxBackoff: 5 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
