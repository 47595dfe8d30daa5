package tutorial

import "testing"

func marketBatch() Batch {
	return Batch{
		ID:      "market_intro",
		Trigger: Action{Type: ScreenLoad, Screen: "market"},
		Steps: []Step{
			{ID: "market_intro_1", Completion: Action{Type: PlayerAct, Action: "buy-item"}, Next: "market_intro_2"},
			{ID: "market_intro_2", Completion: Action{Type: PlayerAct, Action: "sell-item"}},
		},
	}
}

func TestTrackerRunsBatchToCompletion(t *testing.T) {
	tr := &Tracker{Batches: []Batch{marketBatch()}}
	p := &Progress{}

	if _, ok := tr.Check(p, Action{Type: ScreenLoad, Screen: "hangar"}); ok {
		t.Fatal("wrong screen started a batch")
	}
	step, ok := tr.Check(p, Action{Type: ScreenLoad, Screen: "market"})
	if !ok || step.ID != "market_intro_1" {
		t.Fatalf("step = %v", step)
	}
	if step, _ = tr.Check(p, Action{Type: PlayerAct, Action: "sell-item"}); step.ID != "market_intro_1" {
		t.Fatal("non-matching action advanced the step")
	}
	step, _ = tr.Check(p, Action{Type: PlayerAct, Action: "buy-item"})
	if step == nil || step.ID != "market_intro_2" {
		t.Fatalf("after buy step = %v", step)
	}
	if _, ok := tr.Check(p, Action{Type: PlayerAct, Action: "sell-item"}); ok {
		t.Fatal("batch should have ended")
	}
	if p.ActiveBatchID != "" || len(p.SeenBatchIDs) != 1 {
		t.Fatalf("progress = %+v", p)
	}
	if _, ok := tr.Check(p, Action{Type: ScreenLoad, Screen: "market"}); ok {
		t.Fatal("seen batch restarted")
	}
}

func TestTrackerHoldAndSkip(t *testing.T) {
	hold := true
	tr := &Tracker{Batches: []Batch{marketBatch()}, Hold: func(Step) bool { return hold }}
	p := &Progress{}

	if _, ok := tr.Check(p, Action{Type: ScreenLoad, Screen: "market"}); ok {
		t.Fatal("held step was shown")
	}
	if p.ActiveBatchID != "market_intro" || p.ActiveStepID != "" {
		t.Fatalf("progress = %+v", p)
	}
	hold = false
	if step, ok := tr.Check(p, Action{Type: ScreenLoad, Screen: "market"}); !ok || step.ID != "market_intro_1" {
		t.Fatal("released step not shown")
	}

	tr.Skip(p)
	if p.ActiveBatchID != "" || len(p.SkippedBatchIDs) != 1 {
		t.Fatalf("progress after skip = %+v", p)
	}
}

func TestInfoCompletion(t *testing.T) {
	info := Action{Type: Info}
	if !info.Matches(Action{Type: Info}) || info.Matches(Action{Type: PlayerAct, Action: "buy-ship"}) {
		t.Fatal("info matching wrong")
	}
}

func TestHeldStepResumesWhereItStopped(t *testing.T) {
	holdSell := true
	tr := &Tracker{Batches: []Batch{marketBatch()}, Hold: func(s Step) bool {
		return holdSell && s.ID == "market_intro_2"
	}}
	p := &Progress{}

	tr.Check(p, Action{Type: ScreenLoad, Screen: "market"})
	if step, ok := tr.Check(p, Action{Type: PlayerAct, Action: "buy-item"}); ok {
		t.Fatalf("held step shown: %v", step)
	}
	if p.HeldStepID != "market_intro_2" || p.ActiveStepID != "" {
		t.Fatalf("progress = %+v", p)
	}

	holdSell = false
	step, ok := tr.Check(p, Action{Type: ScreenLoad, Screen: "market"})
	if !ok || step.ID != "market_intro_2" {
		t.Fatalf("resumed at %v, want market_intro_2", step)
	}
	if p.HeldStepID != "" {
		t.Fatalf("held step not cleared: %+v", p)
	}
}
