// Package tutorial tracks progress through guided tutorial batches.
// The game reports screen loads and player actions; a batch starts when its
// trigger matches and advances one step per matching completion.
package tutorial

import "slices"

// ActionType classifies a reported action.
type ActionType string

const (
	ScreenLoad ActionType = "screen_load"
	PlayerAct  ActionType = "action"
	Info       ActionType = "info" // the player pressed Next on an informational step
)

// Action is a reported event and also the shape of triggers and completions.
type Action struct {
	Type   ActionType `yaml:"type" json:"type"`
	Screen string     `yaml:"screen,omitempty" json:"screen,omitempty"`
	Action string     `yaml:"action,omitempty" json:"action,omitempty"`
}

// Matches reports whether reported satisfies the condition a.
func (a Action) Matches(reported Action) bool {
	if a.Type != reported.Type {
		return false
	}
	switch a.Type {
	case ScreenLoad:
		return a.Screen == reported.Screen
	case PlayerAct:
		return a.Action == reported.Action
	case Info:
		return true
	}
	return false
}

type Step struct {
	ID         string `yaml:"id" json:"id"`
	Text       string `yaml:"text" json:"text"`
	Completion Action `yaml:"completion" json:"completion"`
	Next       string `yaml:"next,omitempty" json:"next,omitempty"`
}

type Batch struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Trigger Action `yaml:"trigger" json:"trigger"`
	Steps   []Step `yaml:"steps" json:"steps"`
}

// Progress is the persisted tutorial block.
type Progress struct {
	ActiveBatchID   string   `json:"active_batch_id,omitempty"`
	ActiveStepID    string   `json:"active_step_id,omitempty"`
	HeldStepID      string   `json:"held_step_id,omitempty"`
	SeenBatchIDs    []string `json:"seen_batch_ids"`
	SkippedBatchIDs []string `json:"skipped_batch_ids"`
}

// Tracker drives a Progress through a fixed list of batches.
type Tracker struct {
	Batches []Batch
	// Hold keeps a step from being shown while it returns true.
	Hold func(Step) bool
}

// Check feeds one reported action. It returns the step now on screen, if any.
func (t *Tracker) Check(p *Progress, a Action) (*Step, bool) {
	if p.ActiveBatchID != "" {
		batch, ok := t.batch(p.ActiveBatchID)
		if !ok {
			end(p)
			return nil, false
		}
		if p.ActiveStepID == "" {
			// A held step gets another chance on every report.
			id := p.HeldStepID
			if id == "" {
				id = batch.Steps[0].ID
			}
			return t.display(p, batch, id)
		}
		step, ok := stepByID(batch, p.ActiveStepID)
		if ok && step.Completion.Matches(a) {
			return t.advance(p, batch, step)
		}
		return step, ok
	}

	for i := range t.Batches {
		b := &t.Batches[i]
		if slices.Contains(p.SeenBatchIDs, b.ID) || slices.Contains(p.SkippedBatchIDs, b.ID) {
			continue
		}
		if b.Trigger.Matches(a) && len(b.Steps) > 0 {
			p.ActiveBatchID = b.ID
			p.SeenBatchIDs = append(p.SeenBatchIDs, b.ID)
			return t.display(p, b, b.Steps[0].ID)
		}
	}
	return nil, false
}

// Current returns the step on screen.
func (t *Tracker) Current(p *Progress) (*Step, bool) {
	batch, ok := t.batch(p.ActiveBatchID)
	if !ok || p.ActiveStepID == "" {
		return nil, false
	}
	return stepByID(batch, p.ActiveStepID)
}

// Skip abandons the active batch for good.
func (t *Tracker) Skip(p *Progress) {
	if p.ActiveBatchID == "" {
		return
	}
	if !slices.Contains(p.SkippedBatchIDs, p.ActiveBatchID) {
		p.SkippedBatchIDs = append(p.SkippedBatchIDs, p.ActiveBatchID)
	}
	end(p)
}

func (t *Tracker) advance(p *Progress, b *Batch, s *Step) (*Step, bool) {
	if s.Next == "" {
		end(p)
		return nil, false
	}
	return t.display(p, b, s.Next)
}

func (t *Tracker) display(p *Progress, b *Batch, id string) (*Step, bool) {
	s, ok := stepByID(b, id)
	if !ok {
		end(p)
		return nil, false
	}
	if t.Hold != nil && t.Hold(*s) {
		p.ActiveStepID, p.HeldStepID = "", s.ID
		return nil, false
	}
	p.ActiveStepID, p.HeldStepID = s.ID, ""
	return s, true
}

func (t *Tracker) batch(id string) (*Batch, bool) {
	for i := range t.Batches {
		if t.Batches[i].ID == id {
			return &t.Batches[i], true
		}
	}
	return nil, false
}

func stepByID(b *Batch, id string) (*Step, bool) {
	for i := range b.Steps {
		if b.Steps[i].ID == id {
			return &b.Steps[i], true
		}
	}
	return nil, false
}

func end(p *Progress) {
	p.ActiveBatchID = ""
	p.ActiveStepID = ""
	p.HeldStepID = ""
}
