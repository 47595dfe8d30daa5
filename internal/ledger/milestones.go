package ledger

import "slices"

// Milestone is a credit threshold that fires once and may widen access.
type Milestone struct {
	Threshold       int64  `yaml:"threshold" json:"threshold"`
	UnlockLevel     int    `yaml:"unlock_level" json:"unlock_level,omitempty"`
	UnlocksLocation string `yaml:"unlocks_location" json:"unlocks_location,omitempty"`
	Message         string `yaml:"message" json:"message"`
}

// Progress is what milestones have opened up.
type Progress struct {
	UnlockedCommodityLevel int      `json:"unlocked_commodity_level"`
	UnlockedLocationIDs    []string `json:"unlocked_location_ids"`
	SeenMilestones         []int64  `json:"seen_milestones"`
}

// LocationUnlocked reports whether id is in the unlocked set.
func (p *Progress) LocationUnlocked(id string) bool {
	return slices.Contains(p.UnlockedLocationIDs, id)
}

// Unlock records the effect of one fired milestone.
type Unlock struct {
	Milestone     Milestone
	LevelRaised   bool
	LocationAdded bool
}

// Changed reports whether the milestone widened access.
func (u Unlock) Changed() bool { return u.LevelRaised || u.LocationAdded }

// CheckMilestones fires every unseen milestone at or below credits. A fired
// milestone is never re-fired. Levels only rise; locations are only added.
func (p *Progress) CheckMilestones(credits int64, milestones []Milestone) []Unlock {
	var fired []Unlock
	for _, m := range milestones {
		if credits < m.Threshold || slices.Contains(p.SeenMilestones, m.Threshold) {
			continue
		}
		p.SeenMilestones = append(p.SeenMilestones, m.Threshold)
		u := Unlock{Milestone: m}
		if m.UnlockLevel > p.UnlockedCommodityLevel {
			p.UnlockedCommodityLevel = m.UnlockLevel
			u.LevelRaised = true
		}
		if m.UnlocksLocation != "" && !p.LocationUnlocked(m.UnlocksLocation) {
			p.UnlockedLocationIDs = append(p.UnlockedLocationIDs, m.UnlocksLocation)
			u.LocationAdded = true
		}
		fired = append(fired, u)
	}
	return fired
}
