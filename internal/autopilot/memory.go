package autopilot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const maxRecords = 50

// CycleRecord captures what happened in a single autopilot cycle.
type CycleRecord struct {
	Day      int    `json:"day"`
	Action   Action `json:"action"`
	Location string `json:"location"`
	Credits  int64  `json:"credits"`
	Error    string `json:"error,omitempty"`
}

// Memory keeps recent cycles and when each location was last visited. With a
// path set it survives restarts.
type Memory struct {
	Path    string         `json:"-"`
	Records []CycleRecord  `json:"records"`
	Visits  map[string]int `json:"visits"`
}

// LoadMemory reads the memory file. Returns empty memory if it is missing
// or unreadable.
func LoadMemory(path string) *Memory {
	m := &Memory{Path: path, Visits: make(map[string]int)}
	if path == "" {
		return m
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, m); err != nil {
		slog.Warn("autopilot memory corrupted, starting fresh", "error", err)
		return &Memory{Path: path, Visits: make(map[string]int)}
	}
	if m.Visits == nil {
		m.Visits = make(map[string]int)
	}
	return m
}

// Save writes the memory to disk. A memory without a path is not saved.
func (m *Memory) Save() {
	if m.Path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal autopilot memory", "error", err)
		return
	}
	if err := os.WriteFile(m.Path, data, 0644); err != nil {
		slog.Error("failed to write autopilot memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *Memory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Visit marks a location as seen on day.
func (m *Memory) Visit(locationID string, day int) {
	m.Visits[locationID] = day
}

// LastVisit is the day locationID was last seen, 0 if never.
func (m *Memory) LastVisit(locationID string) int {
	return m.Visits[locationID]
}

// LastFailed reports whether the most recent cycle tried action and was rejected.
func (m *Memory) LastFailed(action Action) bool {
	if len(m.Records) == 0 {
		return false
	}
	last := m.Records[len(m.Records)-1]
	return last.Action == action && last.Error != ""
}

// Summary renders the last n cycles, one per line.
func (m *Memory) Summary(n int) string {
	start := max(0, len(m.Records)-n)
	var b strings.Builder
	for _, r := range m.Records[start:] {
		fmt.Fprintf(&b, "day %d at %s: %s, credits=%d", r.Day, r.Location, r.Action, r.Credits)
		if r.Error != "" {
			fmt.Fprintf(&b, ", error=%s", r.Error)
		}
		b.WriteString("\n")
	}
	return b.String()
}
