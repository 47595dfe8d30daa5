package game

import "github.com/google/uuid"

type NoticeKind string

const (
	NoticeModal NoticeKind = "modal"
	NoticeToast NoticeKind = "toast"
)

// Gate names the command a modal's dismissal should trigger.
type Gate string

const (
	GateResumeTravel Gate = "resume_travel"
	GateAgeEvent     Gate = "age_event"
	GateRestart      Gate = "restart"
)

// Notice is something the presentation layer should show the player.
type Notice struct {
	ID    string     `json:"id"`
	Day   int        `json:"day"`
	Kind  NoticeKind `json:"kind"`
	Title string     `json:"title"`
	Body  string     `json:"body"`
	Gate  Gate       `json:"gate,omitempty"`
}

// noticeJournalLength bounds the notices kept in State.
const noticeJournalLength = 20

func (g *Game) modal(title, body string, gate Gate) {
	g.notify(Notice{Kind: NoticeModal, Title: title, Body: body, Gate: gate})
}

func (g *Game) toast(title, body string) {
	g.notify(Notice{Kind: NoticeToast, Title: title, Body: body})
}

func (g *Game) notify(n Notice) {
	n.ID = uuid.NewString()
	n.Day = g.State.Day
	g.pending = append(g.pending, n)

	journal := append(g.State.Notices, n)
	if over := len(journal) - noticeJournalLength; over > 0 {
		journal = append([]Notice(nil), journal[over:]...)
	}
	g.State.Notices = journal
}

// RecentNotices returns up to n journaled notices newest first. n <= 0
// returns all of them.
func (s *State) RecentNotices(n int) []Notice {
	if n <= 0 || n > len(s.Notices) {
		n = len(s.Notices)
	}
	out := make([]Notice, 0, n)
	for i := len(s.Notices) - 1; i >= len(s.Notices)-n; i-- {
		out = append(out, s.Notices[i])
	}
	return out
}

// drain hands the notices raised by the current command to its result.
func (g *Game) drain() []Notice {
	out := g.pending
	g.pending = nil
	return out
}
