package history

import (
	"sync"
	"time"
)

// Entry is the immutable record of a completed round kept for display.
// Payout is signed: negative is the net loss, positive the net win.
type Entry struct {
	ID          string    `json:"id"`
	Game        string    `json:"game"`
	Bet         float64   `json:"bet"`
	ResultLabel string    `json:"result_label"`
	Payout      float64   `json:"payout"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"` // "win" or "loss"
}

const DefaultCap = 50

// Recorder keeps an append-only, most-recent-first sequence of entries,
// capped for display purposes only.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Recorder{cap: capacity}
}

// Record constructs an entry from a terminal round and prepends it. Never
// fails; bad input is a caller bug.
func (r *Recorder) Record(roundID, game string, bet, grossPayout float64, resultLabel string) Entry {
	status := "loss"
	net := -bet
	if grossPayout > 0 {
		status = "win"
		net = grossPayout - bet
	}

	e := Entry{
		ID:          roundID,
		Game:        game,
		Bet:         bet,
		ResultLabel: resultLabel,
		Payout:      net,
		Timestamp:   time.Now(),
		Status:      status,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]Entry{e}, r.entries...)
	if len(r.entries) > r.cap {
		r.entries = r.entries[:r.cap]
	}
	return e
}

// Entries returns a copy, most recent first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
