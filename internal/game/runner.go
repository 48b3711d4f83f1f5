package game

import (
	"sync"
	"time"
)

type EventType int

const (
	EventTick EventType = iota
	EventCrashed
	EventCashedOut
)

// Event is what a running round emits towards the ledger, the history
// recorder and the live feed.
type Event struct {
	Type       EventType
	RoundID    string
	Multiplier float64
	Settlement Settlement // set for EventCrashed and EventCashedOut
	Auto       bool       // cash-out triggered by the auto target, not the player
}

type cashOutReq struct {
	reply chan cashOutResp
}

type cashOutResp struct {
	settlement Settlement
	err        error
}

// Runner drives one active round on a fixed tick. All mutations of the
// process go through its single loop, so the crash check and a cash-out
// request can never interleave: a cash-out arriving between ticks is
// applied before the next crash evaluation, and one arriving after the
// crash transition is rejected with ErrNoActiveRound.
type Runner struct {
	proc       *MultiplierProcess
	interval   time.Duration
	autoCashAt float64

	cashout  chan cashOutReq
	events   chan Event
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRunner wraps an already started process. autoCashAt below 1 disables
// the automatic cash-out.
func NewRunner(proc *MultiplierProcess, interval time.Duration, autoCashAt float64) *Runner {
	return &Runner{
		proc:       proc,
		interval:   interval,
		autoCashAt: autoCashAt,
		cashout:    make(chan cashOutReq),
		events:     make(chan Event, 16),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Events delivers tick and settlement events. Closed once the round is
// terminal and the loop has exited.
func (r *Runner) Events() <-chan Event {
	return r.events
}

// Run is the round's loop. It exits on the terminal transition (the
// cancellation point) or on Stop, and closes the events channel.
func (r *Runner) Run() {
	defer close(r.done)
	defer close(r.events)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return

		case req := <-r.cashout:
			settlement, err := r.proc.CashOut()
			req.reply <- cashOutResp{settlement: settlement, err: err}
			if err == nil {
				r.emit(Event{
					Type:       EventCashedOut,
					RoundID:    r.proc.RoundID(),
					Multiplier: settlement.Multiplier,
					Settlement: settlement,
				})
				return
			}

		case <-ticker.C:
			if crashed := r.proc.Tick(); crashed {
				settlement, _ := r.proc.Settlement()
				r.emit(Event{
					Type:       EventCrashed,
					RoundID:    r.proc.RoundID(),
					Multiplier: settlement.Multiplier,
					Settlement: settlement,
				})
				return
			}

			if r.autoCashAt >= 1 && r.proc.Multiplier() >= r.autoCashAt {
				settlement, err := r.proc.CashOut()
				if err == nil {
					r.emit(Event{
						Type:       EventCashedOut,
						RoundID:    r.proc.RoundID(),
						Multiplier: settlement.Multiplier,
						Settlement: settlement,
						Auto:       true,
					})
					return
				}
				continue
			}

			r.emit(Event{
				Type:       EventTick,
				RoundID:    r.proc.RoundID(),
				Multiplier: r.proc.Multiplier(),
			})
		}
	}
}

// emit never blocks the loop on tick updates; a slow consumer loses
// intermediate multiplier values, never a settlement.
func (r *Runner) emit(ev Event) {
	if ev.Type == EventTick {
		select {
		case r.events <- ev:
		default:
		}
		return
	}
	r.events <- ev
}

// RequestCashOut hands the cash-out to the loop and waits for the verdict.
// Once the round resolved on its own, or the runner was stopped (possibly
// before its loop ever started), the request reports ErrNoActiveRound.
func (r *Runner) RequestCashOut() (Settlement, error) {
	req := cashOutReq{reply: make(chan cashOutResp, 1)}
	select {
	case r.cashout <- req:
		resp := <-req.reply
		return resp.settlement, resp.err
	case <-r.done:
		return Settlement{}, ErrNoActiveRound
	case <-r.stop:
		return Settlement{}, ErrNoActiveRound
	}
}

// Stop aborts the loop without settling. Used on shutdown only; a stopped
// round stays recoverable through the ledger.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
