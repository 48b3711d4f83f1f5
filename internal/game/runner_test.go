package game

import (
	"errors"
	"testing"
	"time"
)

func TestRunnerCashOutSettles(t *testing.T) {
	cfg := DefaultCrashConfig()
	cfg.CrashPerturb = 0
	p := NewMultiplierProcess(neverCrash{}, cfg)
	if _, err := p.Start(100); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(p, time.Millisecond, 0)
	go r.Run()

	// Let a few ticks land first.
	time.Sleep(20 * time.Millisecond)

	s, err := r.RequestCashOut()
	if err != nil {
		t.Fatalf("RequestCashOut: %v", err)
	}
	if s.Type != SettlementCashOut {
		t.Errorf("settlement type = %v, want cash_out", s.Type)
	}
	if s.Multiplier <= 1.0 {
		t.Errorf("settlement multiplier = %v, want > 1", s.Multiplier)
	}
	if want := Winnings(100, s.Multiplier); s.Payout != want {
		t.Errorf("payout = %v, want %v", s.Payout, want)
	}

	// The loop exits after a terminal transition; the events channel closes.
	var last Event
	for ev := range r.Events() {
		last = ev
	}
	if last.Type != EventCashedOut {
		t.Errorf("final event type = %v, want EventCashedOut", last.Type)
	}
}

func TestRunnerCashOutAfterCrash(t *testing.T) {
	p := NewMultiplierProcess(alwaysCrash{}, DefaultCrashConfig())
	if _, err := p.Start(100); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(p, time.Millisecond, 0)
	go r.Run()

	var crash Event
	for ev := range r.Events() {
		crash = ev
	}
	if crash.Type != EventCrashed {
		t.Fatalf("final event type = %v, want EventCrashed", crash.Type)
	}
	if crash.Settlement.Payout != 0 {
		t.Errorf("crash payout = %v, want 0", crash.Settlement.Payout)
	}

	if _, err := r.RequestCashOut(); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("RequestCashOut after crash error = %v, want ErrNoActiveRound", err)
	}
}

func TestRunnerAutoCashOut(t *testing.T) {
	cfg := DefaultCrashConfig()
	cfg.CrashPerturb = 0
	p := NewMultiplierProcess(neverCrash{}, cfg)
	if _, err := p.Start(100); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(p, time.Millisecond, 1.2)
	go r.Run()

	var last Event
	for ev := range r.Events() {
		last = ev
	}
	if last.Type != EventCashedOut {
		t.Fatalf("final event type = %v, want EventCashedOut", last.Type)
	}
	if !last.Auto {
		t.Error("auto cash-out event not flagged Auto")
	}
	if last.Settlement.Multiplier < 1.2 {
		t.Errorf("auto cash-out at %v, want >= 1.2", last.Settlement.Multiplier)
	}
}

func TestRunnerStop(t *testing.T) {
	p := NewMultiplierProcess(neverCrash{}, DefaultCrashConfig())
	if _, err := p.Start(100); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(p, time.Millisecond, 0)
	go r.Run()
	time.Sleep(5 * time.Millisecond)
	r.Stop()
	r.Stop() // idempotent

	for range r.Events() {
	}
	// Stop aborts without settling; the process stays recoverable.
	if _, settled := p.Settlement(); settled {
		t.Error("Stop settled the round")
	}
}

func TestRunnerCashOutOnStoppedUnstartedRunner(t *testing.T) {
	p := NewMultiplierProcess(neverCrash{}, DefaultCrashConfig())
	if _, err := p.Start(100); err != nil {
		t.Fatal(err)
	}

	// A runner discarded before its loop ever started (e.g. the bet debit
	// failed) must reject instead of blocking the caller.
	r := NewRunner(p, time.Millisecond, 0)
	r.Stop()

	result := make(chan error, 1)
	go func() {
		_, err := r.RequestCashOut()
		result <- err
	}()

	select {
	case err := <-result:
		if !errors.Is(err, ErrNoActiveRound) {
			t.Errorf("RequestCashOut error = %v, want ErrNoActiveRound", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RequestCashOut blocked on a stopped runner")
	}
}

func TestRunnerConcurrentCashOuts(t *testing.T) {
	cfg := DefaultCrashConfig()
	cfg.CrashPerturb = 0
	p := NewMultiplierProcess(neverCrash{}, cfg)
	if _, err := p.Start(100); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(p, time.Millisecond, 0)
	go r.Run()
	go func() {
		for range r.Events() {
		}
	}()

	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := r.RequestCashOut()
			results <- err
		}()
	}

	wins := 0
	for i := 0; i < 4; i++ {
		err := <-results
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNoActiveRound):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("%d cash-outs succeeded, want exactly 1", wins)
	}
}
