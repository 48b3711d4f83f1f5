package history

import (
	"fmt"
	"testing"
)

func TestRecordOrderAndStatus(t *testing.T) {
	r := NewRecorder(10)

	r.Record("r1", "crash", 200, 0, "1.37x")
	r.Record("r2", "crash", 200, 474, "2.37x")
	r.Record("r3", "roulette", 100, 200, "17 black")

	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}

	// Most recent first.
	if entries[0].ID != "r3" || entries[2].ID != "r1" {
		t.Errorf("order = [%s %s %s], want [r3 r2 r1]",
			entries[0].ID, entries[1].ID, entries[2].ID)
	}

	if entries[2].Status != "loss" || entries[2].Payout != -200 {
		t.Errorf("loss entry = %+v, want status loss, payout -200", entries[2])
	}
	if entries[1].Status != "win" || entries[1].Payout != 274 {
		t.Errorf("win entry = %+v, want status win, payout 274", entries[1])
	}
	if entries[0].ResultLabel != "17 black" {
		t.Errorf("result label = %q", entries[0].ResultLabel)
	}
}

func TestCapDropsOldest(t *testing.T) {
	r := NewRecorder(5)
	for i := 1; i <= 8; i++ {
		r.Record(fmt.Sprintf("r%d", i), "crash", 100, 0, "1.00x")
	}

	entries := r.Entries()
	if len(entries) != 5 {
		t.Fatalf("len = %d, want 5", len(entries))
	}
	if entries[0].ID != "r8" || entries[4].ID != "r4" {
		t.Errorf("window = %s..%s, want r8..r4", entries[0].ID, entries[4].ID)
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	r := NewRecorder(10)
	r.Record("r1", "crash", 100, 150, "1.50x")

	entries := r.Entries()
	entries[0].ID = "mutated"

	if got := r.Entries()[0].ID; got != "r1" {
		t.Errorf("internal entry mutated through returned slice: %q", got)
	}
}

func TestDefaultCapApplied(t *testing.T) {
	r := NewRecorder(0)
	for i := 0; i < DefaultCap+10; i++ {
		r.Record(fmt.Sprintf("r%d", i), "roulette", 50, 100, "1 red")
	}
	if got := len(r.Entries()); got != DefaultCap {
		t.Errorf("len = %d, want %d", got, DefaultCap)
	}
}
