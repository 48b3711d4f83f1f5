package game

import "testing"

func TestZeroLosesEveryBet(t *testing.T) {
	for _, key := range []string{"red", "black", "even", "odd", "low", "high"} {
		if CheckWin(0, key) {
			t.Errorf("outcome 0 won %q bet", key)
		}
		if got := RoulettePayout(100, 0, key); got != 0 {
			t.Errorf("RoulettePayout(100, 0, %q) = %v, want 0", key, got)
		}
	}
	if ColorOf(0) != "green" {
		t.Errorf("ColorOf(0) = %q, want green", ColorOf(0))
	}
}

func TestCheckWinPredicates(t *testing.T) {
	tests := []struct {
		outcome int
		key     string
		want    bool
	}{
		{17, "black", true},
		{17, "odd", true},
		{17, "low", true},
		{17, "red", false},
		{17, "even", false},
		{17, "high", false},

		{32, "red", true},
		{32, "even", true},
		{32, "high", true},
		{32, "black", false},
		{32, "odd", false},
		{32, "low", false},

		{18, "low", true},
		{19, "high", true},
		{18, "high", false},
		{19, "low", false},
	}
	for _, tt := range tests {
		if got := CheckWin(tt.outcome, tt.key); got != tt.want {
			t.Errorf("CheckWin(%d, %q) = %v, want %v", tt.outcome, tt.key, got, tt.want)
		}
	}
}

func TestUnknownBetKeyLoses(t *testing.T) {
	if CheckWin(7, "straight-7") {
		t.Error("unknown bet key won")
	}
	if got := RoulettePayout(100, 7, "straight-7"); got != 0 {
		t.Errorf("payout for unknown key = %v, want 0", got)
	}
}

func TestColorPartition(t *testing.T) {
	red, black := 0, 0
	for n := 1; n <= 36; n++ {
		switch ColorOf(n) {
		case "red":
			red++
		case "black":
			black++
		default:
			t.Errorf("ColorOf(%d) = %q, want red or black", n, ColorOf(n))
		}
	}
	if red != 18 || black != 18 {
		t.Errorf("color partition = %d red / %d black, want 18/18", red, black)
	}
}

func TestFlatPayoutMultiplier(t *testing.T) {
	for _, o := range BetOptions() {
		if o.Multiplier != RouletteFlatMultiplier {
			t.Errorf("option %q multiplier = %v, want %v", o.Key, o.Multiplier, RouletteFlatMultiplier)
		}
	}
	if got := RoulettePayout(250, 32, "red"); got != 500 {
		t.Errorf("RoulettePayout(250, 32, red) = %v, want 500", got)
	}
}

func TestSpinRange(t *testing.T) {
	wheel := NewRouletteProcess(NewSeededSource(42))
	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		n := wheel.Spin()
		if n < 0 || n > 36 {
			t.Fatalf("Spin() = %d, out of range", n)
		}
		seen[n] = true
	}
	// 5000 uniform draws over 37 slots make a missing slot effectively
	// impossible.
	for n := 0; n <= 36; n++ {
		if !seen[n] {
			t.Errorf("outcome %d never drawn", n)
		}
	}
}

func TestOptionByKey(t *testing.T) {
	o, ok := OptionByKey("low")
	if !ok || o.Label != "1-18" {
		t.Errorf("OptionByKey(low) = %+v, %v", o, ok)
	}
	if _, ok := OptionByKey("green"); ok {
		t.Error("OptionByKey(green) found an option")
	}
}
