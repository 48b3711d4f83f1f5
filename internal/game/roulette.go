package game

// European wheel, 0-36. Zero is green and loses every even-money bet.
const rouletteSlots = 37

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

// ColorOf classifies an outcome number. The red and black sets are static
// data, not computed.
func ColorOf(n int) string {
	switch {
	case n == 0:
		return "green"
	case redNumbers[n]:
		return "red"
	default:
		return "black"
	}
}

// BetOption is one of the six even-money roulette bets. Static
// configuration, never mutated at runtime.
type BetOption struct {
	Label      string  `json:"label"`
	Key        string  `json:"key"`
	Multiplier float64 `json:"multiplier"`
	wins       func(outcome int) bool
}

// Wins evaluates the option's predicate against an outcome number.
func (o BetOption) Wins(outcome int) bool {
	return o.wins(outcome)
}

// RouletteFlatMultiplier applies to all six bet kinds modeled here; no
// single-number or split bets.
const RouletteFlatMultiplier = 2

var betOptions = []BetOption{
	{Label: "Red", Key: "red", Multiplier: RouletteFlatMultiplier,
		wins: func(n int) bool { return n != 0 && redNumbers[n] }},
	{Label: "Black", Key: "black", Multiplier: RouletteFlatMultiplier,
		wins: func(n int) bool { return n != 0 && !redNumbers[n] }},
	{Label: "Even", Key: "even", Multiplier: RouletteFlatMultiplier,
		wins: func(n int) bool { return n != 0 && n%2 == 0 }},
	{Label: "Odd", Key: "odd", Multiplier: RouletteFlatMultiplier,
		wins: func(n int) bool { return n%2 == 1 }},
	{Label: "1-18", Key: "low", Multiplier: RouletteFlatMultiplier,
		wins: func(n int) bool { return n >= 1 && n <= 18 }},
	{Label: "19-36", Key: "high", Multiplier: RouletteFlatMultiplier,
		wins: func(n int) bool { return n >= 19 && n <= 36 }},
}

// BetOptions returns the static bet table.
func BetOptions() []BetOption {
	out := make([]BetOption, len(betOptions))
	copy(out, betOptions)
	return out
}

func OptionByKey(key string) (BetOption, bool) {
	for _, o := range betOptions {
		if o.Key == key {
			return o, true
		}
	}
	return BetOption{}, false
}

// CheckWin evaluates a bet kind against an outcome. Unknown keys lose.
func CheckWin(outcome int, betKey string) bool {
	o, ok := OptionByKey(betKey)
	if !ok {
		return false
	}
	return o.Wins(outcome)
}

// RoulettePayout is bet x multiplier on a win, zero on a loss.
func RoulettePayout(bet float64, outcome int, betKey string) float64 {
	o, ok := OptionByKey(betKey)
	if !ok || !o.Wins(outcome) {
		return 0
	}
	return bet * o.Multiplier
}

// RouletteProcess is the single-shot wheel.
type RouletteProcess struct {
	rng Source
}

func NewRouletteProcess(rng Source) *RouletteProcess {
	return &RouletteProcess{rng: rng}
}

// Spin draws one uniform outcome in [0, 36].
func (r *RouletteProcess) Spin() int {
	return r.rng.Intn(rouletteSlots)
}
