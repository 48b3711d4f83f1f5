package game

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type RoundState int

const (
	StateIdle RoundState = iota
	StateActive
	StateCashedOut
	StateCrashed
)

func (s RoundState) String() string {
	return [...]string{"idle", "active", "cashed_out", "crashed"}[s]
}

// Terminal reports whether the round has resolved one way or the other.
func (s RoundState) Terminal() bool {
	return s == StateCashedOut || s == StateCrashed
}

type SettlementType string

const (
	SettlementCashOut SettlementType = "cash_out"
	SettlementCrash   SettlementType = "crash"
)

// Settlement is the single terminal outcome of a round.
type Settlement struct {
	Type       SettlementType
	Multiplier float64
	Payout     float64
}

// CrashConfig holds the multiplier growth and crash-probability tuning.
type CrashConfig struct {
	BaseIncrease  float64
	AccelExponent float64
	JitterMin     float64
	JitterMax     float64
	// CrashPerturb is added (uniform in [0, CrashPerturb)) to the band
	// probability so the crash point is never perfectly deterministic.
	CrashPerturb float64
}

func DefaultCrashConfig() CrashConfig {
	return CrashConfig{
		BaseIncrease:  0.01,
		AccelExponent: 1.2,
		JitterMin:     0.005,
		JitterMax:     0.025,
		CrashPerturb:  0.01,
	}
}

type crashBand struct {
	from float64
	prob float64
}

// Strictly increasing step function of the current multiplier. Ordered
// top-down so the first matching band wins.
var crashBands = []crashBand{
	{from: 10, prob: 0.12},
	{from: 5, prob: 0.06},
	{from: 3, prob: 0.03},
	{from: 2, prob: 0.015},
	{from: 1.5, prob: 0.005},
	{from: 1, prob: 0.001},
}

func crashProbability(multiplier float64) float64 {
	for _, b := range crashBands {
		if multiplier >= b.from {
			return b.prob
		}
	}
	return crashBands[len(crashBands)-1].prob
}

// Winnings converts a captured multiplier into the credited amount.
func Winnings(bet, multiplier float64) float64 {
	return math.Floor(bet * multiplier)
}

// MultiplierProcess is the crash-style round state machine:
// Idle -> Active -> {CashedOut, Crashed} -> Idle. It is not safe for
// concurrent use; a Runner owns it and serializes Tick against CashOut.
type MultiplierProcess struct {
	rng Source
	cfg CrashConfig

	state      RoundState
	roundID    string
	bet        float64
	multiplier float64
	highest    float64
	startedAt  time.Time
	endedAt    time.Time
	settlement Settlement
	settled    bool
}

func NewMultiplierProcess(rng Source, cfg CrashConfig) *MultiplierProcess {
	return &MultiplierProcess{rng: rng, cfg: cfg, state: StateIdle}
}

// Start funds a new round. The balance check belongs to the ledger; here
// only the amount itself and the state are validated.
func (p *MultiplierProcess) Start(bet float64) (string, error) {
	if bet <= 0 {
		return "", ErrInvalidAmount
	}
	if p.state != StateIdle {
		return "", ErrRoundInProgress
	}

	p.roundID = uuid.NewString()
	p.bet = bet
	p.multiplier = 1.0
	p.state = StateActive
	p.startedAt = time.Now()
	p.endedAt = time.Time{}
	p.settlement = Settlement{}
	p.settled = false
	if p.highest < 1.0 {
		p.highest = 1.0
	}
	return p.roundID, nil
}

// Tick advances the multiplier one step and evaluates the crash draw.
// Returns true when this tick crashed the round. A tick on a non-active
// round mutates nothing.
func (p *MultiplierProcess) Tick() bool {
	if p.state != StateActive {
		return false
	}

	accel := math.Pow((p.multiplier-1)*0.5+1, p.cfg.AccelExponent)
	jitter := p.cfg.JitterMin + p.rng.Float64()*(p.cfg.JitterMax-p.cfg.JitterMin)
	p.multiplier += p.cfg.BaseIncrease*accel + jitter

	if p.multiplier > p.highest {
		p.highest = p.multiplier
	}

	crashProb := crashProbability(p.multiplier) + p.rng.Float64()*p.cfg.CrashPerturb
	if p.rng.Float64() < crashProb {
		p.state = StateCrashed
		p.endedAt = time.Now()
		p.settlement = Settlement{
			Type:       SettlementCrash,
			Multiplier: p.multiplier,
			Payout:     0,
		}
		p.settled = true
		return true
	}
	return false
}

// CashOut locks in the current multiplier as a win. Only valid while the
// round is Active; once the crash transition fired this reports
// ErrNoActiveRound and credits nothing.
func (p *MultiplierProcess) CashOut() (Settlement, error) {
	if p.state != StateActive {
		return Settlement{}, ErrNoActiveRound
	}

	p.state = StateCashedOut
	p.endedAt = time.Now()
	p.settlement = Settlement{
		Type:       SettlementCashOut,
		Multiplier: p.multiplier,
		Payout:     Winnings(p.bet, p.multiplier),
	}
	p.settled = true
	return p.settlement, nil
}

// Reset returns a terminal round to Idle so the process can host the next
// one. The highest-multiplier tracker survives resets.
func (p *MultiplierProcess) Reset() error {
	if !p.state.Terminal() {
		return ErrRoundInProgress
	}
	p.state = StateIdle
	p.roundID = ""
	p.bet = 0
	p.multiplier = 0
	return nil
}

func (p *MultiplierProcess) State() RoundState   { return p.state }
func (p *MultiplierProcess) RoundID() string     { return p.roundID }
func (p *MultiplierProcess) Bet() float64        { return p.bet }
func (p *MultiplierProcess) Multiplier() float64 { return p.multiplier }
func (p *MultiplierProcess) Highest() float64    { return p.highest }

// Settlement returns the terminal outcome, valid only once the round has
// settled.
func (p *MultiplierProcess) Settlement() (Settlement, bool) {
	return p.settlement, p.settled
}
