package game

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand"
	"sync"
)

// Source produces the uniform random draws the games run on. Injected so
// tests can replay a known sequence.
type Source interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// Intn returns a uniform draw in [0, n).
	Intn(n int) int
}

const float64Resolution = 1 << 53

// CryptoSource draws from crypto/rand for fair, unpredictable outcomes.
type CryptoSource struct{}

func NewCryptoSource() *CryptoSource {
	return &CryptoSource{}
}

func (s *CryptoSource) Float64() float64 {
	v, err := rand.Int(rand.Reader, big.NewInt(float64Resolution))
	if err != nil {
		return 0
	}
	return float64(v.Int64()) / float64Resolution
}

func (s *CryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// SeededSource is a deterministic Source for tests. The mutex guards the
// underlying rand state, so one instance is safe for concurrent use.
type SeededSource struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{rng: mathrand.New(mathrand.NewSource(seed))}
}

func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *SeededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
