package ledger

import (
	"sync"
	"time"

	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

type credit struct {
	playerID int64
	roundID  string
	amount   float64
	attempts int
}

const (
	retryInterval    = 2 * time.Second
	maxRetryAttempts = 10
)

// retryQueue re-applies credits whose balance write failed, off the game
// loop. The round outcome is already decided locally; only durability of
// the balance change is at stake here.
type retryQueue struct {
	apply func(credit) error

	mu      sync.Mutex
	pending []credit
	quit    chan struct{}
	once    sync.Once
}

func newRetryQueue(apply func(credit) error) *retryQueue {
	q := &retryQueue{
		apply: apply,
		quit:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *retryQueue) enqueue(c credit) {
	q.mu.Lock()
	q.pending = append(q.pending, c)
	q.mu.Unlock()
}

func (q *retryQueue) close() {
	q.once.Do(func() { close(q.quit) })
}

func (q *retryQueue) run() {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.quit:
			return
		case <-ticker.C:
			q.drain()
		}
	}
}

func (q *retryQueue) drain() {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, c := range batch {
		if err := q.apply(c); err != nil {
			c.attempts++
			if c.attempts >= maxRetryAttempts {
				logger.Error("giving up on credit for round %s after %d attempts: %v",
					c.roundID, c.attempts, err)
				continue
			}
			logger.Warn("credit retry %d for round %s failed: %v", c.attempts, c.roundID, err)
			q.enqueue(c)
			continue
		}
		logger.Info("queued credit applied for round %s", c.roundID)
	}
}
