package signal

import (
	"sync"

	"AutoTrade/internal/domain/models"
)

// Policy holds the thresholds a score must pass to become a final signal.
type Policy struct {
	ConfirmCount    int
	ConfidenceLimit float64
	MinMovePct      float64
}

// DefaultPolicy returns 3 confirmations, 90% confidence, 0.30% move.
func DefaultPolicy() Policy {
	return Policy{ConfirmCount: 3, ConfidenceLimit: 90, MinMovePct: 0.30}
}

// ConfirmationBuffer keeps the last ConfirmCount directions per symbol.
// Safe for concurrent use.
type ConfirmationBuffer struct {
	policy Policy

	mu      sync.Mutex
	history map[string][]models.Direction
}

func NewConfirmationBuffer(p Policy) *ConfirmationBuffer {
	if p.ConfirmCount <= 0 {
		p.ConfirmCount = 1
	}
	return &ConfirmationBuffer{policy: p, history: make(map[string][]models.Direction)}
}

// Policy returns the thresholds in use.
func (b *ConfirmationBuffer) Policy() Policy { return b.policy }

// Observe appends the score direction to the symbol history and evaluates the
// final-signal rule in the same critical section. The returned history is a copy.
func (b *ConfirmationBuffer) Observe(symbol string, sc Score) (bool, []models.Direction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := append(b.history[symbol], sc.Direction)
	if over := len(h) - b.policy.ConfirmCount; over > 0 {
		h = append(h[:0:0], h[over:]...)
	}
	b.history[symbol] = h

	final := sc.Confidence >= b.policy.ConfidenceLimit &&
		sc.MovePct >= b.policy.MinMovePct &&
		len(h) == b.policy.ConfirmCount
	for _, d := range h {
		if d != sc.Direction {
			final = false
			break
		}
	}

	out := make([]models.Direction, len(h))
	copy(out, h)
	return final, out
}

// History returns a copy of the symbol's current history.
func (b *ConfirmationBuffer) History(symbol string) []models.Direction {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.history[symbol]
	out := make([]models.Direction, len(h))
	copy(out, h)
	return out
}

// Symbols returns the number of tracked symbols.
func (b *ConfirmationBuffer) Symbols() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.history)
}
