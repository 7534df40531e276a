package changelog

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces unique IDs for change-log entries.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 entry IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs sort
// roughly by creation time - handy when eyeballing exported logs.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined IDs for deterministic tests and
// golden traces.
//
// Panics when exhausted: a test asking for more IDs than it declared is
// misconfigured, and failing fast keeps golden output stable.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that hands out ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("changelog: FixedGenerator exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
