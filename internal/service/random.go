package service

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

const (
	minPrice = 5
	maxPrice = 1000

	minRandomUPC   = 100000000000
	randomUPCRange = 900000000000

	upcTimeModulus    = 10_000_000
	upcCounterModulus = 100_000
)

// Random is a concurrency-safe source for generated prices and codes.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a randomly seeded Random.
func NewRandom() *Random {
	return NewSeededRandom(rand.Uint64())
}

// NewSeededRandom creates a Random with a fixed seed.
func NewSeededRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// IntN returns a uniform int in [0, n).
func (r *Random) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

func (r *Random) int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Int64N(n)
}

// Price returns a whole price uniformly in [5, 1000].
func (r *Random) Price() decimal.Decimal {
	return decimal.NewFromInt(int64(minPrice + r.IntN(maxPrice-minPrice+1)))
}

// UPC returns a random 12-digit code.
func (r *Random) UPC() string {
	return strconv.FormatInt(minRandomUPC+r.int64N(randomUPCRange), 10)
}

// UPCGenerator issues 12-digit codes from a millisecond clock prefix and a
// per-process counter suffix. Codes issued by one generator do not repeat
// within 100000 calls.
type UPCGenerator struct {
	start   uint64
	counter atomic.Uint64
	now     func() time.Time
}

// NewUPCGenerator creates a UPCGenerator with a random counter start.
func NewUPCGenerator() *UPCGenerator {
	return &UPCGenerator{
		start: rand.Uint64N(upcCounterModulus),
		now:   time.Now,
	}
}

// Next returns a new code.
func (g *UPCGenerator) Next() string {
	prefix := uint64(g.now().UnixMilli()) % upcTimeModulus
	suffix := (g.start + g.counter.Add(1)) % upcCounterModulus
	return leftPad(strconv.FormatUint(prefix, 10), 7) + leftPad(strconv.FormatUint(suffix, 10), 5)
}

func leftPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
