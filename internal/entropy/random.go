// Package entropy supplies the random draws the simulation consumes.
// Game randomness flows through a Source so tests and replays can pin it.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
	"sync"
)

// Source yields uniform draws.
type Source interface {
	Float64() float64 // in [0, 1)
	Intn(n int) int   // in [0, n)
}

// Rand is a seeded Source safe for use from one writer and concurrent readers.
type Rand struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// New returns a Source seeded with seed. Seed 0 draws a fresh seed from crypto/rand.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = NewSeed()
	}
	return &Rand{rng: mrand.New(mrand.NewSource(seed))}
}

func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// NewSeed returns a non-zero seed from crypto/rand.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return int64(math.Float64bits(CryptoFloat())) | 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// CryptoFloat returns a float in [0, 1) using crypto/rand.
func CryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Uniform returns a draw in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// SkewedRandom returns an integer in [min, max] biased toward max by averaging
// three draws and taking the square root. Used for stock generation.
func SkewedRandom(src Source, min, max int) int {
	avg := (src.Float64() + src.Float64() + src.Float64()) / 3
	return int(math.Floor(float64(min) + float64(max-min)*math.Sqrt(avg)))
}

// Pick returns a uniformly chosen element of items and false when items is empty.
func Pick[T any](src Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[src.Intn(len(items))], true
}
