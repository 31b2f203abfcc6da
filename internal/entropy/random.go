// Package entropy provides the normal draws that drive income growth.
// Seeded sources give every citizen its own stream so a run is reproducible
// regardless of the order citizens are visited in. Unseeded runs fall back to
// crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
	"sync"
)

// Source produces normally distributed values for a numbered stream.
// A standard deviation of zero must return mean exactly.
type Source interface {
	Normal(stream uint64, mean, sd float64) float64
}

// Seeded is a reproducible Source. Each stream is an independent generator
// derived from the seed and the stream number, so the n-th draw on a stream
// depends only on (seed, stream, n).
type Seeded struct {
	seed int64

	mu      sync.Mutex
	streams map[uint64]*mrand.Rand
}

// NewSeeded creates a reproducible source.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{
		seed:    seed,
		streams: make(map[uint64]*mrand.Rand),
	}
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// Normal draws from N(mean, sd²) on the given stream.
func (s *Seeded) Normal(stream uint64, mean, sd float64) float64 {
	if sd == 0 {
		return mean
	}

	s.mu.Lock()
	rng, ok := s.streams[stream]
	if !ok {
		rng = mrand.New(mrand.NewSource(int64(mix(uint64(s.seed), stream))))
		s.streams[stream] = rng
	}
	z := rng.NormFloat64()
	s.mu.Unlock()

	return mean + sd*z
}

// mix combines seed and stream with a splitmix64 finalizer so neighbouring
// streams do not get correlated generators.
func mix(seed, stream uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15*(stream+1)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Crypto is a non-reproducible Source backed by crypto/rand.
type Crypto struct{}

// Normal draws from N(mean, sd²) using the Box-Muller transform.
func (Crypto) Normal(_ uint64, mean, sd float64) float64 {
	if sd == 0 {
		return mean
	}
	// u1 must be in (0, 1] for the log.
	u1 := 1 - cryptoRandFloat()
	u2 := cryptoRandFloat()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + sd*z
}

// cryptoRandFloat generates a random float64 in [0, 1) using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// CryptoFloat returns a random float in [0, 1) using crypto/rand.
func CryptoFloat() float64 {
	return cryptoRandFloat()
}

// New returns a Seeded source when seed is non-nil, otherwise Crypto.
func New(seed *int64) Source {
	if seed != nil {
		return NewSeeded(*seed)
	}
	return Crypto{}
}
