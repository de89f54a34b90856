package compose

import (
	"github.com/cespare/xxhash/v2"
)

// Random is a splitmix64 generator. Its sequence depends only on the seed.
type Random struct {
	state uint64
}

// SeedFor hashes the stable decoration key of a clip with xxhash64.
func SeedFor(src, style, tone string) uint64 {
	return xxhash.Sum64String(src + "|" + style + "|" + tone)
}

// NewRandom returns a generator positioned at seed.
func NewRandom(seed uint64) *Random {
	return &Random{state: seed}
}

// Uint64 returns the next value.
func (r *Random) Uint64() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Float64 returns the next value in [0, 1).
func (r *Random) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Intn returns the next value in [0, n).
func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}
