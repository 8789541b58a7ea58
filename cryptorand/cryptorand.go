// Package cryptorand provides a math/rand source backed by crypto/rand, for
// when boards and turns shouldn't be predictable.
package cryptorand

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

var _ mrand.Source64 = Source{}

func NewSource() Source {
	return Source{}
}

// New returns a *rand.Rand that draws from crypto/rand.
func New() *mrand.Rand {
	return mrand.New(NewSource())
}

type Source struct{}

func (Source) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(buf[:])
}

func (s Source) Int63() int64 {
	return int64(s.Uint64() & (1<<63 - 1))
}

// Seed is a no-op, there's nothing to seed.
func (Source) Seed(int64) {}
