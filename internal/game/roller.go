package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Roller is the random source for dice rolls and event draws.
// Intn returns a value in [0, n).
type Roller interface {
	Intn(n int) int
}

// NewSeededRoller returns a deterministic roller
func NewSeededRoller(seed int64) Roller {
	return rand.New(rand.NewSource(seed))
}

// NewRoller returns a roller seeded from the operating system
func NewRoller() Roller {
	return NewSeededRoller(newSeed())
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// RollDie returns a value in [1, sides]. Sides below 1 yield 0.
func RollDie(r Roller, sides int) int {
	if sides < 1 {
		return 0
	}
	return r.Intn(sides) + 1
}
