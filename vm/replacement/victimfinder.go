// Package replacement provides the policies that choose which resident page
// to evict when no frame is free.
package replacement

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/sarchlab/pagesim/vm"
)

// Candidates is an indexable set of slots that a page can be evicted from.
// Both the frame pool and the inverted page table satisfy it.
type Candidates interface {
	Len() int
	LastAccess(index int) uint64
	AccessCount(index int) uint32
}

// A VictimFinder decides which slot should be evicted.
type VictimFinder interface {
	FindVictim(c Candidates) int
}

// Names of the supported policies.
const (
	Random = "random"
	LRU    = "lru"
	MFU    = "mfu"
	LFU    = "lfu"
)

// Names returns the supported policy names in sorted order.
func Names() []string {
	names := []string{Random, LRU, MFU, LFU}
	sort.Strings(names)

	return names
}

// New returns the victim finder for a policy name. The seed only affects the
// random policy.
func New(name string, seed int64) (VictimFinder, error) {
	switch strings.ToLower(name) {
	case Random:
		return NewRandomVictimFinder(seed), nil
	case LRU:
		return NewLRUVictimFinder(), nil
	case MFU:
		return NewMFUVictimFinder(), nil
	case LFU:
		return NewLFUVictimFinder(), nil
	}

	return nil, &vm.ConfigurationError{
		Field:  "algorithm",
		Value:  name,
		Reason: "must be one of " + strings.Join(Names(), ", "),
	}
}

func mustHaveCandidates(c Candidates) int {
	n := c.Len()
	if n == 0 {
		vm.IntegrityViolation("no candidate to evict")
	}

	return n
}

// RandomVictimFinder evicts a uniformly chosen slot.
type RandomVictimFinder struct {
	rng *rand.Rand
}

// NewRandomVictimFinder returns a random evictor. Two evictors created with
// the same seed make the same choices.
func NewRandomVictimFinder(seed int64) *RandomVictimFinder {
	return &RandomVictimFinder{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// FindVictim returns a slot in [0, c.Len()).
func (e *RandomVictimFinder) FindVictim(c Candidates) int {
	n := mustHaveCandidates(c)
	return e.rng.Intn(n)
}

// LRUVictimFinder evicts the least recently used slot.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the slot with the oldest access. The lowest index wins
// ties.
func (e *LRUVictimFinder) FindVictim(c Candidates) int {
	n := mustHaveCandidates(c)

	victim := 0
	oldest := c.LastAccess(0)

	for i := 1; i < n; i++ {
		if t := c.LastAccess(i); t < oldest {
			oldest = t
			victim = i
		}
	}

	return victim
}

// MFUVictimFinder evicts the most frequently used slot.
type MFUVictimFinder struct {
}

// NewMFUVictimFinder returns a newly constructed mfu evictor
func NewMFUVictimFinder() *MFUVictimFinder {
	return &MFUVictimFinder{}
}

// FindVictim returns the slot with the highest access count. The lowest index
// wins ties.
func (e *MFUVictimFinder) FindVictim(c Candidates) int {
	n := mustHaveCandidates(c)

	victim := 0
	most := c.AccessCount(0)

	for i := 1; i < n; i++ {
		if count := c.AccessCount(i); count > most {
			most = count
			victim = i
		}
	}

	return victim
}

// LFUVictimFinder evicts the least frequently used slot.
type LFUVictimFinder struct {
}

// NewLFUVictimFinder returns a newly constructed lfu evictor
func NewLFUVictimFinder() *LFUVictimFinder {
	return &LFUVictimFinder{}
}

// FindVictim returns the slot with the lowest access count. The lowest index
// wins ties.
func (e *LFUVictimFinder) FindVictim(c Candidates) int {
	n := mustHaveCandidates(c)

	victim := 0
	least := c.AccessCount(0)

	for i := 1; i < n; i++ {
		if count := c.AccessCount(i); count < least {
			least = count
			victim = i
		}
	}

	return victim
}
