// Package reducer turns a full access log into the two replay artifacts: a
// shuffled initial-state snapshot and a per-block read/write workload.
package reducer

import (
	"time"

	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/holiman/uint256"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

// KeyStat counts every access to one key across the whole log.
type KeyStat struct {
	Key    types.StorageKey
	Reads  int
	Writes int
}

func (s KeyStat) Total() int { return s.Reads + s.Writes }

type firstValue struct {
	key   types.StorageKey
	value uint256.Int
}

// Snapshot is the result of the global pass. A key is touched by its first
// access of either kind; it enters the snapshot only when that first access
// reads a non-zero value.
type Snapshot struct {
	stats   map[types.StorageKey]*KeyStat
	touched []types.StorageKey
	initial []firstValue
	seeded  map[types.StorageKey]int // index into initial
}

// BuildSnapshot walks the log in full chronological order. It is single
// threaded because first touch depends on that order.
func BuildSnapshot(l types.FullAccessLog) *Snapshot {
	s := &Snapshot{
		stats:  make(map[types.StorageKey]*KeyStat),
		seeded: make(map[types.StorageKey]int),
	}
	l.Each(func(_ int, a *types.Access) {
		st, seen := s.stats[a.Key]
		if !seen {
			st = &KeyStat{Key: a.Key}
			s.stats[a.Key] = st
			s.touched = append(s.touched, a.Key)
			if a.IsRead() && !a.Value.IsZero() {
				s.seeded[a.Key] = len(s.initial)
				s.initial = append(s.initial, firstValue{key: a.Key, value: a.Value})
			}
		}
		if a.IsRead() {
			st.Reads++
		} else {
			st.Writes++
		}
	})
	return s
}

// Touched is the number of distinct keys in the log.
func (s *Snapshot) Touched() int { return len(s.touched) }

// Len is the number of keys seeded into the initial state.
func (s *Snapshot) Len() int { return len(s.initial) }

// Value returns the seeded value for key, if any.
func (s *Snapshot) Value(key types.StorageKey) (*uint256.Int, bool) {
	i, ok := s.seeded[key]
	if !ok {
		return nil, false
	}
	return &s.initial[i].value, true
}

func (s *Snapshot) Stat(key types.StorageKey) (KeyStat, bool) {
	st, ok := s.stats[key]
	if !ok {
		return KeyStat{}, false
	}
	return *st, true
}

// Entries returns the snapshot as digest/value pairs in first-touch order.
func (s *Snapshot) Entries() []types.InitialStateEntry {
	out := make([]types.InitialStateEntry, len(s.initial))
	for i := range s.initial {
		out[i] = types.InitialStateEntry{
			Digest: s.initial[i].key.Digest(),
			Value:  s.initial[i].value.Bytes32(),
		}
	}
	return out
}

// Shuffled returns Entries under a uniform random permutation drawn from rng.
func (s *Snapshot) Shuffled(rng *rand.Rand) []types.InitialStateEntry {
	out := s.Entries()
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// NewRand seeds a generator; seed 0 picks a time based seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// HotKeys returns the n most accessed keys, most accessed first. Ties keep
// first-touch order.
func (s *Snapshot) HotKeys(n int) []KeyStat {
	all := make([]KeyStat, 0, len(s.touched))
	for _, k := range s.touched {
		all = append(all, *s.stats[k])
	}
	slices.SortStableFunc(all, func(a, b KeyStat) int {
		return b.Total() - a.Total()
	})
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}
