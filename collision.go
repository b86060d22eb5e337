package parsim

import (
	"sort"
)

// maxParticles is the largest particle count whose index pairs fit into a
// pairKey.
const maxParticles = 1 << 32

// pairKey packs an unordered index pair i < j into a single map key.
type pairKey uint64

func newPairKey(i, j int) pairKey {
	if i > j {
		i, j = j, i
	}
	return pairKey(uint64(i)<<32 | uint64(j))
}

func (k pairKey) indices() (i, j int) {
	return int(k >> 32), int(k & 0xffffffff)
}

// Pair is an unordered pair of particle indices with I < J.
type Pair struct {
	I, J int
}

// PairSet is a set of unordered particle index pairs. Its memory footprint
// grows with the number of stored pairs rather than with the square of the
// particle count.
//
// Contains may be called concurrently as long as no goroutine is calling Add.
type PairSet struct {
	keys map[pairKey]struct{}
}

// NewPairSet creates an empty PairSet.
func NewPairSet() *PairSet {
	return &PairSet{make(map[pairKey]struct{})}
}

// Contains reports whether {i, j} is in the set.
func (set *PairSet) Contains(i, j int) bool {
	_, ok := set.keys[newPairKey(i, j)]
	return ok
}

// Add inserts {i, j} and reports whether it was absent.
func (set *PairSet) Add(i, j int) bool {
	k := newPairKey(i, j)
	if _, ok := set.keys[k]; ok {
		return false
	}
	set.keys[k] = struct{}{}
	return true
}

// Len returns the number of pairs in the set.
func (set *PairSet) Len() int { return len(set.keys) }

// Pairs returns every pair in the set, sorted by I and then J.
func (set *PairSet) Pairs() []Pair {
	keys := make([]pairKey, 0, len(set.keys))
	for k := range set.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	pairs := make([]Pair, len(keys))
	for n, k := range keys {
		pairs[n].I, pairs[n].J = k.indices()
	}
	return pairs
}

// CollisionTracker counts pairs of particles which come within the collision
// radius of one another. Every pair is counted at most once over the
// tracker's lifetime, no matter how many steps it spends in contact.
type CollisionTracker struct {
	set   *PairSet
	total int64
}

// NewCollisionTracker creates a tracker which has not seen any collisions.
func NewCollisionTracker() *CollisionTracker {
	return &CollisionTracker{set: NewPairSet()}
}

// Record counts the pairs in ps which collide for the first time and returns
// the number of new collisions.
func (ct *CollisionTracker) Record(ps []Particle) int64 {
	var buf []pairKey
	buf = ct.scan(ps, 0, 1, buf)
	return ct.merge(buf)
}

// Total returns the number of distinct pairs which have collided so far.
func (ct *CollisionTracker) Total() int64 { return ct.total }

// Set returns the tracker's membership set. It must not be modified.
func (ct *CollisionTracker) Set() *PairSet { return ct.set }

// scan appends every unrecorded colliding pair {i, j} with i in
// {start, start + stride, start + 2*stride, ...} to buf. It only reads the
// membership set, so workers with different starting offsets can scan
// concurrently. Each pair is found by exactly one offset.
func (ct *CollisionTracker) scan(
	ps []Particle, start, stride int, buf []pairKey,
) []pairKey {
	for i := start; i < len(ps); i += stride {
		for j := i + 1; j < len(ps); j++ {
			k := newPairKey(i, j)
			if _, ok := ct.set.keys[k]; ok {
				continue
			}
			if dist2(&ps[i], &ps[j]) < Epsilon2 {
				buf = append(buf, k)
			}
		}
	}
	return buf
}

// merge inserts the pairs found by scan and returns the number inserted.
func (ct *CollisionTracker) merge(buf []pairKey) int64 {
	n := int64(0)
	for _, k := range buf {
		if _, ok := ct.set.keys[k]; ok {
			continue
		}
		ct.set.keys[k] = struct{}{}
		n++
	}
	ct.total += n
	return n
}

// CountContacts returns the number of pairs currently within the collision
// radius, whether or not they have collided before.
func CountContacts(ps []Particle) int64 {
	n := int64(0)
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			if dist2(&ps[i], &ps[j]) < Epsilon2 {
				n++
			}
		}
	}
	return n
}
