// Package draw implements the seeded weighted sampling used to select
// campaign winners. It is pure: the same entries, winner count and seed
// always produce the same result.
package draw

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/questx-lab/giveaway/pkg/crypto"
)

// Entry is one entrant of the pool and its ticket weight.
type Entry struct {
	EntrantID string `json:"entrant_id"`
	Weight    int64  `json:"weight"`
}

// Result is a drawn winner. Rank starts from 1.
type Result struct {
	EntrantID string `json:"entrant_id"`
	Rank      int    `json:"rank"`
	Weight    int64  `json:"weight"`
}

// pcgIncrement is the second PCG state word. It is fixed so that the seed
// alone determines the stream.
const pcgIncrement = 0x9e3779b97f4a7c15

// Pool returns the entries with a positive weight, ordered by entrant id.
func Pool(entries []Entry) []Entry {
	pool := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Weight > 0 {
			pool = append(pool, e)
		}
	}

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].EntrantID < pool[j].EntrantID
	})

	return pool
}

// Hash fingerprints the pool. Entries with zero weight do not change it.
func Hash(entries []Entry) string {
	b := strings.Builder{}
	for _, e := range Pool(entries) {
		fmt.Fprintf(&b, "%s:%d\n", e.EntrantID, e.Weight)
	}

	return crypto.SHA256([]byte(b.String()))
}

// Total returns the sum of positive weights.
func Total(entries []Entry) int64 {
	total := int64(0)
	for _, e := range entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}

	return total
}

// Draw selects up to n winners without replacement. Each round picks an
// entrant with probability proportional to its weight among the entrants
// not drawn yet. It stops early when the pool is exhausted.
func Draw(entries []Entry, n int, seed int64) []Result {
	pool := Pool(entries)
	rng := rand.New(rand.NewPCG(uint64(seed), pcgIncrement))

	results := []Result{}
	cumulative := make([]int64, len(pool))
	for rank := 1; rank <= n && len(pool) > 0; rank++ {
		total := int64(0)
		for i, e := range pool {
			total += e.Weight
			cumulative[i] = total
		}

		target := rng.Int64N(total)
		idx := sort.Search(len(pool), func(i int) bool {
			return cumulative[i] > target
		})

		winner := pool[idx]
		results = append(results, Result{EntrantID: winner.EntrantID, Rank: rank, Weight: winner.Weight})

		pool = append(pool[:idx], pool[idx+1:]...)
		cumulative = cumulative[:len(pool)]
	}

	return results
}

// Verify re-runs the draw and reports whether it reproduces expected.
func Verify(entries []Entry, n int, seed int64, expected []Result) bool {
	actual := Draw(entries, n, seed)
	if len(actual) != len(expected) {
		return false
	}

	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}

	return true
}
