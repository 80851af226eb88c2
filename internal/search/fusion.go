// Package search implements the read-side search service: query
// compilation dispatch, hybrid fan-out with Reciprocal Rank Fusion, and
// mapping store hits into the domain model.
package search

import (
	"sort"

	"github.com/newscope/searcher/internal/store"
)

// RRFConstant is the standard RRF smoothing parameter. k=60 is the
// empirically validated default.
const RRFConstant = 60

type fusedHit struct {
	hit  store.Hit
	rank float64
}

// FuseRRF merges a lexical and a kNN hit list with Reciprocal Rank
// Fusion: each hit contributes 1/(k+i+1) per list it appears in, with i
// its zero-based position. Duplicates keep the lexical hit's payload and
// accumulate both contributions. Ties preserve first-appearance order,
// lexical list first.
func FuseRRF(lexical, knn []store.Hit) []store.Hit {
	byID := make(map[string]*fusedHit, len(lexical)+len(knn))
	order := make([]*fusedHit, 0, len(lexical)+len(knn))

	for i, h := range lexical {
		f := &fusedHit{hit: h, rank: 1.0 / float64(RRFConstant+i+1)}
		byID[h.ID] = f
		order = append(order, f)
	}
	for i, h := range knn {
		contribution := 1.0 / float64(RRFConstant+i+1)
		if f, ok := byID[h.ID]; ok {
			f.rank += contribution
			continue
		}
		f := &fusedHit{hit: h, rank: contribution}
		byID[h.ID] = f
		order = append(order, f)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return order[a].rank > order[b].rank
	})

	fused := make([]store.Hit, len(order))
	for i, f := range order {
		fused[i] = f.hit
	}
	return fused
}
