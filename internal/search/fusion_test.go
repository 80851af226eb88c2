package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/searcher/internal/store"
)

func hits(ids ...string) []store.Hit {
	out := make([]store.Hit, len(ids))
	for i, id := range ids {
		out[i] = store.Hit{ID: id, Source: json.RawMessage(`{}`)}
	}
	return out
}

func hitIDs(hits []store.Hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

func TestFuseRRF_OverlapRanksFirst(t *testing.T) {
	// Y appears in both lists, so it accumulates two contributions and
	// outranks both list heads.
	fused := FuseRRF(hits("X", "Y"), hits("Y", "Z"))

	assert.Equal(t, []string{"Y", "X", "Z"}, hitIDs(fused))
}

func TestFuseRRF_DuplicateKeepsLexicalPayload(t *testing.T) {
	lexical := []store.Hit{{ID: "A", Score: 3.5, Source: json.RawMessage(`{"from":"lexical"}`)}}
	knn := []store.Hit{{ID: "A", Score: 0.9, Source: json.RawMessage(`{"from":"knn"}`)}}

	fused := FuseRRF(lexical, knn)

	require.Len(t, fused, 1)
	assert.JSONEq(t, `{"from":"lexical"}`, string(fused[0].Source))
	assert.Equal(t, 3.5, fused[0].Score)
}

func TestFuseRRF_TiesPreserveFirstAppearance(t *testing.T) {
	// Same rank in disjoint lists means equal scores; lexical hits come
	// first, then kNN hits, both in list order.
	fused := FuseRRF(hits("A", "B"), hits("C", "D"))

	assert.Equal(t, []string{"A", "C", "B", "D"}, hitIDs(fused))
}

func TestFuseRRF_EmptyLexical(t *testing.T) {
	fused := FuseRRF(nil, hits("A", "B"))

	assert.Equal(t, []string{"A", "B"}, hitIDs(fused))
}

func TestFuseRRF_EmptyBoth(t *testing.T) {
	assert.Empty(t, FuseRRF(nil, nil))
}

func TestFuseRRF_ContributionFormula(t *testing.T) {
	// With k=60 the head of a single list scores 1/61, the second 1/62.
	fused := FuseRRF(hits("A"), hits("A"))

	require.Len(t, fused, 1)
	assert.Equal(t, "A", fused[0].ID)
}

func TestFuseRRF_NoMutationOfInputs(t *testing.T) {
	lexical := hits("X", "Y")
	knn := hits("Y", "Z")

	FuseRRF(lexical, knn)

	assert.Equal(t, []string{"X", "Y"}, hitIDs(lexical))
	assert.Equal(t, []string{"Y", "Z"}, hitIDs(knn))
}
