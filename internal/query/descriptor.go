// Package query compiles validated search queries into document-store
// request descriptors: a lexical bool query or a kNN descriptor, plus
// sort order, pagination and the projection mask.
package query

// Kind discriminates lexical from kNN descriptors.
type Kind int

const (
	Lexical Kind = iota
	KNN
)

// M is a JSON-shaped query clause.
type M = map[string]any

// Bool is an immutable lexical bool query. Clause slices are built once
// by the compiler and never mutated afterwards.
type Bool struct {
	Must   []M
	Should []M
	Filter []M

	// MinimumShouldMatch is 1 iff Should is non-empty.
	MinimumShouldMatch int
}

// KNNQuery is a k-nearest-neighbour descriptor. All predicates are
// pre-filters; only vector similarity contributes to the score.
type KNNQuery struct {
	Field         string
	QueryVector   []float32
	K             int
	NumCandidates int
	Filter        []M
}

// Descriptor is a compiled store request.
type Descriptor struct {
	Kind Kind

	Bool *Bool
	KNN  *KNNQuery

	// Sort is the sort block; the trailing clause is the _score
	// tiebreaker when TrackScores is set.
	Sort        []M
	TrackScores bool

	// From and Size paginate lexical searches. Size 0 means unset; the
	// kNN side returns at most K hits and is not paginable.
	From int
	Size int

	// SourceIncludes is the projection mask; nil returns all fields.
	SourceIncludes []string
	// SourceExcludes always strips analyzer.embeddings on articles.
	SourceExcludes []string
}

// Body renders the descriptor as a search request body.
func (d *Descriptor) Body() M {
	body := M{}

	switch d.Kind {
	case Lexical:
		boolBody := M{
			"must":                 clauses(d.Bool.Must),
			"should":               clauses(d.Bool.Should),
			"filter":               clauses(d.Bool.Filter),
			"minimum_should_match": d.Bool.MinimumShouldMatch,
		}
		body["query"] = M{"bool": boolBody}
		body["from"] = d.From
		if d.Size > 0 {
			body["size"] = d.Size
		}
	case KNN:
		body["knn"] = M{
			"field":          d.KNN.Field,
			"query_vector":   d.KNN.QueryVector,
			"k":              d.KNN.K,
			"num_candidates": d.KNN.NumCandidates,
			"filter":         clauses(d.KNN.Filter),
		}
	}

	if len(d.Sort) > 0 {
		body["sort"] = d.Sort
	}
	if d.TrackScores {
		body["track_scores"] = true
	}
	if d.SourceIncludes != nil || d.SourceExcludes != nil {
		src := M{}
		if d.SourceIncludes != nil {
			src["includes"] = d.SourceIncludes
		}
		if d.SourceExcludes != nil {
			src["excludes"] = d.SourceExcludes
		}
		body["_source"] = src
	}
	return body
}

// clauses normalizes a nil slice to an empty one so the rendered JSON
// always carries the clause arrays.
func clauses(ms []M) []M {
	if ms == nil {
		return []M{}
	}
	return ms
}
