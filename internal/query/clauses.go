package query

import "time"

// matchClause scores documents whose field matches the given text.
func matchClause(field string, value any) M {
	return M{"match": M{field: value}}
}

// matchBoostClause is matchClause with a relevance boost.
func matchBoostClause(field, text string, boost float64) M {
	return M{"match": M{field: M{"query": text, "boost": boost}}}
}

// termsClause filters documents whose field equals any of the values.
func termsClause(field string, values []string) M {
	return M{"terms": M{field: values}}
}

// idsClause filters on the backend document id.
func idsClause(ids []string) M {
	return termsClause("_id", ids)
}

// dateRangeClause filters a date field into [start, end].
func dateRangeClause(field string, start, end time.Time) M {
	return M{"range": M{field: M{
		"gte": start.UTC().Format(time.RFC3339),
		"lte": end.UTC().Format(time.RFC3339),
	}}}
}

// countRangeClause filters a numeric field; either bound may be nil.
func countRangeClause(field string, min, max *int64) M {
	bounds := M{}
	if min != nil {
		bounds["gte"] = *min
	}
	if max != nil {
		bounds["lte"] = *max
	}
	return M{"range": M{field: bounds}}
}

// sortClause orders on a single field.
func sortClause(field, dir string) M {
	return M{field: M{"order": dir}}
}

// scoreTiebreaker is the trailing _score clause of every sort block.
func scoreTiebreaker() M {
	return sortClause("_score", "desc")
}
