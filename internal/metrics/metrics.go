// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when the HTTP server is running.
package metrics

import "expvar"

// Operation counters.
var (
	QueriesTotal        = expvar.NewInt("topgo_queries_total")
	RetrievalQueries    = expvar.NewInt("topgo_retrieval_queries_total")
	ConversationalTotal = expvar.NewInt("topgo_conversational_total")
	InvalidDistricts    = expvar.NewInt("topgo_invalid_district_total")
	FallbackAnswers     = expvar.NewInt("topgo_fallback_answers_total")
	VenuesIndexed       = expvar.NewInt("topgo_venues_indexed_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
