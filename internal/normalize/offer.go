package normalize

import (
	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

// offerSummaryKeys mark an object as an offer rejection summary, old and new field names
var offerSummaryKeys = []string{
	"totalOffers",
	"totalRejected",
	"totalCandidateDeclined",
	"rejectionRate",
	"declineRate",
	"reasons",
}

// ExtractOfferRejection finds the offer rejection summary in a response.
// Accepted shapes:
//
//	{"offer_rejection_summary": {...}}
//	[{"offer_rejection_summary": {...}}]
//	[{"json": {"offer_rejection_summary": {...}}}]
//	{"totalOffers": ..., "reasons": [...]}
func ExtractOfferRejection(raw jsonval.Value) (jsonval.Value, bool) {
	if s, ok := raw.Str(); ok {
		parsed, ok := FirstOf(s, textAttempts...)
		if !ok {
			return jsonval.Value{}, false
		}
		raw = parsed
	}

	for _, obj := range candidates(raw) {
		if summary, ok := obj.Get("offer_rejection_summary"); ok {
			if summary.IsObject() {
				return summary, true
			}
			continue
		}
		for _, key := range offerSummaryKeys {
			if obj.Has(key) {
				return obj, true
			}
		}
	}
	return jsonval.Value{}, false
}
