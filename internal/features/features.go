// Package features derives the model's feature vector from raw relational
// fields. The trainer and the scorer both go through this package, so the
// derivation rules exist exactly once and train/serve skew cannot happen.
package features

import (
	"fmt"
	"strconv"
	"strings"
)

// Names is the feature schema contract. Order matters: every vector handed to
// the model must follow this order, and the model artifact records it.
var Names = []string{"buyer_brank", "category_match", "budget_specified"}

// PrefixLength is the fixed prefix used by the partial category match rule.
const PrefixLength = 5

// RawLead is the joined row a lead is scored from, built at the storage
// boundary.
type RawLead struct {
	RFQID         string
	BuyerBRank    int
	RFQCategory   string
	BuyerCategory string
	BudgetMin     *float64
	BudgetMax     *float64
}

// CategoryMatch buckets the similarity between an RFQ's category and the
// buyer's primary category: exact equality is 1.0, containing the first
// PrefixLength bytes of the buyer category is 0.6, anything else 0.2.
// Comparison is case sensitive.
func CategoryMatch(rfqCategory, buyerCategory string) float64 {
	if rfqCategory == buyerCategory {
		return 1.0
	}
	prefix := buyerCategory
	if len(prefix) > PrefixLength {
		prefix = prefix[:PrefixLength]
	}
	if strings.Contains(rfqCategory, prefix) {
		return 0.6
	}
	return 0.2
}

// BudgetSpecified collapses the nullable budget pair to a {0,1} flag: 1 iff
// both bounds are present.
func BudgetSpecified(budgetMin, budgetMax *float64) int {
	if budgetMin != nil && budgetMax != nil {
		return 1
	}
	return 0
}

// Vector builds the feature vector for a lead in Names order. A lead without
// a valid buyer rank cannot be scored and fails fast.
func Vector(lead RawLead) ([]float64, error) {
	if lead.BuyerBRank < 1 || lead.BuyerBRank > 5 {
		return nil, fmt.Errorf("lead %s: buyer rank %d outside 1..5", lead.RFQID, lead.BuyerBRank)
	}

	return []float64{
		float64(lead.BuyerBRank),
		CategoryMatch(lead.RFQCategory, lead.BuyerCategory),
		float64(BudgetSpecified(lead.BudgetMin, lead.BudgetMax)),
	}, nil
}

// ParseBinaryLabel maps the textual truthy encodings found in historical
// exports to a strict binary integer. The accepted truthy set is exactly
// t, true, 1, yes, y (case insensitive, trimmed); every other value maps
// to 0.
func ParseBinaryLabel(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "t", "true", "1", "yes", "y":
		return 1
	default:
		return 0
	}
}

// CoerceNumeric parses a raw feature value, substituting def when the value
// is unparseable. A single bad row must not abort a whole batch.
func CoerceNumeric(value string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}
	return v
}
