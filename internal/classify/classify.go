// Package classify turns evaluation prose into a shortlist/reject decision.
package classify

import "strings"

type Recommendation string

const (
	Shortlist Recommendation = "Shortlist"
	Reject    Recommendation = "Reject"
)

var (
	positiveKeywords = []string{"excellent", "strong", "impressive", "qualified"}
	negativeKeywords = []string{"weak", "lacking", "insufficient"}
)

const strengthsKeyword = "strengths"

// Recommend applies the keyword rule to the evaluation text.
// Matching is by plain substring on the lower-cased text, so "strongly"
// counts as "strong" and "not qualified" still counts as "qualified".
func Recommend(evaluation string) Recommendation {
	lower := strings.ToLower(evaluation)

	if containsAny(lower, positiveKeywords) {
		return Shortlist
	}

	if strings.Contains(lower, strengthsKeyword) && !containsAny(lower, negativeKeywords) {
		return Shortlist
	}

	return Reject
}

func (r Recommendation) String() string {
	return string(r)
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
