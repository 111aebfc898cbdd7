package classify

import (
	"strings"
	"testing"
)

func TestRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect Recommendation
	}{
		{
			name:   "excellent and strong",
			input:  "The candidate shows excellent communication and strong technical skills.",
			expect: Shortlist,
		},
		{
			name:   "strengths but lacking",
			input:  "The candidate has some strengths but lacking in relevant experience.",
			expect: Reject,
		},
		{
			name:   "strengths without negatives",
			input:  "Key strengths: Go, Kubernetes, mentoring.",
			expect: Shortlist,
		},
		{
			name:   "strengths with weak",
			input:  "Strengths are few and the project section is weak.",
			expect: Reject,
		},
		{
			name:   "strengths with insufficient",
			input:  "Strengths noted, but education is insufficient.",
			expect: Reject,
		},
		{
			name:   "positive keyword wins over negatives",
			input:  "Excellent writing, but lacking any certifications and weak projects.",
			expect: Shortlist,
		},
		{
			name:   "case insensitive",
			input:  "IMPRESSIVE portfolio",
			expect: Shortlist,
		},
		{
			name:   "substring inside another word",
			input:  "He strongly prefers remote work.",
			expect: Shortlist,
		},
		{
			name:   "no negation scoping",
			input:  "The applicant is not qualified for this role.",
			expect: Shortlist,
		},
		{
			name:   "singular strength is not strengths",
			input:  "One strength: punctuality.",
			expect: Reject,
		},
		{
			name:   "neutral text",
			input:  "The resume lists two previous employers.",
			expect: Reject,
		},
		{
			name:   "empty",
			input:  "",
			expect: Reject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Recommend(tt.input); got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}

func TestRecommendEachPositiveKeyword(t *testing.T) {
	t.Parallel()

	for _, keyword := range positiveKeywords {
		for _, variant := range []string{keyword, strings.ToUpper(keyword), "prefix " + keyword + " suffix, weak, lacking"} {
			if got := Recommend(variant); got != Shortlist {
				t.Fatalf("expected Shortlist for %q, got %s", variant, got)
			}
		}
	}
}

func TestRecommendEachNegativeKeywordVetoesStrengths(t *testing.T) {
	t.Parallel()

	for _, keyword := range negativeKeywords {
		input := "Strengths: teamwork. Areas: " + strings.ToUpper(keyword)
		if got := Recommend(input); got != Reject {
			t.Fatalf("expected Reject for %q, got %s", input, got)
		}
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	t.Parallel()

	input := "Strengths include leadership."
	first := Recommend(input)
	for i := 0; i < 100; i++ {
		if got := Recommend(input); got != first {
			t.Fatalf("run %d: expected %s, got %s", i, first, got)
		}
	}
}
