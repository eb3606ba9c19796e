package scoring

import (
	"testing"

	"homematch_backend/internal/matching/repository"
)

func strPtr(s string) *string { return &s }

func verifiedCandidate() repository.Candidate {
	return repository.Candidate{
		FullName:           "Priya Sharma",
		VerificationStatus: "VERIFIED",
		ServiceCities:      []string{"Frisco"},
		ServiceZips:        []string{"75034"},
		ServiceStates:      []string{"TX"},
		Languages:          []string{"English", "Hindi"},
		CurrentLeadCount:   0,
		Capacity:           10,
	}
}

func TestScoreFullMatch(t *testing.T) {
	lead := repository.Lead{
		City:     "Frisco",
		State:    "TX",
		ZipCode:  "75034",
		Language: strPtr("Hindi"),
	}

	res := Score(lead, verifiedCandidate())

	if res.LocationScore != 40 {
		t.Fatalf("location score = %d, want 40", res.LocationScore)
	}
	if res.LanguageScore != 30 {
		t.Fatalf("language score = %d, want 30", res.LanguageScore)
	}
	if res.VerificationScore != 20 {
		t.Fatalf("verification score = %d, want 20", res.VerificationScore)
	}
	if res.AvailabilityScore != 10 {
		t.Fatalf("availability score = %d, want 10", res.AvailabilityScore)
	}
	if res.Total != 100 {
		t.Fatalf("total = %d, want 100", res.Total)
	}
	if res.Reason != "serves Frisco + speaks Hindi" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestScoreZipFallback(t *testing.T) {
	lead := repository.Lead{City: "Little Elm", State: "TX", ZipCode: "75034"}
	cand := verifiedCandidate()
	cand.ServiceCities = []string{"Frisco"}

	res := Score(lead, cand)

	if res.LocationScore != 40 {
		t.Fatalf("location score = %d, want 40 for ZIP coverage", res.LocationScore)
	}
	if res.Reason != "covers ZIP 75034" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestScoreStateOnly(t *testing.T) {
	lead := repository.Lead{City: "Austin", State: "TX", ZipCode: "78701"}

	res := Score(lead, verifiedCandidate())

	if res.LocationScore != 20 {
		t.Fatalf("location score = %d, want 20 for state coverage", res.LocationScore)
	}
	if res.Reason != "covers TX" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestScoreNoLocationOverlap(t *testing.T) {
	lead := repository.Lead{City: "Denver", State: "CO", ZipCode: "80202"}

	res := Score(lead, verifiedCandidate())

	if res.LocationScore != 0 {
		t.Fatalf("location score = %d, want 0", res.LocationScore)
	}
}

func TestScoreLanguageNeutralBaseline(t *testing.T) {
	lead := repository.Lead{City: "Frisco", State: "TX"}

	res := Score(lead, verifiedCandidate())

	if res.LanguageScore != 15 {
		t.Fatalf("language score = %d, want neutral 15 when lead states no preference", res.LanguageScore)
	}
}

func TestScoreLanguageUnmetPreference(t *testing.T) {
	lead := repository.Lead{City: "Frisco", State: "TX", Language: strPtr("Mandarin")}

	res := Score(lead, verifiedCandidate())

	if res.LanguageScore != 0 {
		t.Fatalf("language score = %d, want 0 for unmet preference", res.LanguageScore)
	}
	if res.Reason != "serves Frisco" {
		t.Fatalf("reason = %q, language must not appear when preference is unmet", res.Reason)
	}
}

func TestScoreLanguageCaseInsensitive(t *testing.T) {
	lead := repository.Lead{City: "Frisco", State: "TX", Language: strPtr("hindi")}

	res := Score(lead, verifiedCandidate())

	if res.LanguageScore != 30 {
		t.Fatalf("language score = %d, want 30 for case-insensitive match", res.LanguageScore)
	}
}

func TestScoreUnverifiedCandidate(t *testing.T) {
	lead := repository.Lead{City: "Frisco", State: "TX"}
	cand := verifiedCandidate()
	cand.VerificationStatus = "PENDING"

	res := Score(lead, cand)

	if res.VerificationScore != 0 {
		t.Fatalf("verification score = %d, want 0 for PENDING", res.VerificationScore)
	}
}

func TestScoreAvailabilityScales(t *testing.T) {
	lead := repository.Lead{City: "Frisco", State: "TX"}

	cases := []struct {
		current, capacity, want int
	}{
		{0, 10, 10},
		{5, 10, 5},
		{9, 10, 1},
		{10, 10, 0},
		{3, 4, 2},
		{0, 1, 10},
	}
	for _, tc := range cases {
		cand := verifiedCandidate()
		cand.CurrentLeadCount = tc.current
		cand.Capacity = tc.capacity

		res := Score(lead, cand)
		if res.AvailabilityScore != tc.want {
			t.Fatalf("availability(%d/%d) = %d, want %d",
				tc.current, tc.capacity, res.AvailabilityScore, tc.want)
		}
	}
}

func TestScoreTotalIsSumOfBands(t *testing.T) {
	lead := repository.Lead{City: "Plano", State: "TX", Language: strPtr("Spanish")}
	cand := verifiedCandidate()
	cand.CurrentLeadCount = 7

	res := Score(lead, cand)

	sum := res.LocationScore + res.LanguageScore + res.VerificationScore + res.AvailabilityScore
	if res.Total != sum {
		t.Fatalf("total = %d, want sum of bands %d", res.Total, sum)
	}
	if res.Total > 100 {
		t.Fatalf("total = %d, must never exceed 100", res.Total)
	}
}

func TestScoreReasonFallback(t *testing.T) {
	lead := repository.Lead{City: "Denver", State: "CO"}
	cand := verifiedCandidate()

	res := Score(lead, cand)

	if res.Reason != "available capacity" {
		t.Fatalf("reason = %q, want fallback when nothing matched", res.Reason)
	}
}
