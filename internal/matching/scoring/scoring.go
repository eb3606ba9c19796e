// Package scoring ranks realtor candidates against a lead. Scoring is pure:
// same lead and candidate always yield the same result, so previews and
// assignments agree.
package scoring

import (
	"fmt"
	"strings"

	"homematch_backend/internal/matching/repository"
)

// Score band maxima. The four bands always sum to at most 100.
const (
	MaxLocationScore     = 40
	MaxLanguageScore     = 30
	MaxVerificationScore = 20
	MaxAvailabilityScore = 10

	stateLocationScore   = 20
	neutralLanguageScore = 15
)

// Result is one candidate's score breakdown for a lead.
type Result struct {
	Candidate         repository.Candidate
	LocationScore     int
	LanguageScore     int
	VerificationScore int
	AvailabilityScore int
	Total             int
	Reason            string
}

// Score computes the breakdown for a single candidate.
//
// Location favors exact coverage: a candidate serving the lead's city or ZIP
// gets the full band, same-state coverage half, anything else zero. Language
// is all-or-nothing against a stated preference; a lead with no preference
// gives every candidate the neutral midpoint so language never dominates
// ranking when the buyer did not ask. Verification is binary. Availability
// scales with remaining capacity so emptier books rank higher among
// otherwise equal candidates.
func Score(lead repository.Lead, cand repository.Candidate) Result {
	res := Result{Candidate: cand}

	exactCity := containsFold(cand.ServiceCities, lead.City)
	exactZip := lead.ZipCode != "" && containsFold(cand.ServiceZips, lead.ZipCode)
	sameState := lead.State != "" && containsFold(cand.ServiceStates, lead.State)

	switch {
	case exactCity || exactZip:
		res.LocationScore = MaxLocationScore
	case sameState:
		res.LocationScore = stateLocationScore
	}

	wantsLanguage := lead.Language != nil && *lead.Language != ""
	speaksLanguage := wantsLanguage && containsFold(cand.Languages, *lead.Language)
	switch {
	case speaksLanguage:
		res.LanguageScore = MaxLanguageScore
	case !wantsLanguage:
		res.LanguageScore = neutralLanguageScore
	}

	if cand.VerificationStatus == "VERIFIED" {
		res.VerificationScore = MaxVerificationScore
	}

	res.AvailabilityScore = availabilityScore(cand.CurrentLeadCount, cand.Capacity)

	res.Total = res.LocationScore + res.LanguageScore + res.VerificationScore + res.AvailabilityScore
	res.Reason = buildReason(lead, exactCity, exactZip, sameState, speaksLanguage)
	return res
}

func availabilityScore(current, capacity int) int {
	if capacity <= 0 || current >= capacity {
		return 0
	}
	if current < 0 {
		current = 0
	}
	return MaxAvailabilityScore * (capacity - current) / capacity
}

// buildReason produces the human-readable explanation shown next to each
// candidate. Location first, then language, joined with "+".
func buildReason(lead repository.Lead, exactCity, exactZip, sameState, speaksLanguage bool) string {
	parts := make([]string, 0, 2)

	switch {
	case exactCity:
		parts = append(parts, fmt.Sprintf("serves %s", lead.City))
	case exactZip:
		parts = append(parts, fmt.Sprintf("covers ZIP %s", lead.ZipCode))
	case sameState:
		parts = append(parts, fmt.Sprintf("covers %s", lead.State))
	}

	if speaksLanguage {
		parts = append(parts, fmt.Sprintf("speaks %s", *lead.Language))
	}

	if len(parts) == 0 {
		return "available capacity"
	}
	return strings.Join(parts, " + ")
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}
