package match

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/applyflow/applyflow/pipeline/listing"
	"github.com/applyflow/applyflow/pipeline/profile"
	"github.com/applyflow/applyflow/pkg/kernel"
)

// Factor weights on the 0-100 scale. The salary factor carries weight 10;
// skills dominate because they are the only factor extracted from the résumé
// rather than declared.
const (
	weightSkills     = 40
	weightTitle      = 25
	weightLocation   = 20
	weightSalary     = 10
	weightEmployment = 5

	maxScore = 100

	// Non-full fallbacks. None of the declared-preference factors bottom
	// out at zero: absence of information must not bury a candidate.
	titleDefault      = 5
	locationPartial   = 10
	locationDefault   = 5
	salaryNeutral     = 5
	employmentDefault = 2
)

// ScoreResult is the outcome of scoring one profile against one listing.
// Reasons are present only for factors contributing above their default.
type ScoreResult struct {
	Total   int
	Reasons []Reason
}

// Score rates a listing for a candidate. Pure and deterministic: no I/O, no
// clock, no randomness; identical inputs always yield identical output.
func Score(p *profile.CandidateProfile, l *listing.Listing) ScoreResult {
	result := ScoreResult{}

	result.add(scoreSkills(p.Skills, l.SearchText()))
	result.add(scoreTitle(p.DesiredTitles, l.Title))
	result.add(scoreLocation(p.RemotePreference, l.RemoteType))
	result.add(scoreSalary(p.MinSalary, l.SalaryText))
	result.add(scoreEmployment(p.EmploymentTypes, l.EmploymentType))

	if result.Total > maxScore {
		result.Total = maxScore
	}
	if result.Total < 0 {
		result.Total = 0
	}
	return result
}

// add folds one factor into the running total. A nil reason marks a
// default-valued contribution that should not be surfaced to consumers.
func (r *ScoreResult) add(contribution int, reason *Reason) {
	r.Total += contribution
	if reason != nil {
		reason.Contribution = contribution
		r.Reasons = append(r.Reasons, *reason)
	}
}

// scoreSkills scales the skill weight by the fraction of profile skills
// found in the listing text. Zero skills contribute zero, silently.
func scoreSkills(skills []string, text string) (int, *Reason) {
	if len(skills) == 0 || strings.TrimSpace(text) == "" {
		return 0, nil
	}

	haystack := strings.ToLower(text)
	matched := make([]string, 0, len(skills))
	for _, skill := range skills {
		needle := strings.ToLower(strings.TrimSpace(skill))
		if needle != "" && strings.Contains(haystack, needle) {
			matched = append(matched, skill)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	contribution := int(math.Round(float64(weightSkills) * float64(len(matched)) / float64(len(skills))))
	return contribution, &Reason{
		Kind:        FactorSkills,
		Description: fmt.Sprintf("%d of %d skills found in listing: %s", len(matched), len(skills), strings.Join(matched, ", ")),
	}
}

// scoreTitle gives full weight when any desired title and the listing title
// contain each other, a small default otherwise. No desired titles is the
// default case, not a penalty.
func scoreTitle(desired []string, listingTitle string) (int, *Reason) {
	title := strings.ToLower(strings.TrimSpace(listingTitle))
	if title == "" {
		return titleDefault, nil
	}

	for _, want := range desired {
		needle := strings.ToLower(strings.TrimSpace(want))
		if needle == "" {
			continue
		}
		if strings.Contains(title, needle) || strings.Contains(needle, title) {
			return weightTitle, &Reason{
				Kind:        FactorTitle,
				Description: fmt.Sprintf("Desired title %q matches listing title %q", want, listingTitle),
			}
		}
	}
	return titleDefault, nil
}

// scoreLocation rates the remote-type fit. Exact (or "any") preference gets
// full weight; a hybrid-accepting candidate gets partial credit on remote
// and onsite listings.
func scoreLocation(pref kernel.RemotePreference, remoteType kernel.RemoteType) (int, *Reason) {
	if pref == "" {
		pref = kernel.RemotePreferenceAny
	}
	if pref.Matches(remoteType) {
		return weightLocation, &Reason{
			Kind:        FactorLocation,
			Description: fmt.Sprintf("Remote preference %q fits listing type %q", pref, remoteType),
		}
	}
	if pref == kernel.RemotePreferenceHybrid {
		return locationPartial, &Reason{
			Kind:        FactorLocation,
			Description: fmt.Sprintf("Hybrid preference partially fits listing type %q", remoteType),
		}
	}
	return locationDefault, nil
}

// scoreSalary compares the candidate's floor with the first number parsed
// out of the listing's salary text. Missing data on either side is neutral,
// never a mismatch.
func scoreSalary(minSalary *int64, salaryText string) (int, *Reason) {
	if minSalary == nil {
		return salaryNeutral, nil
	}
	parsed, ok := ParseSalary(salaryText)
	if !ok {
		return salaryNeutral, nil
	}
	if parsed < *minSalary {
		return 0, nil
	}
	return weightSalary, &Reason{
		Kind:        FactorSalary,
		Description: fmt.Sprintf("Listed salary %d meets floor %d", parsed, *minSalary),
	}
}

// scoreEmployment gives full weight when the listing is full-time or matches
// a preferred type, a reduced default otherwise.
func scoreEmployment(preferred []kernel.EmploymentType, listingType kernel.EmploymentType) (int, *Reason) {
	full := listingType == kernel.EmploymentTypeFullTime
	if !full {
		for _, p := range preferred {
			if p == listingType {
				full = true
				break
			}
		}
	}
	if !full {
		return employmentDefault, nil
	}
	return weightEmployment, &Reason{
		Kind:        FactorEmployment,
		Description: fmt.Sprintf("Employment type %q fits", listingType),
	}
}

// salaryPattern captures the first numeric token in free text: optional
// currency symbol, comma-grouped or plain digits, optional decimals.
var salaryPattern = regexp.MustCompile(`[$€£]?\s*(\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`)

// ParseSalary extracts the first number from a salary range string.
// Unparseable text returns ok=false, never an error.
func ParseSalary(text string) (int64, bool) {
	m := salaryPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
