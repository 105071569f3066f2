package match

import (
	"strings"

	"PoolScanner/internal/domain"
)

// DefaultThreshold is the minimum acceptance score for the scored matcher.
const DefaultThreshold = 0.6

// Signal weights. Postal-code equality is the strongest signal and can
// push a borderline name match over threshold on its own.
const (
	jaccardWeight   = 0.5
	substringWeight = 0.3
	addressWeight   = 0.15
	postalWeight    = 0.4
)

// nameSuffixes lists common facility-name suffixes in stripping order.
// At most one suffix is removed per name to avoid over-stripping.
var nameSuffixes = []string{
	" community recreation centre",
	" community recreation center",
	" recreation centre",
	" recreation center",
	" community centre",
	" community center",
	" aquatic centre",
	" aquatic center",
	" aquatics centre",
	" community pool",
	" swimming pool",
	" recreation",
	" centre",
	" center",
	" pool",
	" arena",
}

// Fallback resolves a name after the scored matcher misses; used for the
// manual name-to-facility override table.
type Fallback interface {
	Resolve(name string) (string, bool)
}

// Overrides is a hardcoded name-to-id stopgap table, tried only after
// scoring fails.
type Overrides map[string]string

// Resolve looks the lower-cased raw name up in the override table.
func (o Overrides) Resolve(name string) (string, bool) {
	id, ok := o[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Matcher scores raw location references against the facility directory.
type Matcher struct {
	Threshold float64
	Fallback  Fallback
}

// New builds a matcher with the given acceptance threshold; non-positive
// values fall back to the default.
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Match finds the best-scoring directory entry for a raw location name
// plus whatever address attributes the source supplied. Below-threshold
// candidates are never guessed into a match; the record stays unmatched
// for the unmatched statistics.
func (m *Matcher) Match(name string, attrs domain.Facility, directory []domain.Facility) (domain.MatchResult, bool) {
	if strings.TrimSpace(name) == "" {
		return domain.MatchResult{}, false
	}

	rawName := strings.ToLower(strings.TrimSpace(name))

	best := domain.MatchResult{}
	for _, facility := range directory {
		facilityName := strings.ToLower(strings.TrimSpace(facility.Name))

		if facilityName == rawName {
			return domain.MatchResult{FacilityID: facility.FacilityID, Confidence: 1.0}, true
		}

		score := ScoreMatch(rawName, attrs, facility)
		if score > best.Confidence {
			best = domain.MatchResult{FacilityID: facility.FacilityID, Confidence: score}
		}
	}

	if best.Confidence >= m.Threshold {
		return best, true
	}

	if m.Fallback != nil {
		if id, ok := m.Fallback.Resolve(name); ok {
			return domain.MatchResult{FacilityID: id, Confidence: m.Threshold}, true
		}
	}

	return domain.MatchResult{}, false
}

// ScoreMatch combines independent additive signals into a [0,1] score.
// Exported separately so thresholds stay configuration, not buried
// literals.
func ScoreMatch(rawName string, attrs domain.Facility, facility domain.Facility) float64 {
	locName := NormalizeName(rawName)
	facName := NormalizeName(strings.ToLower(facility.Name))

	score := 0.0

	locWords := wordSet(locName)
	facWords := wordSet(facName)
	if len(locWords) > 0 && len(facWords) > 0 {
		intersection := 0
		for word := range locWords {
			if facWords[word] {
				intersection++
			}
		}
		union := len(locWords) + len(facWords) - intersection
		score += float64(intersection) / float64(union) * jaccardWeight
	}

	if locName != "" && facName != "" &&
		(strings.Contains(facName, locName) || strings.Contains(locName, facName)) {
		score += substringWeight
	}

	locAddress := strings.ToLower(strings.TrimSpace(attrs.Address))
	facAddress := strings.ToLower(strings.TrimSpace(facility.Address))
	if locAddress != "" && facAddress != "" &&
		(strings.Contains(facAddress, locAddress) || strings.Contains(locAddress, facAddress)) {
		score += addressWeight
	}

	if locPostal := normalizePostal(attrs.PostalCode); locPostal != "" && locPostal == normalizePostal(facility.PostalCode) {
		score += postalWeight
	}

	if score > 1 {
		score = 1
	}
	return score
}

// NormalizeName strips at most one common suffix from a lower-cased name.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(name, suffix))
		}
	}
	return name
}

func normalizePostal(postal string) string {
	return strings.ToUpper(strings.ReplaceAll(postal, " ", ""))
}

func wordSet(text string) map[string]bool {
	words := map[string]bool{}
	for _, word := range strings.Fields(text) {
		words[word] = true
	}
	return words
}
