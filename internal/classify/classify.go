package classify

import (
	"regexp"
	"strings"

	"PoolScanner/internal/domain"
)

// swimKeywords gate whether a program counts as swim-related at all.
var swimKeywords = []string{
	"lane swim", "lane swimming", "lap swim", "lap swimming",
	"leisure swim", "recreational swim", "family swim",
	"adult swim", "senior swim", "aquafit", "aqua fit",
	"water fit", "aquacise", "aqua aerobics",
	"public swim", "open swim", "drop-in swim",
}

type typePatterns struct {
	swimType domain.SwimType
	patterns []*regexp.Regexp
}

// swimTypeTable is ordered so classification stays deterministic; ties on
// confidence go to the earlier entry.
var swimTypeTable = []typePatterns{
	{domain.LaneSwim, compileAll(
		`lane\s+swim`, `lap\s+swim`, `length\s+swim`,
		`adult\s+lane`, `senior\s+lane`,
	)},
	{domain.Aquafit, compileAll(
		`aqua\s*fit`, `water\s+fit`, `aqua\s*cise`,
		`aqua\s+aerobics`, `water\s+aerobics`,
	)},
	{domain.Recreational, compileAll(
		`leisure\s+swim`, `recreational\s+swim`,
		`family\s+swim`, `public\s+swim`, `open\s+swim`,
	)},
	{domain.AdultSwim, compileAll(`adult\s+swim`, `adult\s+only`)},
	{domain.SeniorSwim, compileAll(`senior\s+swim`, `seniors?\s+only`, `older\s+adult`)},
}

var (
	youthPattern  = regexp.MustCompile(`\b(child|kid|youth)\b`)
	adultPattern  = regexp.MustCompile(`\b(adult|19\+|18\+)\b`)
	seniorPattern = regexp.MustCompile(`\b(senior|55\+|60\+|65\+)\b`)
	familyPattern = regexp.MustCompile(`\bfamily\b`)
)

// DefaultConfidence is assigned when a program passes the swim gate but
// no type pattern matches; such programs fall back to lane swim.
const DefaultConfidence = 0.5

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(expr))
	}
	return compiled
}

// IsSwimActivity reports whether title+category mention any swim keyword.
func IsSwimActivity(title, category string) bool {
	text := strings.ToLower(title + " " + category)
	for _, keyword := range swimKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Classify labels a raw course record. The swim type with the longest
// matched span relative to the title length wins; confidence is
// min(1, matchLen/titleLen*2), a heuristic proxy rather than a
// calibrated probability.
func Classify(title, category string) domain.Classification {
	if !IsSwimActivity(title, category) {
		return domain.Classification{}
	}

	text := strings.ToLower(title + " " + category)
	result := domain.Classification{IsSwim: true}

	titleLength := len(title)
	if titleLength == 0 {
		titleLength = 1
	}

	for _, entry := range swimTypeTable {
		for _, pattern := range entry.patterns {
			match := pattern.FindString(text)
			if match == "" {
				continue
			}
			confidence := float64(len(match)) / float64(titleLength) * 2
			if confidence > 1 {
				confidence = 1
			}
			if confidence > result.Confidence {
				result.SwimType = entry.swimType
				result.Confidence = confidence
			}
		}
	}

	if result.SwimType == "" {
		result.SwimType = domain.LaneSwim
		result.Confidence = DefaultConfidence
	}

	result.Tags = detectTags(text)
	result.AgeGroup = detectAgeGroup(text)
	return result
}

func detectTags(text string) []string {
	var tags []string
	if strings.Contains(text, "adult") {
		tags = append(tags, "adults_only")
	}
	if strings.Contains(text, "senior") {
		tags = append(tags, "seniors")
	}
	if strings.Contains(text, "family") {
		tags = append(tags, "family_friendly")
	}
	if strings.Contains(text, "deep") {
		tags = append(tags, "deep_water")
	}
	if strings.Contains(text, "shallow") {
		tags = append(tags, "shallow_water")
	}
	return tags
}

// detectAgeGroup applies disjoint patterns, first match wins. An empty
// result means all ages, which is a valid end state.
func detectAgeGroup(text string) string {
	switch {
	case youthPattern.MatchString(text):
		return "youth"
	case adultPattern.MatchString(text):
		return "adult"
	case seniorPattern.MatchString(text):
		return "senior"
	case familyPattern.MatchString(text):
		return "family"
	default:
		return ""
	}
}
