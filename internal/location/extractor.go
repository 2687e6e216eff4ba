// Package location extracts place names from free text using three stacked
// heuristics: optional statistical NER, gazetteer substring matching, and a
// small set of preposition-anchored regex patterns.
package location

import (
	"regexp"
	"strings"
	"sync"
)

const (
	maxResults   = 3
	memoCapacity = 256
)

// Patterns anchored on prepositions and verbs that commonly precede a place
// name. Candidates are validated against the gazetteers before acceptance.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:in|to|at|from|near|around)\s+([a-z][a-z\s]*?)\b`),
	regexp.MustCompile(`\b([a-z][a-z\s]*?)\s+(?:city|state|country|province|region)\b`),
	regexp.MustCompile(`\bvisit\s+([a-z][a-z\s]*?)\b`),
	regexp.MustCompile(`\btrip\s+to\s+([a-z][a-z\s]*?)\b`),
}

// Extractor produces ranked location candidates from free text. It is a pure
// function over its gazetteers plus the optional recognizer, both immutable
// after construction, so results are memoized per input text.
type Extractor struct {
	ner Recognizer

	mu   sync.Mutex
	memo map[string][]string
}

// NewExtractor creates an Extractor using the given NER capability. Pass
// NoopRecognizer{} when statistical NER should be skipped.
func NewExtractor(ner Recognizer) *Extractor {
	if ner == nil {
		ner = NoopRecognizer{}
	}
	return &Extractor{
		ner:  ner,
		memo: make(map[string][]string, memoCapacity),
	}
}

// ExtractLocations returns up to 3 candidate locations, most relevant first.
// Indian gazetteer matches always precede other matches. When nothing is
// found the keyword-to-city fallback applies, so the result is only empty
// for blank input. Repeated calls with identical text return identical
// results.
func (e *Extractor) ExtractLocations(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	e.mu.Lock()
	if cached, ok := e.memo[text]; ok {
		e.mu.Unlock()
		// Copy, so callers cannot mutate the memoized slice.
		return append([]string(nil), cached...)
	}
	e.mu.Unlock()

	var candidates []string
	candidates = append(candidates, e.ner.Places(text)...)
	candidates = append(candidates, gazetteerMatches(text)...)
	candidates = append(candidates, patternMatches(text)...)

	result := prioritize(candidates)
	if len(result) == 0 {
		result = defaultLocations(text)
	}

	e.mu.Lock()
	if len(e.memo) >= memoCapacity {
		e.memo = make(map[string][]string, memoCapacity)
	}
	e.memo[text] = result
	e.mu.Unlock()

	return append([]string(nil), result...)
}

// PrimaryLocation returns the single most relevant location for text, or
// false when the text is blank.
func (e *Extractor) PrimaryLocation(text string) (string, bool) {
	locs := e.ExtractLocations(text)
	if len(locs) == 0 {
		return "", false
	}
	return locs[0], true
}

// IsLocationInIndia reports whether loc is an exact (lower-cased) member of
// the Indian gazetteer. Unlike extraction this is not a substring check.
func (e *Extractor) IsLocationInIndia(loc string) bool {
	_, ok := indianPlaces[strings.ToLower(loc)]
	return ok
}

// gazetteerMatches scans text for gazetteer entries appearing as substrings,
// Indian places first. Entries are iterated in deterministic order so the
// candidate list is stable across calls.
func gazetteerMatches(text string) []string {
	var matches []string
	for _, place := range sortedIndianPlaces {
		if strings.Contains(text, place) {
			matches = append(matches, place)
		}
	}
	for _, place := range sortedWorldPlaces {
		if strings.Contains(text, place) {
			matches = append(matches, place)
		}
	}
	return matches
}

// patternMatches applies the regex templates and keeps only candidates that
// validate against the gazetteers, suppressing generic-noun false positives.
func patternMatches(text string) []string {
	var matches []string
	for _, re := range locationPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			if len(candidate) <= 2 {
				continue
			}
			if validCandidate(candidate) {
				matches = append(matches, candidate)
			}
		}
	}
	return matches
}

func validCandidate(candidate string) bool {
	if _, ok := indianPlaces[candidate]; ok {
		return true
	}
	if _, ok := worldPlaces[candidate]; ok {
		return true
	}
	for _, place := range sortedIndianPlaces {
		if strings.Contains(candidate, place) {
			return true
		}
	}
	return false
}

// prioritize deduplicates preserving first-seen order, puts Indian matches
// ahead of everything else, and truncates to maxResults.
func prioritize(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var indian, other []string
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if _, ok := indianPlaces[c]; ok {
			indian = append(indian, c)
		} else {
			other = append(other, c)
		}
	}

	result := append(indian, other...)
	if len(result) > maxResults {
		result = result[:maxResults]
	}
	return result
}

// defaultLocations suggests a destination from tourism keywords, falling
// back to a single hardcoded default.
func defaultLocations(text string) []string {
	for _, kw := range defaultByKeyword {
		if strings.Contains(text, kw.keyword) {
			return []string{kw.city}
		}
	}
	return []string{fallbackLocation}
}
