// Package textmatch implements the deterministic text-comparison tiers used
// when grading short answers: aggressive normalisation, British/American
// spelling unification and token-set containment.
package textmatch

import (
	"regexp"
	"strings"
)

var (
	articleRe    = regexp.MustCompile(`(?i)\b(the|a|an)\b`)
	punctRe      = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// spellingEquivalents maps British spellings to their American canonical form.
var spellingEquivalents = [][2]string{
	{"organisation", "organization"},
	{"recognise", "recognize"},
	{"realise", "realize"},
	{"analyse", "analyze"},
	{"centre", "center"},
	{"colour", "color"},
	{"honour", "honor"},
	{"favour", "favor"},
	{"defence", "defense"},
	{"offence", "offense"},
	{"licence", "license"},
	{"practise", "practice"},
	{"catalogue", "catalog"},
	{"dialogue", "dialog"},
	{"programme", "program"},
	{"labour", "labor"},
	{"neighbour", "neighbor"},
	{"behaviour", "behavior"},
}

// Normalize lowercases the text, strips leading articles and punctuation and
// collapses whitespace. "Food, Shelter" becomes "food shelter". The function
// is idempotent.
func Normalize(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = articleRe.ReplaceAllString(t, " ")
	t = punctRe.ReplaceAllString(t, " ")
	t = multiSpaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// UnifySpelling maps British spelling variants onto one canonical form so
// "organisation" and "organization" compare equal.
func UnifySpelling(text string) string {
	t := strings.ToLower(text)
	for _, pair := range spellingEquivalents {
		t = strings.ReplaceAll(t, pair[0], pair[1])
	}
	return t
}

// NormalizedMatch reports whether the two answers are equal after
// normalisation and spelling unification.
func NormalizedMatch(student, correct string) bool {
	return UnifySpelling(Normalize(student)) == UnifySpelling(Normalize(correct))
}

// noise words carry no grading signal and are dropped before token matching.
var noiseWords = map[string]struct{}{
	"and": {}, "or": {}, "of": {}, "for": {}, "in": {},
	"to": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
}

func keyTokens(text string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, tok := range strings.Fields(UnifySpelling(Normalize(text))) {
		if _, skip := noiseWords[tok]; skip || len(tok) <= 1 {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// expandPlurals returns a copy of the set that also contains the naive
// singular form of every token ("childrens" gains "children"), tolerating
// plural/possessive drift between the two answers.
func expandPlurals(tokens map[string]struct{}) map[string]struct{} {
	expanded := make(map[string]struct{}, len(tokens)*2)
	for tok := range tokens {
		expanded[tok] = struct{}{}
		if len(tok) > 2 && strings.HasSuffix(tok, "s") {
			expanded[strings.TrimSuffix(tok, "s")] = struct{}{}
		}
	}
	return expanded
}

func isSubset(sub, super map[string]struct{}) bool {
	for tok := range sub {
		if _, ok := super[tok]; !ok {
			return false
		}
	}
	return true
}

// TokenSetMatch reports whether every key token of the correct answer appears
// in the student answer. Extra correct filler in the student answer is
// tolerated; missing key terms are not.
//
//	"Food and shelter" matches "Food, Shelter"
//	"Honesty, Integrity" does not match "Understanding, Empathy"
func TokenSetMatch(student, correct string) bool {
	correctKey := keyTokens(correct)
	if len(correctKey) == 0 {
		return true
	}

	studentExpanded := expandPlurals(keyTokens(student))
	correctExpanded := expandPlurals(correctKey)

	return isSubset(correctKey, studentExpanded) || isSubset(correctExpanded, studentExpanded)
}
