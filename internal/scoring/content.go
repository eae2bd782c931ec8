// Package scoring implements answer evaluation: keyword-coverage content
// accuracy and the blended semantic+content reward score.
package scoring

import (
	"strings"
	"unicode"
)

// presenceThreshold is the token-overlap ratio at or above which a keyword
// phrase counts as present in the answer.
const presenceThreshold = 0.70

const noKeywordsComment = "Content Accuracy: Excellent - No keywords to evaluate, but your response aligns well."

// ContentResult is the outcome of keyword-coverage evaluation.
type ContentResult struct {
	Score   float64  // 0..100
	Present []string // keyword phrases found in the answer
	Missing []string // keyword phrases not found
	Comment string   // human-readable commentary
}

// normalizeTokens lowercases s, strips punctuation and symbols, and splits on
// whitespace. Word characters (letters, digits, underscore) survive.
func normalizeTokens(s string) []string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			out = append(out, unicode.ToLower(r))
		case unicode.IsSpace(r):
			out = append(out, ' ')
		}
	}
	return strings.Fields(string(out))
}

func tokenSet(tokens []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// keywordPresent reports whether a keyword phrase is covered by the answer:
// at least 70% of the phrase's distinct normalized tokens must appear among
// the answer's tokens, in any order. An empty phrase is vacuously present.
func keywordPresent(keyword string, answerTokens map[string]struct{}) bool {
	kw := tokenSet(normalizeTokens(keyword))
	if len(kw) == 0 {
		return true
	}
	overlap := 0
	for t := range kw {
		if _, ok := answerTokens[t]; ok {
			overlap++
		}
	}
	return float64(overlap)/float64(len(kw)) >= presenceThreshold
}

// ContentAccuracy scores an answer against a keyword spec. Pure function:
// same inputs, same result. An empty spec scores 100.
func ContentAccuracy(keywords []string, answer string) ContentResult {
	if len(keywords) == 0 {
		return ContentResult{Score: 100, Comment: noKeywordsComment}
	}
	answerTokens := tokenSet(normalizeTokens(answer))
	var present, missing []string
	for _, kw := range keywords {
		if keywordPresent(kw, answerTokens) {
			present = append(present, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	score := float64(len(present)) / float64(len(keywords)) * 100

	var comment string
	switch {
	case score >= 90:
		comment = "Content Accuracy: Excellent - Your response captures almost all key keywords."
	case score >= 70:
		comment = "Content Accuracy: Good - You included most of the key keywords, but some are missing."
	case score >= 50:
		comment = "Content Accuracy: Fair - You captured some key keywords, but several are missing."
	default:
		comment = "Content Accuracy: Needs Improvement - Many key keywords are missing from your response."
	}
	if len(missing) > 0 {
		quoted := make([]string, len(missing))
		for i, kw := range missing {
			quoted[i] = "'" + kw + "'"
		}
		comment += "\nMissing keywords: " + strings.Join(quoted, ", ")
	}
	return ContentResult{Score: score, Present: present, Missing: missing, Comment: comment}
}
