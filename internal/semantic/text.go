package semantic

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emojiPattern    = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B50}\x{2B06}\x{2194}-\x{21AA}]\x{FE0F}?`)
	sentencePattern = regexp.MustCompile(`\s*(?:\d+[.)]\s+)?[^.!?]+[.!?]*`)
	stepPattern     = regexp.MustCompile(`(?m)^\s*(\d+[.)]|[-•*])\s+`)
	examplePattern  = regexp.MustCompile(`(?i)(exemple|par exemple|e\.g\.|example)`)
	spacesPattern   = regexp.MustCompile(`[ \t]{2,}`)
)

// TechnicalTerms are the accounting terms counted by CountTechnicalTerms.
var TechnicalTerms = []string{
	"syscohada", "amortissement", "lettrage", "immobilisation",
	"dotation", "provision", "écriture", "bilan", "compte de résultat",
	"balance", "journal", "tva", "créance", "exercice", "clôture",
}

// HasEmoji reports whether s contains an emoji.
func HasEmoji(s string) bool {
	return emojiPattern.MatchString(s)
}

// StripEmoji removes emoji and collapses the spaces they leave behind.
func StripEmoji(s string) string {
	out := emojiPattern.ReplaceAllString(s, "")
	out = spacesPattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// HasSteps reports whether s contains a numbered or bulleted list.
func HasSteps(s string) bool {
	return stepPattern.MatchString(s)
}

// HasExamples reports whether s mentions an example.
func HasExamples(s string) bool {
	return examplePattern.MatchString(s)
}

// CountTechnicalTerms returns how many distinct TechnicalTerms appear in s.
func CountTechnicalTerms(s string) int {
	lowered := lower(s)
	n := 0
	for _, term := range TechnicalTerms {
		if strings.Contains(lowered, term) {
			n++
		}
	}
	return n
}

// Sentences splits s into trimmed sentences, keeping their terminal
// punctuation. Lines are split separately and a leading list marker such
// as "1." belongs to its item.
func Sentences(s string) []string {
	spans := sentenceSpans(s)
	out := make([]string, 0, len(spans))
	for _, sp := range spans {
		out = append(out, s[sp[0]:sp[1]])
	}
	return out
}

// FirstSentences returns s up to the end of its nth sentence, keeping the
// original line breaks.
func FirstSentences(s string, n int) string {
	spans := sentenceSpans(s)
	if n <= 0 || len(spans) <= n {
		return s
	}
	return s[:spans[n-1][1]]
}

// sentenceSpans returns the byte ranges of the trimmed sentences of s.
func sentenceSpans(s string) [][2]int {
	var spans [][2]int
	offset := 0
	for _, line := range strings.SplitAfter(s, "\n") {
		for _, loc := range sentencePattern.FindAllStringIndex(line, -1) {
			seg := line[loc[0]:loc[1]]
			start := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
			end := len(strings.TrimRightFunc(seg, unicode.IsSpace))
			if end > start {
				spans = append(spans, [2]int{offset + loc[0] + start, offset + loc[0] + end})
			}
		}
		offset += len(line)
	}
	return spans
}
