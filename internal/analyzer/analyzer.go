// Package analyzer counts significant words in translated headlines.
package analyzer

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMinCount is the repetition threshold used for the headline report.
const DefaultMinCount = 3

// tokenPattern matches a maximal run of word letters. Everything else,
// digits included, separates tokens.
var tokenPattern = regexp.MustCompile(`[a-záéíóúñü]+`)

// WordCount is one entry of a FrequencyTable.
type WordCount struct {
	Word  string
	Count int
}

// FrequencyTable holds qualifying words in the order they were first seen.
type FrequencyTable []WordCount

func (t FrequencyTable) Len() int { return len(t) }

// Get returns the count of word, if present.
func (t FrequencyTable) Get(word string) (int, bool) {
	for _, wc := range t {
		if wc.Word == word {
			return wc.Count, true
		}
	}
	return 0, false
}

// Words returns the words in first-seen order.
func (t FrequencyTable) Words() []string {
	out := make([]string, len(t))
	for i, wc := range t {
		out[i] = wc.Word
	}
	return out
}

// Map returns the table as a plain map, losing order.
func (t FrequencyTable) Map() map[string]int {
	out := make(map[string]int, len(t))
	for _, wc := range t {
		out[wc.Word] = wc.Count
	}
	return out
}

// Tokenize lower-cases text and returns its tokens left to right.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	lower := cases.Lower(language.Und).String(text)
	return tokenPattern.FindAllString(lower, -1)
}

// Analyze returns the non-stopword tokens of text occurring at least
// minCount times. A minCount below 1 is treated as 1.
func Analyze(text string, minCount int, profile Profile) FrequencyTable {
	if minCount < 1 {
		minCount = 1
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range Tokenize(text) {
		if IsStopword(profile, tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	table := FrequencyTable{}
	for _, w := range order {
		if c := counts[w]; c >= minCount {
			table = append(table, WordCount{Word: w, Count: c})
		}
	}
	return table
}
