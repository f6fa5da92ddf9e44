package rewrite

import (
	"strings"
	"unicode"
)

// Common sentence-leading words that look like name parts but aren't.
var entityStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true,
	"by": true, "for": true, "i": true, "in": true, "my": true,
	"of": true, "on": true, "or": true, "our": true, "the": true,
	"to": true, "with": true,
}

// ExtractEntities returns the multi-word capitalized sequences in text:
// the shapes employer names and job titles take ("Acme Corp", "Senior
// Platform Engineer"). Single capitalized words are ignored; they are
// overwhelmingly sentence starts.
func ExtractEntities(text string) []string {
	words := strings.Fields(text)

	var entities []string
	var run []string
	flush := func() {
		if len(run) >= 2 {
			entities = append(entities, strings.Join(run, " "))
		}
		run = nil
	}

	for _, word := range words {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if cleaned == "" {
			flush()
			continue
		}
		first := []rune(cleaned)[0]
		if unicode.IsUpper(first) && !entityStopwords[strings.ToLower(cleaned)] {
			run = append(run, cleaned)
		} else {
			flush()
		}
		// Punctuation after the word ends the run even if the next word is
		// capitalized.
		if strings.ContainsAny(word, ".,;:!?") {
			flush()
		}
	}
	flush()

	return entities
}

// NewEntities returns the entities of text that do not appear in the source
// corpus (case-insensitive substring match).
func NewEntities(text, corpus string) []string {
	lowerCorpus := strings.ToLower(corpus)

	var novel []string
	seen := make(map[string]bool)
	for _, entity := range ExtractEntities(text) {
		key := strings.ToLower(entity)
		if seen[key] {
			continue
		}
		seen[key] = true
		if !strings.Contains(lowerCorpus, key) {
			novel = append(novel, entity)
		}
	}
	return novel
}
