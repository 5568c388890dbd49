package tokenize

import (
	"iter"
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[A-Za-z][A-Za-z'’\-&]+`)

// edgeTrim is stripped from both ends of a match: quotes, smart quotes, dashes.
const edgeTrim = "’'\"-–—"

// DefaultStopwords are English function words plus retail-news noise terms.
func DefaultStopwords() []string {
	return []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "with", "without",
		"of", "to", "in", "on", "at", "by", "from", "into", "over", "under",
		"is", "are", "was", "were", "be", "being", "been", "do", "does", "did", "done",
		"have", "has", "had", "having",
		"will", "would", "should", "can", "could", "may", "might", "must", "shall",
		"that", "this", "these", "those", "it", "its", "it’s", "as", "about", "than", "so",
		"such", "not", "no", "yes",
		"why", "how", "when", "where", "what", "who", "whom", "which",
		"you", "your", "yours", "we", "our", "ours", "they", "them", "their", "theirs",
		"new", "news", "report", "update", "amid", "after", "before", "during",
		"today", "week", "month", "year",
		"retail", "ecommerce", "online",
	}
}

// Tokenizer splits headline text into normalized, stopword-filtered words.
// It is immutable after construction and safe for concurrent use.
type Tokenizer struct {
	stop map[string]struct{}
}

// New builds a Tokenizer. Stopwords are folded to lower case.
func New(stopwords []string) *Tokenizer {
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Tokenizer{stop: stop}
}

// Tokens yields the tokens of text in order of appearance.
func (t *Tokenizer) Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for pos := 0; pos < len(text); {
			loc := wordRe.FindStringIndex(text[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]
			pos = end
			w := strings.ToLower(strings.Trim(text[start:end], edgeTrim))
			if w == "" || t.IsStopword(w) {
				continue
			}
			if !yield(w) {
				return
			}
		}
	}
}

// Collect returns every token of text.
func (t *Tokenizer) Collect(text string) []string {
	var out []string
	for w := range t.Tokens(text) {
		out = append(out, w)
	}
	return out
}

// IsStopword reports whether w (any case) is filtered.
func (t *Tokenizer) IsStopword(w string) bool {
	_, ok := t.stop[strings.ToLower(w)]
	return ok
}
