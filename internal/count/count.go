// Package count turns one day's headlines into token and brand frequency
// tables.
package count

import (
	"github.com/architeketh/retail-trends-bot/internal/brand"
	"github.com/architeketh/retail-trends-bot/internal/headline"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/tokenize"
)

// Result is the outcome of counting one batch.
type Result struct {
	Tokens  history.Counts
	Brands  history.Counts
	Records int // records counted
	Skipped int // records without a title or link
}

// Counter is stateless apart from its injected tokenizer and matcher.
type Counter struct {
	tok    *tokenize.Tokenizer
	brands *brand.Matcher
}

func New(tok *tokenize.Tokenizer, brands *brand.Matcher) *Counter {
	return &Counter{tok: tok, brands: brands}
}

// Day counts every token occurrence and, per record, each brand that
// appears in the title. Brand matching runs on the raw title.
func (c *Counter) Day(records []headline.Record) Result {
	res := Result{Tokens: history.Counts{}, Brands: history.Counts{}}
	for _, r := range records {
		if !r.Valid() {
			res.Skipped++
			continue
		}
		res.Records++
		for tok := range c.tok.Tokens(r.Title) {
			res.Tokens[tok]++
		}
		for _, b := range c.brands.Match(r.Title) {
			res.Brands[b]++
		}
	}
	return res
}
