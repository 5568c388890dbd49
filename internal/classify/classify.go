package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/architeketh/retail-trends-bot/internal/headline"
)

// Other is the catch-all label for text no rule matched.
const Other = "Other"

// Rule maps a label to the patterns that select it.
type Rule struct {
	Label    string   `yaml:"label"`
	Patterns []string `yaml:"patterns"`
}

// DefaultRules returns the built-in retail category rules in canonical order.
func DefaultRules() []Rule {
	return []Rule{
		{Label: "Retail", Patterns: []string{
			`\bretail(er|ing)?\b`, `\bstore(s)?\b`, `\bchain(s)?\b`, `\bmall(s)?\b`,
			`\bdepartment store(s)?\b`,
		}},
		{Label: "eCommerce", Patterns: []string{
			`\be-?commerce\b`, `\bonline\b`, `\bshopify\b`, `\bmarketplace\b`, `\bdigital\b`,
		}},
		{Label: "AI", Patterns: []string{
			`\bAI\b`, `\bartificial intelligence\b`, `\bmachine learning\b`, `\bgenerative\b`, `\bChatGPT\b`,
		}},
		{Label: "Supply Chain", Patterns: []string{
			`\bsupply\b`, `\blogistic(s)?\b`, `\bwarehouse(s|ing)?\b`, `\bshipping\b`, `\bfulfillment\b`,
		}},
		{Label: "Big Box", Patterns: []string{
			`\bwalmart\b`, `\btarget\b`, `\bcostco\b`, `\bhome depot\b`, `\bbest buy\b`, `\blowe['’]s\b`,
		}},
		{Label: "Luxury", Patterns: []string{
			`\blouis vuitton\b`, `\bgucci\b`, `\bprada\b`, `\bherm[eè]s\b`, `\bcartier\b`, `\bchanel\b`, `\bdior\b`,
		}},
		{Label: "Vintage", Patterns: []string{
			`\bvintage\b`, `\bresale\b`, `\bthrift\b`, `\bsecondhand\b`, `\bconsignment\b`,
		}},
	}
}

type compiledRule struct {
	label string
	res   []*regexp.Regexp
}

// Categorizer assigns topical labels to text. Evaluation is a union over
// all rules, reported in rule order.
type Categorizer struct {
	rules []compiledRule
}

// New compiles rules case-insensitively. Labels must be unique and may not
// be the reserved catch-all.
func New(rules []Rule) (*Categorizer, error) {
	c := &Categorizer{}
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			return nil, fmt.Errorf("category %d: label is required", i)
		}
		if strings.EqualFold(label, Other) {
			return nil, fmt.Errorf("category %q: label is reserved", label)
		}
		if seen[label] {
			return nil, fmt.Errorf("category %q: duplicate label", label)
		}
		seen[label] = true
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("category %q: at least one pattern is required", label)
		}

		cr := compiledRule{label: label}
		for _, p := range r.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("category %q: invalid pattern %q: %w", label, p, err)
			}
			cr.res = append(cr.res, re)
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// Labels returns every label the categorizer can emit, catch-all last.
func (c *Categorizer) Labels() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		out = append(out, r.label)
	}
	return append(out, Other)
}

// Categorize returns the labels whose rules match text, or [Other].
func (c *Categorizer) Categorize(text string) []string {
	var hits []string
	for _, r := range c.rules {
		for _, re := range r.res {
			if re.MatchString(text) {
				hits = append(hits, r.label)
				break
			}
		}
	}
	if len(hits) == 0 {
		return []string{Other}
	}
	return hits
}

// Buckets groups records by label. Iteration and JSON order follow the
// categorizer's label order; empty buckets are omitted.
type Buckets struct {
	order   []string
	records map[string][]headline.Record
}

// Bucket files every valid record under each label its title matches.
// Records without a title or link are skipped.
func (c *Categorizer) Bucket(records []headline.Record) Buckets {
	b := Buckets{records: make(map[string][]headline.Record)}
	for _, rec := range records {
		if !rec.Valid() {
			continue
		}
		for _, label := range c.Categorize(rec.Title) {
			b.records[label] = append(b.records[label], rec)
		}
	}
	for _, label := range c.Labels() {
		if len(b.records[label]) > 0 {
			b.order = append(b.order, label)
		}
	}
	return b
}

// Labels returns the non-empty labels in order.
func (b Buckets) Labels() []string {
	return b.order
}

// Records returns the records filed under label.
func (b Buckets) Records(label string) []headline.Record {
	return b.records[label]
}

// Len returns the number of non-empty buckets.
func (b Buckets) Len() int {
	return len(b.order)
}

// MarshalJSON writes an object whose keys follow label order.
func (b Buckets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(b.records[label])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
