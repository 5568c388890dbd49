package brand

import "strings"

// DefaultSeeds is the built-in brand list. Apostrophe variants are separate
// entries so that both spellings are detected.
func DefaultSeeds() []string {
	return []string{
		"Amazon", "Walmart", "Target", "Costco", "Best Buy", "Home Depot", "Lowe's", "Lowe’s", "Kroger", "Aldi",
		"Tesco", "Carrefour", "IKEA", "H&M", "Zara", "Nike", "Adidas", "Lululemon", "Gap", "Old Navy",
		"Sephora", "Ulta", "Macy's", "Nordstrom", "Kohl's", "TJX", "TJ Maxx", "Marshalls", "Saks", "Apple",
		"Shein", "Temu", "Wayfair", "Etsy", "eBay", "Shopify", "Instacart", "DoorDash", "Uber", "FedEx", "UPS",
	}
}

type seed struct {
	name  string
	lower string
}

// Matcher finds brand names inside raw headline text.
type Matcher struct {
	seeds []seed
}

// NewMatcher builds a Matcher. Blank and exact-duplicate names are dropped;
// seed order is kept.
func NewMatcher(names []string) *Matcher {
	m := &Matcher{}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		m.seeds = append(m.seeds, seed{name: n, lower: strings.ToLower(n)})
	}
	return m
}

// Match returns every seed that occurs in text as a case-insensitive
// substring, in seed order.
func (m *Matcher) Match(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var out []string
	for _, s := range m.seeds {
		if strings.Contains(lower, s.lower) {
			out = append(out, s.name)
		}
	}
	return out
}

// Names returns the seed names in order.
func (m *Matcher) Names() []string {
	out := make([]string, len(m.seeds))
	for i, s := range m.seeds {
		out[i] = s.name
	}
	return out
}
