package brand

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatchSubset(t *testing.T) {
	m := NewMatcher([]string{"Amazon", "Walmart", "Target"})
	got := m.Match("Amazon and Walmart both raised prices")
	sort.Strings(got)
	want := []string{"Amazon", "Walmart"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	m := NewMatcher([]string{"eBay", "IKEA"})
	got := m.Match("EBAY and ikea report results")
	if diff := cmp.Diff([]string{"eBay", "IKEA"}, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchMultiWord(t *testing.T) {
	m := NewMatcher([]string{"Best Buy", "Home Depot", "Old Navy"})
	got := m.Match("Best Buy and Home Depot post gains")
	if diff := cmp.Diff([]string{"Best Buy", "Home Depot"}, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
	if got := m.Match("Best-Buy rumors"); len(got) != 0 {
		t.Errorf("expected no fuzzy match, got %v", got)
	}
}

func TestMatchApostropheVariantsAreDistinct(t *testing.T) {
	m := NewMatcher([]string{"Lowe's", "Lowe’s"})

	if diff := cmp.Diff([]string{"Lowe's"}, m.Match("Lowe's earnings")); diff != "" {
		t.Errorf("straight apostrophe (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Lowe’s"}, m.Match("Lowe’s earnings")); diff != "" {
		t.Errorf("smart apostrophe (-want +got):\n%s", diff)
	}
}

func TestMatchEmpty(t *testing.T) {
	m := NewMatcher(DefaultSeeds())
	if got := m.Match(""); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if got := m.Match("Quiet day for markets"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestNewMatcherDropsDuplicates(t *testing.T) {
	m := NewMatcher([]string{"Nike", " ", "Nike", "Adidas"})
	if diff := cmp.Diff([]string{"Nike", "Adidas"}, m.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}
