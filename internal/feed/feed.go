package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/architeketh/retail-trends-bot/internal/config"
	"github.com/architeketh/retail-trends-bot/internal/headline"
)

// DefaultPerFeed caps how many items are taken from each feed.
const DefaultPerFeed = 20

const maxConcurrentFetches = 4

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source, limit int) ([]headline.Record, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

// Fetch returns up to limit items of source in feed order. A non-positive
// limit means DefaultPerFeed.
func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source, limit int) ([]headline.Record, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	return toRecords(feed, source.Name, limit), nil
}

func toRecords(feed *gofeed.Feed, source string, limit int) []headline.Record {
	if limit <= 0 {
		limit = DefaultPerFeed
	}
	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	records := make([]headline.Record, 0, len(items))
	for _, item := range items {
		published := item.Published
		if published == "" {
			published = item.Updated
		}
		records = append(records, headline.Record{
			Title:     stripHTML(item.Title),
			Link:      strings.TrimSpace(item.Link),
			Source:    source,
			Published: published,
		})
	}
	return records
}

// stripHTML reduces a title that may carry markup to its text, with
// whitespace collapsed.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

type FetchResult struct {
	Records []headline.Record
	Errors  []error
}

// Document wraps the fetched records as the input document for a run.
func (r FetchResult) Document(now time.Time) headline.Document {
	records := r.Records
	if records == nil {
		records = []headline.Record{}
	}
	return headline.Document{
		FetchedAt: now.UTC().Format(time.RFC3339),
		Articles:  records,
	}
}

// FetchAll fetches every source concurrently. Records keep source order,
// then feed order, regardless of which fetch finishes first. A failing
// feed is reported in Errors and does not stop the others.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []config.Source, limit int) FetchResult {
	var (
		mu      sync.Mutex
		result  FetchResult
		perFeed = make([][]headline.Record, len(sources))
	)

	if fetcher == nil {
		fetcher = NewRSSFetcher()
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, src := range sources {
		g.Go(func() error {
			records, err := fetcher.Fetch(ctx, src, limit)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, err)
				mu.Unlock()
				return nil
			}
			perFeed[i] = records
			return nil
		})
	}

	g.Wait()
	for _, records := range perFeed {
		result.Records = append(result.Records, records...)
	}
	return result
}
