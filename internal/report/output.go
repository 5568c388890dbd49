package report

import (
	"fmt"
	"path/filepath"

	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/fsutil"
	"github.com/architeketh/retail-trends-bot/internal/headline"
)

// Output file names inside the output directory.
const (
	SnapshotFile   = "report.json"
	CategoriesFile = "categorized.json"
	HeadlinesFile  = "headlines.json"
)

// Outputs writes the presentation files. Each file is replaced atomically.
type Outputs struct {
	Dir string
}

// WriteAll writes the snapshot, the category buckets and the headline list.
func (o Outputs) WriteAll(snap Snapshot, buckets classify.Buckets, records []headline.Record) error {
	if err := o.WriteSnapshot(snap); err != nil {
		return err
	}
	if err := o.WriteCategories(buckets); err != nil {
		return err
	}
	return o.WriteHeadlines(records)
}

func (o Outputs) WriteSnapshot(snap Snapshot) error {
	return o.write(SnapshotFile, snap)
}

func (o Outputs) WriteCategories(buckets classify.Buckets) error {
	return o.write(CategoriesFile, buckets)
}

// WriteHeadlines writes the title/link/source list in input order.
func (o Outputs) WriteHeadlines(records []headline.Record) error {
	return o.write(HeadlinesFile, headline.Links(records))
}

// Path returns the location of an output file.
func (o Outputs) Path(name string) string {
	return filepath.Join(o.Dir, name)
}

func (o Outputs) write(name string, v any) error {
	if err := fsutil.WriteJSON(o.Path(name), v); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
