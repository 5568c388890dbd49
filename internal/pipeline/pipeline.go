// Package pipeline runs one aggregation pass: read the day's headlines,
// count them, merge the counts into history and write the outputs.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/count"
	"github.com/architeketh/retail-trends-bot/internal/headline"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/logging"
	"github.com/architeketh/retail-trends-bot/internal/report"
)

// Series names, also used as SQLite series keys.
const (
	SeriesTokens = "tokens"
	SeriesBrands = "brands"
)

// Quarantiner is implemented by stores that can move an undecodable backing
// file aside before it is overwritten.
type Quarantiner interface {
	Quarantine() (string, error)
}

type Deps struct {
	Counter     *count.Counter
	Categorizer *classify.Categorizer
	Tokens      history.Store
	Brands      history.Store
	Builder     report.Builder
	Outputs     report.Outputs
	Retention   int
	Log         logrus.FieldLogger
}

type Options struct {
	Today  time.Time // captured once per run; only its calendar date is used
	Input  string
	DryRun bool // compute everything, write nothing
}

// SeriesResult describes what happened to one history series.
type SeriesResult struct {
	Name        string
	Reset       bool   // loaded as corrupt and restarted empty
	Quarantined string // where the corrupt file went, if moved
	Dropped     []string
	Retained    int
	History     history.Series
}

type Result struct {
	Date     string
	Records  []headline.Record
	Counts   count.Result
	Buckets  classify.Buckets
	Series   []SeriesResult
	Snapshot report.Snapshot
}

type Pipeline struct {
	deps Deps
	log  logrus.FieldLogger
}

func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps, log: logging.OrDiscard(deps.Log)}
}

// Run performs one pass. A missing or malformed input and a corrupt history
// are logged and treated as empty; a failure to persist history or outputs
// is returned. History is saved only after both series have been merged
// and trimmed, and each save replaces its file atomically.
func (p *Pipeline) Run(opts Options) (*Result, error) {
	if opts.Today.IsZero() {
		opts.Today = time.Now()
	}
	today := opts.Today
	day := history.Day(today)
	log := p.log.WithField("date", day)

	doc, err := headline.Load(opts.Input)
	if err != nil {
		log.WithError(err).Warn("could not read headlines; continuing with none")
	}
	records := doc.Articles

	res := &Result{Date: day, Records: records}
	res.Counts = p.deps.Counter.Day(records)
	if doc.Malformed > 0 {
		res.Counts.Skipped += doc.Malformed
		log.WithField("malformed", doc.Malformed).Warn("skipped headlines that could not be decoded")
	}
	res.Buckets = p.deps.Categorizer.Bucket(records)
	log.WithFields(logrus.Fields{
		"records":    res.Counts.Records,
		"skipped":    res.Counts.Skipped,
		"tokens":     len(res.Counts.Tokens),
		"brands":     len(res.Counts.Brands),
		"categories": res.Buckets.Len(),
	}).Info("counted headlines")

	stores := []struct {
		name   string
		store  history.Store
		counts history.Counts
	}{
		{SeriesTokens, p.deps.Tokens, res.Counts.Tokens},
		{SeriesBrands, p.deps.Brands, res.Counts.Brands},
	}

	for _, s := range stores {
		sr, err := p.merge(log, s.name, s.store, day, s.counts, opts.DryRun)
		if err != nil {
			return nil, err
		}
		res.Series = append(res.Series, sr)
	}

	if !opts.DryRun {
		for i, s := range stores {
			if err := s.store.Save(res.Series[i].History); err != nil {
				return nil, fmt.Errorf("persisting %s history: %w", s.name, err)
			}
		}
	}

	res.Snapshot = p.deps.Builder.Build(res.Series[0].History, res.Series[1].History, today)
	res.Snapshot.Sources = report.Sources(records)

	if opts.DryRun {
		log.Info("dry run; nothing written")
		return res, nil
	}
	if err := p.deps.Outputs.WriteAll(res.Snapshot, res.Buckets, records); err != nil {
		return nil, fmt.Errorf("writing outputs: %w", err)
	}
	log.WithField("dir", p.deps.Outputs.Dir).Info("wrote outputs")
	return res, nil
}

// merge loads one series, replaces today's entry and trims it.
func (p *Pipeline) merge(log logrus.FieldLogger, name string, store history.Store, day string, counts history.Counts, dryRun bool) (SeriesResult, error) {
	sr := SeriesResult{Name: name}
	log = log.WithField("series", name)

	series, err := store.Load()
	switch {
	case err == nil:
	case errors.Is(err, history.ErrCorrupt):
		sr.Reset = true
		series = history.Series{}
		log.WithError(err).Warn("history is unreadable; starting over with an empty history")
		if q, ok := store.(Quarantiner); ok && !dryRun {
			dest, qerr := q.Quarantine()
			if qerr != nil {
				return sr, fmt.Errorf("%s history: %w", name, qerr)
			}
			sr.Quarantined = dest
			log.WithField("backup", dest).Warn("kept unreadable history")
		}
	default:
		return sr, fmt.Errorf("loading %s history: %w", name, err)
	}

	if err := series.Upsert(day, counts); err != nil {
		return sr, fmt.Errorf("updating %s history: %w", name, err)
	}
	sr.Dropped = series.Trim(p.deps.Retention)
	if len(sr.Dropped) > 0 {
		log.WithFields(logrus.Fields{
			"dropped": len(sr.Dropped),
			"through": sr.Dropped[len(sr.Dropped)-1],
		}).Debug("trimmed history")
	}
	sr.Retained = len(series)
	sr.History = series
	return sr, nil
}
