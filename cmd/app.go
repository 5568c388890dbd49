package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/architeketh/retail-trends-bot/internal/brand"
	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/config"
	"github.com/architeketh/retail-trends-bot/internal/count"
	"github.com/architeketh/retail-trends-bot/internal/headline"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/pipeline"
	"github.com/architeketh/retail-trends-bot/internal/report"
	"github.com/architeketh/retail-trends-bot/internal/tokenize"
)

const (
	tokensFile = "tokens_history.json"
	brandsFile = "brands_history.json"
	sqliteFile = "history.db"
	lockFile   = ".lock"
)

// stores holds the two history series for the configured backend.
type stores struct {
	tokens history.Store
	brands history.Store
	db     *history.SQLite // nil for the json backend
}

func (s *stores) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// loadForView reads both series for display. A corrupt series is logged
// and shown as empty; moving it aside is left to run.
func (s *stores) loadForView(log logrus.FieldLogger) (tokens, brands history.Series, err error) {
	if tokens, err = loadSeries(s.tokens, pipeline.SeriesTokens, log); err != nil {
		return nil, nil, err
	}
	if brands, err = loadSeries(s.brands, pipeline.SeriesBrands, log); err != nil {
		return nil, nil, err
	}
	return tokens, brands, nil
}

func loadSeries(store history.Store, name string, log logrus.FieldLogger) (history.Series, error) {
	series, err := store.Load()
	switch {
	case err == nil:
		return series, nil
	case errors.Is(err, history.ErrCorrupt):
		log.WithError(err).WithField("series", name).Warn("history is unreadable; showing it as empty")
		return history.Series{}, nil
	default:
		return nil, fmt.Errorf("loading %s history: %w", name, err)
	}
}

func openStores(cfg *config.Config, log logrus.FieldLogger) (*stores, error) {
	dir := cfg.HistoryDir()
	if cfg.History.Backend == "sqlite" {
		db, err := history.OpenSQLite(filepath.Join(dir, sqliteFile))
		if err != nil {
			return nil, fmt.Errorf("opening history database: %w", err)
		}
		return &stores{
			tokens: db.Series(pipeline.SeriesTokens),
			brands: db.Series(pipeline.SeriesBrands),
			db:     db,
		}, nil
	}
	return &stores{
		tokens: history.NewFileStore(filepath.Join(dir, tokensFile), log),
		brands: history.NewFileStore(filepath.Join(dir, brandsFile), log),
	}, nil
}

func lockPath(cfg *config.Config) string {
	return filepath.Join(cfg.HistoryDir(), lockFile)
}

// resolveToday returns the run date: the --date value, or the current
// calendar date in the configured timezone.
func resolveToday(cfg *config.Config, flag string, now time.Time) (time.Time, error) {
	if flag != "" {
		d, err := history.ParseDay(flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date: %w", err)
		}
		return d, nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	return now.In(loc), nil
}

func newCategorizer(cfg *config.Config) (*classify.Categorizer, error) {
	cat, err := classify.New(cfg.CategoryRules())
	if err != nil {
		return nil, fmt.Errorf("building categories: %w", err)
	}
	return cat, nil
}

func newBuilder(cfg *config.Config) report.Builder {
	return report.Builder{TopK: cfg.GetTopK(), Windows: history.DefaultWindows()}
}

func newPipeline(cfg *config.Config, st *stores, log logrus.FieldLogger) (*pipeline.Pipeline, error) {
	cat, err := newCategorizer(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Deps{
		Counter:     count.New(tokenize.New(cfg.StopwordList()), brand.NewMatcher(cfg.BrandList())),
		Categorizer: cat,
		Tokens:      st.tokens,
		Brands:      st.brands,
		Builder:     newBuilder(cfg),
		Outputs:     report.Outputs{Dir: cfg.OutputDir()},
		Retention:   cfg.RetentionDays(),
		Log:         log,
	}), nil
}

// loadView rebuilds the snapshot and category buckets from persisted
// history and the current input document without writing anything.
func loadView(cfg *config.Config, st *stores, today time.Time, log logrus.FieldLogger) (report.Snapshot, classify.Buckets, error) {
	tokens, brands, err := st.loadForView(log)
	if err != nil {
		return report.Snapshot{}, classify.Buckets{}, err
	}

	doc, err := headline.Load(cfg.InputPath())
	if err != nil {
		log.WithError(err).Warn("could not read headlines")
	}
	cat, err := newCategorizer(cfg)
	if err != nil {
		return report.Snapshot{}, classify.Buckets{}, err
	}

	snap := newBuilder(cfg).Build(tokens, brands, today)
	snap.Sources = report.Sources(doc.Articles)
	return snap, cat.Bucket(doc.Articles), nil
}
