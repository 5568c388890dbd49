package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/architeketh/retail-trends-bot/internal/fsutil"
	"github.com/architeketh/retail-trends-bot/internal/logging"
)

// FileStore persists a Series as a single JSON object mapping ISO dates to
// key/count objects.
type FileStore struct {
	path string
	log  logrus.FieldLogger
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path. log may be nil.
func NewFileStore(path string, log logrus.FieldLogger) *FileStore {
	return &FileStore{path: path, log: logging.OrDiscard(log).WithField("history", path)}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the series. A missing file is an empty series; a file that is
// not a JSON object returns an empty series and an error wrapping
// ErrCorrupt. Inside the object, days and counts that do not decode are
// dropped with a warning and the rest is kept.
func (f *FileStore) Load() (Series, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Series{}, nil
		}
		return Series{}, fmt.Errorf("reading %s: %w", f.path, err)
	}

	var days map[string]json.RawMessage
	if err := json.Unmarshal(data, &days); err != nil {
		return Series{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}

	raw := make(map[string]map[string]any, len(days))
	undecodable := 0
	for day, msg := range days {
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var table map[string]any
		if err := dec.Decode(&table); err != nil {
			undecodable++
			continue
		}
		raw[day] = table
	}

	s, dropped := Normalize(raw)
	dropped += undecodable
	if dropped > 0 {
		f.log.WithField("dropped", dropped).Warn("discarded invalid history entries")
	}
	return s, nil
}

// Save writes the series with dates and keys sorted, replacing the file
// atomically.
func (f *FileStore) Save(s Series) error {
	if s == nil {
		s = Series{}
	}
	if err := fsutil.WriteJSON(f.path, s); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Quarantine moves an undecodable history file aside so the next Save does
// not destroy it. The backup name carries a UTC timestamp and never
// replaces an earlier backup. It returns the new path.
func (f *FileStore) Quarantine() (string, error) {
	base := f.path + ".corrupt-" + time.Now().UTC().Format("20060102T150405")
	dest := base
	for i := 1; ; i++ {
		if _, err := os.Lstat(dest); errors.Is(err, os.ErrNotExist) {
			break
		}
		dest = fmt.Sprintf("%s-%d", base, i)
	}
	if err := os.Rename(f.path, dest); err != nil {
		return "", fmt.Errorf("preserving corrupt history: %w", err)
	}
	return dest, nil
}
