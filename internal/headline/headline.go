package headline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/architeketh/retail-trends-bot/internal/fsutil"
)

// Record is a single fetched headline. Identity is positional.
type Record struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published"`
}

// Valid reports whether the record carries the fields needed for counting.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Title) != "" && strings.TrimSpace(r.Link) != ""
}

// Document is the feed collaborator's output.
type Document struct {
	FetchedAt string   `json:"fetched_at,omitempty"`
	Articles  []Record `json:"articles"`

	// Malformed counts article entries that could not be decoded as a
	// record and were left out of Articles.
	Malformed int `json:"-"`
}

// Link is the front-end shape of a record.
type Link struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// Links projects records to the front-end shape, preserving order.
func Links(records []Record) []Link {
	out := make([]Link, 0, len(records))
	for _, r := range records {
		out = append(out, Link{Title: r.Title, Link: r.Link, Source: r.Source})
	}
	return out
}

// Load reads the headlines document at path. A missing file yields an empty
// document and a nil error; unreadable or malformed content yields an empty
// document and a non-nil error so the caller can log and carry on.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("reading headlines: %w", err)
	}
	return Decode(data)
}

// Decode parses a headlines document. Each article is decoded on its own;
// one that does not fit the record shape is skipped and counted in
// Malformed. Only a document that is not an object with an articles list
// is an error.
func Decode(data []byte) (Document, error) {
	var raw struct {
		FetchedAt string            `json:"fetched_at"`
		Articles  []json.RawMessage `json:"articles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("parsing headlines: %w", err)
	}

	doc := Document{FetchedAt: raw.FetchedAt, Articles: make([]Record, 0, len(raw.Articles))}
	for _, msg := range raw.Articles {
		var r Record
		if err := json.Unmarshal(msg, &r); err != nil {
			doc.Malformed++
			continue
		}
		doc.Articles = append(doc.Articles, r)
	}
	return doc, nil
}

// Save writes doc to path atomically.
func Save(path string, doc Document) error {
	return fsutil.WriteJSON(path, doc)
}
