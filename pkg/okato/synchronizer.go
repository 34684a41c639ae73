package okato

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/hazyhaar/okato-places/pkg/naming"
)

// DefaultProgressEvery is the record interval between progress reports.
const DefaultProgressEvery = 200

// Sink persists one place and returns its generated identifier.
type Sink interface {
	InsertPlace(ctx context.Context, p *Place) (int64, error)
}

// ProgressFunc receives the 1-based ordinal of the record just read.
type ProgressFunc func(ordinal int64)

// Stats summarizes a run.
type Stats struct {
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Inserted  int64 `json:"inserted"`
	Roots     int64 `json:"roots"`
}

// Synchronizer rebuilds the place tree from OKATO rows in a single forward
// pass. Parents must appear before their children: a parent key that is not
// cached yet leaves the child without a parent.
//
// A Synchronizer is not safe for concurrent use.
type Synchronizer struct {
	sink   Sink
	logger *slog.Logger

	// stored maps hierarchical keys to the ids of places inserted in this run.
	stored map[string]int64

	progress      ProgressFunc
	progressEvery int64
}

// NewSynchronizer creates a Synchronizer writing to sink with an empty
// resolution cache.
func NewSynchronizer(sink Sink, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Synchronizer{
		sink:          sink,
		logger:        logger,
		stored:        make(map[string]int64),
		progressEvery: DefaultProgressEvery,
	}
	s.progress = func(ordinal int64) {
		s.logger.Info("parsed rows", "count", ordinal)
	}
	return s
}

// OnProgress replaces the progress callback. A non-positive every keeps the
// current interval.
func (s *Synchronizer) OnProgress(every int64, fn ProgressFunc) {
	if every > 0 {
		s.progressEvery = every
	}
	s.progress = fn
}

// Lookup returns the id stored for key during this run.
func (s *Synchronizer) Lookup(key string) (int64, bool) {
	id, ok := s.stored[key]
	return id, ok
}

// Save persists the record and caches its key. The record's parent is
// resolved from the cache only.
func (s *Synchronizer) Save(ctx context.Context, r Record) (*Place, error) {
	title := naming.StripTitle(r.Title)
	key := r.Key()

	p := &Place{
		Title:                  title,
		TitleWithPronunciation: naming.Pronounce(title),
		CountryID:              DefaultCountry,
		OkatoCode:              &key,
	}
	// A root has the empty parent key, which a row of blank codes may
	// itself be stored under.
	if parentKey := ParentKey(key); parentKey != "" {
		if parentID, ok := s.stored[parentKey]; ok {
			p.ParentPlaceID = &parentID
		}
	}

	id, err := s.sink.InsertPlace(ctx, p)
	if err != nil {
		return nil, &RecordError{Ordinal: r.Ordinal, Kind: ErrPersistence, Err: err}
	}
	p.ID = id

	if prev, dup := s.stored[key]; dup {
		s.logger.Warn("duplicate okato code, keeping first place",
			"code", key, "kept_id", prev, "new_id", id, "record", r.Ordinal)
	} else {
		s.stored[key] = id
	}
	return p, nil
}

// Run drains src, reporting progress, skipping header rows and saving every
// other record. It stops at the first error.
func (s *Synchronizer) Run(ctx context.Context, src RecordSource) (Stats, error) {
	var st Stats
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		r, err := src.Next()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			return st, err
		}

		st.Processed++
		if s.progress != nil && st.Processed%s.progressEvery == 0 {
			s.progress(st.Processed)
		}

		if Skip(r) {
			st.Skipped++
			continue
		}

		p, err := s.Save(ctx, r)
		if err != nil {
			return st, err
		}
		st.Inserted++
		if p.ParentPlaceID == nil {
			st.Roots++
		}
	}
}
