// Package engine orchestrates full snapshot comparisons: ranking
// movement, text field edits, and screenshot gallery changes, per entity
// and across whole catalogs.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storelens/snapdiff/imagehash"
	"github.com/storelens/snapdiff/internal/metrics"
	"github.com/storelens/snapdiff/screenshots"
	"github.com/storelens/snapdiff/snapshot"
	"github.com/storelens/snapdiff/textdiff"
)

// Codec decodes one raw screenshot reference and downsamples it to the
// fingerprint grid. Implementations are expected to honor ctx deadlines;
// the engine treats a timeout like any other decode failure.
type Codec interface {
	DecodeAndDownsample(ctx context.Context, rawRef string) (imagehash.PixelGrid, error)
}

const defaultDecodeWorkers = 8

// Engine compares snapshots. Aside from the optional decode fan-out it
// is pure and deterministic: the same inputs always produce the same
// DiffResult.
type Engine struct {
	logger        *zap.Logger
	codec         Codec
	decodeWorkers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCodec sets the image codec used to fingerprint screenshots.
// Without a codec the engine runs structural comparison only.
func WithCodec(c Codec) Option {
	return func(e *Engine) { e.codec = c }
}

// WithDecodeWorkers bounds the decode fan-out.
func WithDecodeWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.decodeWorkers = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        zap.NewNop(),
		decodeWorkers: defaultDecodeWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DiffEntity compares one entity's current snapshot against its previous
// one. Either side may be nil: a nil previous yields a new-entry result,
// a nil current a removed-entry result. A snapshot that fails validation
// is a caller bug and returns an error.
func (e *Engine) DiffEntity(ctx context.Context, current, previous *snapshot.Snapshot) (*snapshot.DiffResult, error) {
	if current == nil && previous == nil {
		return nil, errors.New("engine: both snapshots are nil")
	}
	if current != nil {
		if err := current.Validate(); err != nil {
			return nil, fmt.Errorf("current snapshot: %w", err)
		}
	}
	if previous != nil {
		if err := previous.Validate(); err != nil {
			return nil, fmt.Errorf("previous snapshot: %w", err)
		}
	}

	var res *snapshot.DiffResult
	switch {
	case previous == nil:
		res = newEntry(current)
	case current == nil:
		res = removedEntry(previous)
	default:
		res = e.diffPair(ctx, current, previous)
	}

	result := "unchanged"
	if res.HasChanges {
		result = "changed"
	}
	metrics.ComparisonsTotal.WithLabelValues(result).Inc()
	return res, nil
}

// DiffCatalog compares two catalogs and returns one DiffResult per
// entity key present in either, exactly once each: entities from the
// current catalog in their order, then previous-only entities in theirs.
func (e *Engine) DiffCatalog(ctx context.Context, current, previous []*snapshot.Snapshot) ([]*snapshot.DiffResult, error) {
	runID := uuid.New().String()
	log := e.logger.With(zap.String("run_id", runID))

	prevByKey := make(map[snapshot.EntityKey]*snapshot.Snapshot, len(previous))
	for _, s := range previous {
		if s == nil {
			continue
		}
		prevByKey[s.Key()] = s
	}

	seen := make(map[snapshot.EntityKey]bool, len(current))
	results := make([]*snapshot.DiffResult, 0, len(current)+len(previous))
	changed := 0

	for _, cur := range current {
		if cur == nil || seen[cur.Key()] {
			continue
		}
		seen[cur.Key()] = true
		res, err := e.DiffEntity(ctx, cur, prevByKey[cur.Key()])
		if err != nil {
			return nil, fmt.Errorf("diff entity %s/%s: %w", cur.Store, cur.EntityID, err)
		}
		if res.HasChanges {
			changed++
		}
		results = append(results, res)
	}

	for _, prev := range previous {
		if prev == nil || seen[prev.Key()] {
			continue
		}
		seen[prev.Key()] = true
		res, err := e.DiffEntity(ctx, nil, prev)
		if err != nil {
			return nil, fmt.Errorf("diff entity %s/%s: %w", prev.Store, prev.EntityID, err)
		}
		changed++
		results = append(results, res)
	}

	metrics.CatalogDiffsTotal.Inc()
	log.Info("catalog diff complete",
		zap.Int("entities", len(results)),
		zap.Int("changed", changed))
	return results, nil
}

// diffPair compares two present snapshots of the same entity.
func (e *Engine) diffPair(ctx context.Context, current, previous *snapshot.Snapshot) *snapshot.DiffResult {
	res := &snapshot.DiffResult{
		EntityID: current.EntityID,
		Store:    current.Store,
	}

	res.Ranking = rankingDiff(current.Position, previous.Position)
	res.Title = fieldDiff(previous.Title, current.Title)
	res.Subtitle = fieldDiff(previous.Subtitle, current.Subtitle)
	res.Description = fieldDiff(previous.Description, current.Description)

	// Fingerprint both sides before pairing: the comparator needs every
	// fingerprint present or explicitly absent, otherwise matches would
	// vary across retries.
	cur := e.fingerprint(ctx, current.Screenshots)
	prev := e.fingerprint(ctx, previous.Screenshots)
	res.Screenshots, res.ScreenshotClasses = screenshots.Compare(cur, prev)

	if res.Ranking.Status != snapshot.RankingUnchanged {
		res.ChangeTypes = append(res.ChangeTypes, snapshot.ChangeRanking)
	}
	if res.Title.Changed {
		res.ChangeTypes = append(res.ChangeTypes, snapshot.ChangeTitle)
	}
	if res.Subtitle.Changed {
		res.ChangeTypes = append(res.ChangeTypes, snapshot.ChangeSubtitle)
	}
	if res.Description.Changed {
		res.ChangeTypes = append(res.ChangeTypes, snapshot.ChangeDescription)
	}
	if res.Screenshots.Changed {
		res.ChangeTypes = append(res.ChangeTypes, snapshot.ChangeScreenshots)
	}
	res.HasChanges = len(res.ChangeTypes) > 0
	return res
}

// newEntry builds the result for an entity with no previous snapshot:
// every current screenshot counts as added and text fields carry no
// before value.
func newEntry(current *snapshot.Snapshot) *snapshot.DiffResult {
	setDiff, classes := screenshots.Compare(current.Screenshots, nil)
	return &snapshot.DiffResult{
		EntityID:          current.EntityID,
		Store:             current.Store,
		Ranking:           rankingDiff(current.Position, 0),
		Title:             snapshot.FieldDiff{After: current.Title},
		Subtitle:          snapshot.FieldDiff{After: current.Subtitle},
		Description:       snapshot.FieldDiff{After: current.Description},
		Screenshots:       setDiff,
		ScreenshotClasses: classes,
		ChangeTypes:       []snapshot.ChangeType{snapshot.ChangeNewEntry},
		HasChanges:        true,
	}
}

// removedEntry builds the result for an entity that disappeared: text
// fields carry the last-known values unchanged, since there is nothing
// to compare against.
func removedEntry(previous *snapshot.Snapshot) *snapshot.DiffResult {
	return &snapshot.DiffResult{
		EntityID: previous.EntityID,
		Store:    previous.Store,
		Ranking: snapshot.RankingDiff{
			Previous: previous.Position,
			Status:   snapshot.RankingRemoved,
		},
		Title:       snapshot.FieldDiff{Before: previous.Title},
		Subtitle:    snapshot.FieldDiff{Before: previous.Subtitle},
		Description: snapshot.FieldDiff{Before: previous.Description},
		Screenshots: snapshot.ScreenshotSetDiff{
			Removed:     len(previous.Screenshots),
			TotalBefore: len(previous.Screenshots),
			Changed:     len(previous.Screenshots) > 0,
		},
		ChangeTypes: []snapshot.ChangeType{snapshot.ChangeRemovedEntry},
		HasChanges:  true,
	}
}

// rankingDiff classifies ranking movement. Zero means unranked; the
// delta is previous minus current and only defined when both sides are
// ranked.
func rankingDiff(current, previous int) snapshot.RankingDiff {
	d := snapshot.RankingDiff{Current: current, Previous: previous}
	switch {
	case current > 0 && previous == 0:
		d.Status = snapshot.RankingNew
	case current == 0 && previous > 0:
		d.Status = snapshot.RankingRemoved
	case current == 0 && previous == 0:
		d.Status = snapshot.RankingUnchanged
	default:
		d.Delta = previous - current
		switch {
		case d.Delta > 0:
			d.Status = snapshot.RankingImproved
		case d.Delta < 0:
			d.Status = snapshot.RankingDeclined
		default:
			d.Status = snapshot.RankingUnchanged
		}
	}
	return d
}

// fieldDiff compares one text field. The Changed flag is plain string
// inequality; the word-level segments are computed only when the field
// actually changed.
func fieldDiff(before, after string) snapshot.FieldDiff {
	d := snapshot.FieldDiff{
		Changed: before != after,
		Before:  before,
		After:   after,
	}
	if d.Changed {
		d.Segments = textdiff.Diff(before, after)
	}
	return d
}
