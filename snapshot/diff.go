package snapshot

import (
	"github.com/storelens/snapdiff/textdiff"
)

// RankingStatus classifies how an entity's ranking position moved
// between two snapshots.
type RankingStatus string

const (
	RankingNew       RankingStatus = "new"       // previous snapshot had no position
	RankingRemoved   RankingStatus = "removed"   // current snapshot has no position
	RankingUnchanged RankingStatus = "unchanged" // delta is zero, or neither side is ranked
	RankingImproved  RankingStatus = "improved"  // moved toward the top
	RankingDeclined  RankingStatus = "declined"  // moved away from the top
)

// ScreenshotClass is the per-screenshot verdict for an image in the
// current gallery. Previous-side screenshots that found no match are
// implicitly removed and carry no class of their own.
type ScreenshotClass string

const (
	ScreenshotUnchanged ScreenshotClass = "unchanged" // same content, same position
	ScreenshotMoved     ScreenshotClass = "moved"     // same content, different position
	ScreenshotChanged   ScreenshotClass = "changed"   // visually similar but materially edited
	ScreenshotNew       ScreenshotClass = "new"       // no structural or perceptual match
)

// AllScreenshotClasses returns every screenshot verdict.
func AllScreenshotClasses() []ScreenshotClass {
	return []ScreenshotClass{
		ScreenshotUnchanged,
		ScreenshotMoved,
		ScreenshotChanged,
		ScreenshotNew,
	}
}

// ChangeType tags one dimension of a listing that changed between
// snapshots.
type ChangeType string

const (
	ChangeRanking      ChangeType = "ranking"
	ChangeTitle        ChangeType = "title"
	ChangeSubtitle     ChangeType = "subtitle"
	ChangeDescription  ChangeType = "description"
	ChangeScreenshots  ChangeType = "screenshots"
	ChangeNewEntry     ChangeType = "new_entry"
	ChangeRemovedEntry ChangeType = "removed_entry"
)

// RankingDiff describes ranking movement between two snapshots.
// Zero positions mean the entity was not ranked on that side. Delta is
// previous minus current (positive = moved toward the top) and is only
// meaningful when both sides are ranked; otherwise Status carries the
// whole story.
type RankingDiff struct {
	Current  int
	Previous int
	Delta    int
	Status   RankingStatus
}

// FieldDiff describes one text field across two snapshots. Segments is
// the word-level diff, populated only when the field changed; the
// Changed flag itself comes from plain string inequality.
type FieldDiff struct {
	Changed  bool
	Before   string
	After    string
	Segments []textdiff.Segment
}

// ScreenshotSetDiff summarizes the structural comparison of two
// screenshot galleries. Added and Removed are multiset differences of
// content keys, so duplicate images are counted rather than collapsed.
// Reordered is only set when both counts are zero but the key sequences
// disagree on order.
//
// Changed is deliberately structural-only: a pure reorder of visually
// identical images still sets it. Callers wanting a "visually confirmed"
// signal derive it from the per-item classes (all unchanged or moved,
// none new or changed).
type ScreenshotSetDiff struct {
	Added       int
	Removed     int
	Reordered   bool
	TotalBefore int
	TotalAfter  int
	Changed     bool
}

// DiffResult is the outcome of comparing one entity's two snapshots, or
// one snapshot against absence. Constructed once per comparison and
// never mutated afterward.
type DiffResult struct {
	EntityID    string
	Store       string
	Ranking     RankingDiff
	Title       FieldDiff
	Subtitle    FieldDiff
	Description FieldDiff
	Screenshots ScreenshotSetDiff
	// ScreenshotClasses holds one verdict per screenshot in the current
	// gallery, in gallery order.
	ScreenshotClasses []ScreenshotClass
	ChangeTypes       []ChangeType
	HasChanges        bool
}
