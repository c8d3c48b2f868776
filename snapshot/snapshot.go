// Package snapshot defines the data model for app-store listing
// observations and the results of comparing them.
package snapshot

import (
	"errors"
	"strings"
	"time"
)

// ErrMissingTitle is returned when a snapshot arrives without a title.
// Title is the minimum identifying field for a listing, so a record
// without one is a caller bug, not a degraded observation.
var ErrMissingTitle = errors.New("snapshot is missing a title")

// EntityKey identifies one tracked listing within one store.
type EntityKey struct {
	Store    string
	EntityID string
}

// Screenshot is one image reference within a snapshot's ordered gallery.
type Screenshot struct {
	// RawRef is the reference as observed: an http(s) URL or an inline
	// data: payload. Raw references are never compared directly; the
	// same image bytes can arrive under different encodings.
	RawRef string
	// Index is the ordinal position within the gallery.
	Index int
	// ContentKey is the canonical, encoding-independent identity derived
	// from RawRef. Empty means not yet derived; the comparator derives
	// it on demand.
	ContentKey string
	// Fingerprint is the 16-hex-char difference hash of the decoded
	// image, or empty when the image was not (or could not be) decoded.
	Fingerprint string
}

// Snapshot is one entity's observed state at one point in time.
// Immutable once constructed; owned by the comparison call that built it.
type Snapshot struct {
	EntityID    string
	Store       string
	Title       string
	Subtitle    string
	Description string
	// Position is the 1-based ranking position, lower is better.
	// Zero means the entity was not ranked at observation time.
	Position    int
	Screenshots []Screenshot
	ObservedAt  time.Time
}

// Key returns the (store, entity) pair this snapshot belongs to.
func (s *Snapshot) Key() EntityKey {
	return EntityKey{Store: s.Store, EntityID: s.EntityID}
}

// Validate checks the caller contract for a snapshot record. A missing
// title is a hard error rather than a silent default.
func (s *Snapshot) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}
