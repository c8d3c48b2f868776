// Package contentkey canonicalizes raw screenshot references into
// comparable content keys.
//
// Keys are the exact-match identity for screenshots: two references that
// carry the same image bytes must produce the same key even when their
// transport encoding differs (media-type header on a data: reference,
// fragment on a URL).
package contentkey

import "strings"

// Canonical derives the content key for a raw screenshot reference.
//
// Inline data: references compare by payload alone, so the header up to
// the first comma is stripped: "data:image/png;base64,AAAA" and
// "data:image/jpeg;base64,AAAA" get the same key. Network references
// compare by location, so only the fragment suffix is dropped and
// surrounding whitespace trimmed.
//
// Canonical is a pure function and never fails: malformed input degrades
// to a trimmed copy of itself. The key for a non-empty reference is never
// empty, since an empty key would falsely match across unrelated images.
func Canonical(raw string) string {
	ref := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(ref), "data:") {
		if i := strings.IndexByte(ref, ','); i >= 0 {
			if payload := strings.TrimSpace(ref[i+1:]); payload != "" {
				return payload
			}
		}
		// No comma or empty payload: keep the whole reference as key.
		return ref
	}
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		if head := strings.TrimSpace(ref[:i]); head != "" {
			return head
		}
	}
	return ref
}
