// Package screenshots reconciles two ordered screenshot galleries into a
// structural set diff and a per-image verdict for the current side.
//
// Structure comes first: content keys decide what was added, removed, or
// reordered. Perceptual fingerprints refine the picture afterwards, so a
// re-encoded but visually identical image is not reported as new.
package screenshots

import (
	"github.com/storelens/snapdiff/contentkey"
	"github.com/storelens/snapdiff/imagehash"
	"github.com/storelens/snapdiff/snapshot"
)

// Compare diffs two galleries. The returned classes hold one verdict per
// current screenshot, in gallery order; previous screenshots left
// unmatched surface only through the Removed count.
//
// The set-level Changed flag is structural-only: Added, Removed, or
// Reordered sets it regardless of what the perceptual pass concludes.
func Compare(current, previous []snapshot.Screenshot) (snapshot.ScreenshotSetDiff, []snapshot.ScreenshotClass) {
	curKeys := keysOf(current)
	prevKeys := keysOf(previous)

	diff := structuralDiff(curKeys, prevKeys)
	classes := classify(current, previous, curKeys, prevKeys)
	return diff, classes
}

// structuralDiff computes the multiset added/removed counts and the
// reorder flag over content key sequences.
func structuralDiff(curKeys, prevKeys []string) snapshot.ScreenshotSetDiff {
	diff := snapshot.ScreenshotSetDiff{
		TotalBefore: len(prevKeys),
		TotalAfter:  len(curKeys),
	}

	// Multiset difference: duplicates count, they are not collapsed.
	counts := make(map[string]int, len(prevKeys))
	for _, k := range prevKeys {
		counts[k]++
	}
	for _, k := range curKeys {
		counts[k]--
	}
	for _, c := range counts {
		if c > 0 {
			diff.Removed += c
		} else if c < 0 {
			diff.Added += -c
		}
	}

	if diff.Added == 0 && diff.Removed == 0 && len(curKeys) == len(prevKeys) {
		for i := range curKeys {
			if curKeys[i] != prevKeys[i] {
				diff.Reordered = true
				break
			}
		}
	}

	diff.Changed = diff.Added > 0 || diff.Removed > 0 || diff.Reordered
	return diff
}

// classify greedily matches each current screenshot against an unused
// previous one: exact content key first (FIFO per key, so repeated
// identical images pair in original relative order), then the closest
// fingerprint within the similarity band. Greedy first-available
// matching is the contract here, including its suboptimality on
// adversarial inputs; an assignment solver would change observable
// results.
func classify(current, previous []snapshot.Screenshot, curKeys, prevKeys []string) []snapshot.ScreenshotClass {
	classes := make([]snapshot.ScreenshotClass, len(current))
	used := make([]bool, len(previous))

	byKey := make(map[string][]int, len(previous))
	for j, k := range prevKeys {
		byKey[k] = append(byKey[k], j)
	}

	for i := range current {
		// Exact key match. Entries may have been consumed by an earlier
		// fingerprint match, so skip used indexes.
		queue := byKey[curKeys[i]]
		for len(queue) > 0 && used[queue[0]] {
			queue = queue[1:]
		}
		byKey[curKeys[i]] = queue
		if len(queue) > 0 {
			j := queue[0]
			byKey[curKeys[i]] = queue[1:]
			used[j] = true
			if j == i {
				classes[i] = snapshot.ScreenshotUnchanged
			} else {
				classes[i] = snapshot.ScreenshotMoved
			}
			continue
		}

		// Perceptual match against all still-unused previous images.
		// An absent fingerprint on either side means "cannot confirm
		// visually": the item keeps its structural verdict (new).
		j, d := closestUnused(current[i].Fingerprint, previous, used)
		if j < 0 || d > imagehash.SimilarThreshold {
			classes[i] = snapshot.ScreenshotNew
			continue
		}
		used[j] = true
		switch {
		case d <= imagehash.IdenticalThreshold && j == i:
			classes[i] = snapshot.ScreenshotUnchanged
		case d <= imagehash.IdenticalThreshold:
			classes[i] = snapshot.ScreenshotMoved
		default:
			classes[i] = snapshot.ScreenshotChanged
		}
	}
	return classes
}

// closestUnused returns the index and distance of the unused previous
// screenshot whose fingerprint is nearest to fp, or (-1, incomparable)
// when no candidate exists.
func closestUnused(fp string, previous []snapshot.Screenshot, used []bool) (int, int) {
	best, bestDist := -1, imagehash.DistanceIncomparable
	if fp == "" {
		return best, bestDist
	}
	for j := range previous {
		if used[j] || previous[j].Fingerprint == "" {
			continue
		}
		if d := imagehash.Distance(fp, previous[j].Fingerprint); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

// keysOf returns the content key for every screenshot, deriving missing
// keys from the raw reference.
func keysOf(shots []snapshot.Screenshot) []string {
	keys := make([]string, len(shots))
	for i, s := range shots {
		if s.ContentKey != "" {
			keys[i] = s.ContentKey
			continue
		}
		keys[i] = contentkey.Canonical(s.RawRef)
	}
	return keys
}
