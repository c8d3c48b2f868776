// Package textdiff produces word-level diffs of listing text fields via
// longest-common-subsequence over tokens.
package textdiff

import (
	"unicode"

	"github.com/storelens/snapdiff/internal/metrics"
)

// SegmentType classifies one run of diff output.
type SegmentType string

const (
	SegmentEqual   SegmentType = "equal"
	SegmentAdded   SegmentType = "added"
	SegmentRemoved SegmentType = "removed"
)

// Segment is one contiguous run of equal, added, or removed text.
// Concatenating the Values of all equal and removed segments restores
// the before text; equal and added segments restore the after text.
type Segment struct {
	Value string
	Type  SegmentType
}

// MaxTableCells bounds the LCS table at 1<<20 cells (roughly 8 MB of
// ints). When the product of the two token counts exceeds it, Diff takes
// a coarse whole-field fallback instead of the DP path. This is a
// deliberate precision-for-safety trade: a pathological description pair
// degrades to a two-segment diff rather than stalling the comparison or
// exhausting memory.
const MaxTableCells = 1 << 20

// Diff compares two texts token by token and returns the ordered
// equal/added/removed segments. Whitespace runs are kept as tokens of
// their own, so spacing edits show up in the diff instead of being
// silently normalized away. On ties the backtrack prefers removed over
// added, and adjacent segments of one type are merged.
func Diff(before, after string) []Segment {
	if before == after {
		if before == "" {
			return nil
		}
		return []Segment{{Value: before, Type: SegmentEqual}}
	}
	if before == "" {
		return []Segment{{Value: after, Type: SegmentAdded}}
	}
	if after == "" {
		return []Segment{{Value: before, Type: SegmentRemoved}}
	}

	a := tokenize(before)
	b := tokenize(after)
	if len(a)*len(b) > MaxTableCells {
		metrics.TextDiffFallbacksTotal.Inc()
		return []Segment{
			{Value: before, Type: SegmentRemoved},
			{Value: after, Type: SegmentAdded},
		}
	}
	return merge(backtrack(a, b, lcsTable(a, b)))
}

// tokenize splits s into alternating runs of non-whitespace and
// whitespace, keeping both.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	var toks []string
	start := 0
	var inSpace bool
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i == 0 {
			inSpace = sp
			continue
		}
		if sp != inSpace {
			toks = append(toks, s[start:i])
			start = i
			inSpace = sp
		}
	}
	return append(toks, s[start:])
}

// lcsTable builds the full (len(a)+1) x (len(b)+1) LCS length table.
func lcsTable(a, b []string) [][]int {
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				table[i][j] = table[i-1][j-1] + 1
			case table[i-1][j] >= table[i][j-1]:
				table[i][j] = table[i-1][j]
			default:
				table[i][j] = table[i][j-1]
			}
		}
	}
	return table
}

// backtrack walks the table from the final cell and returns segments in
// reverse order. When the two sub-solutions tie, the removed token is
// taken first.
func backtrack(a, b []string, table [][]int) []Segment {
	var rev []Segment
	i, j := len(a), len(b)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			rev = append(rev, Segment{Value: a[i-1], Type: SegmentEqual})
			i--
			j--
		case j == 0 || (i > 0 && table[i-1][j] >= table[i][j-1]):
			rev = append(rev, Segment{Value: a[i-1], Type: SegmentRemoved})
			i--
		default:
			rev = append(rev, Segment{Value: b[j-1], Type: SegmentAdded})
			j--
		}
	}
	return rev
}

// merge reverses the backtracked segments into original order and joins
// adjacent segments of the same type.
func merge(rev []Segment) []Segment {
	segs := make([]Segment, 0, len(rev))
	for k := len(rev) - 1; k >= 0; k-- {
		s := rev[k]
		if n := len(segs); n > 0 && segs[n-1].Type == s.Type {
			segs[n-1].Value += s.Value
			continue
		}
		segs = append(segs, s)
	}
	return segs
}
