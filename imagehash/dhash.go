// Package imagehash computes perceptual difference hashes over
// downsampled pixel grids and measures Hamming distance between them.
//
// The package never touches raw image bytes: decoding and downsampling
// to the fixed grid belong to an image codec collaborator. This keeps
// the hash itself portable and testable without image I/O.
package imagehash

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

const (
	// GridWidth and GridHeight are the geometry DHash expects: 8 rows of
	// 9 pixels give 8 horizontal comparisons per row, 64 bits total.
	GridWidth  = 9
	GridHeight = 8

	// IdenticalThreshold is the largest Hamming distance at which two
	// fingerprints count as the same image.
	IdenticalThreshold = 6

	// SimilarThreshold is the largest Hamming distance at which two
	// fingerprints count as edits of the same image. Beyond it the
	// images are unrelated.
	SimilarThreshold = 20

	// DistanceIncomparable is returned when a distance cannot be
	// computed. It compares greater than any threshold.
	DistanceIncomparable = math.MaxInt
)

// PixelGrid is a downsampled luminance buffer in row-major order.
// Lum holds Width*Height samples.
type PixelGrid struct {
	Width  int
	Height int
	Lum    []uint8
}

// Luminance converts one RGB sample to luminance using the BT.601
// weights, rounded to the nearest integer.
func Luminance(r, g, b uint8) uint8 {
	return uint8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b) + 0.5)
}

// DHash computes the 64-bit difference hash of a 9x8 luminance grid,
// encoded as a 16-character hex string. Each bit records whether a pixel
// is strictly brighter than its right neighbour, row-major, first
// comparison in the most significant bit.
//
// A grid of any other geometry is rejected; callers treat that the same
// as a decode failure (absent fingerprint).
func DHash(g PixelGrid) (string, error) {
	if g.Width != GridWidth || g.Height != GridHeight {
		return "", fmt.Errorf("imagehash: grid must be %dx%d, got %dx%d",
			GridWidth, GridHeight, g.Width, g.Height)
	}
	if len(g.Lum) != g.Width*g.Height {
		return "", fmt.Errorf("imagehash: grid has %d samples, want %d",
			len(g.Lum), g.Width*g.Height)
	}

	var h uint64
	for y := 0; y < g.Height; y++ {
		row := g.Lum[y*g.Width : (y+1)*g.Width]
		for x := 0; x < g.Width-1; x++ {
			h <<= 1
			if row[x] > row[x+1] {
				h |= 1
			}
		}
	}
	return fmt.Sprintf("%016x", h), nil
}

// Distance returns the Hamming distance between two fingerprints, or
// DistanceIncomparable when either fingerprint is absent or malformed,
// or when the two differ in length.
func Distance(a, b string) int {
	if a == "" || b == "" || len(a) != len(b) {
		return DistanceIncomparable
	}
	x, err := strconv.ParseUint(a, 16, 64)
	if err != nil {
		return DistanceIncomparable
	}
	y, err := strconv.ParseUint(b, 16, 64)
	if err != nil {
		return DistanceIncomparable
	}
	return bits.OnesCount64(x ^ y)
}
