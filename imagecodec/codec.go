// Package imagecodec decodes inline screenshot payloads and downsamples
// them to the fingerprint grid. It is the library's default
// implementation of the engine's Codec.
//
// Only data: references are decodable locally. Network references get
// ErrNotInline: this core does not fetch data, so hosts that want
// perceptual comparison for remote screenshots wrap their fetcher behind
// the same interface.
package imagecodec

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	// Registered decoders for the formats app stores actually serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/storelens/snapdiff/contentkey"
	"github.com/storelens/snapdiff/imagehash"
)

// ErrNotInline is returned for references the codec cannot decode
// locally. The engine treats it like any other decode failure: the
// screenshot keeps an absent fingerprint and is compared structurally.
var ErrNotInline = errors.New("imagecodec: reference is not an inline payload")

// DefaultCacheSize is the decoded-grid memo capacity used when New is
// given a non-positive size.
const DefaultCacheSize = 512

// Codec decodes inline image payloads into 9x8 luminance grids. The
// memo is keyed by content key, so the same image payload arriving under
// different media-type headers decodes once. The engine itself caches
// nothing; memoization lives here, in the collaborator.
type Codec struct {
	cache *lru.Cache[string, imagehash.PixelGrid]
}

// New creates a Codec with a bounded decode memo.
func New(cacheSize int) (*Codec, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, imagehash.PixelGrid](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("imagecodec: create cache: %w", err)
	}
	return &Codec{cache: cache}, nil
}

// DecodeAndDownsample decodes one inline reference and downsamples it to
// the fingerprint grid.
func (c *Codec) DecodeAndDownsample(ctx context.Context, rawRef string) (imagehash.PixelGrid, error) {
	if err := ctx.Err(); err != nil {
		return imagehash.PixelGrid{}, err
	}

	key := contentkey.Canonical(rawRef)
	if grid, ok := c.cache.Get(key); ok {
		return grid, nil
	}

	payload, err := inlinePayload(rawRef)
	if err != nil {
		return imagehash.PixelGrid{}, err
	}
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return imagehash.PixelGrid{}, fmt.Errorf("imagecodec: decode image: %w", err)
	}

	grid := downsample(img)
	c.cache.Add(key, grid)
	return grid, nil
}

// inlinePayload extracts the raw image bytes from a data: reference.
// The declared media type is ignored; image.Decode sniffs the actual
// format from the bytes.
func inlinePayload(rawRef string) ([]byte, error) {
	ref := strings.TrimSpace(rawRef)
	if !strings.HasPrefix(strings.ToLower(ref), "data:") {
		return nil, ErrNotInline
	}
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, fmt.Errorf("imagecodec: malformed data reference: no payload separator")
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Payloads in the wild come both padded and unpadded.
			data, err = base64.RawStdEncoding.DecodeString(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("imagecodec: decode base64 payload: %w", err)
		}
		return data, nil
	}

	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("imagecodec: unescape payload: %w", err)
	}
	return []byte(decoded), nil
}

// downsample scales an image to the 9x8 hash grid and converts it to
// luminance samples.
func downsample(img image.Image) imagehash.PixelGrid {
	dst := image.NewRGBA(image.Rect(0, 0, imagehash.GridWidth, imagehash.GridHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	grid := imagehash.PixelGrid{
		Width:  imagehash.GridWidth,
		Height: imagehash.GridHeight,
		Lum:    make([]uint8, imagehash.GridWidth*imagehash.GridHeight),
	}
	for y := 0; y < imagehash.GridHeight; y++ {
		for x := 0; x < imagehash.GridWidth; x++ {
			off := dst.PixOffset(x, y)
			grid.Lum[y*imagehash.GridWidth+x] = imagehash.Luminance(
				dst.Pix[off], dst.Pix[off+1], dst.Pix[off+2])
		}
	}
	return grid
}
