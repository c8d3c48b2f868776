package imagecodec

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/storelens/snapdiff/imagehash"
)

// solidPNG encodes a single-color PNG of the given size.
func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func dataURL(mediaType string, payload []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func newCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New(0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestDecodeAndDownsampleSolidColor(t *testing.T) {
	c := newCodec(t)
	ref := dataURL("image/png", solidPNG(t, 100, 80, color.RGBA{R: 40, G: 90, B: 200, A: 255}))

	grid, err := c.DecodeAndDownsample(context.Background(), ref)
	if err != nil {
		t.Fatalf("DecodeAndDownsample() error = %v", err)
	}

	if grid.Width != imagehash.GridWidth || grid.Height != imagehash.GridHeight {
		t.Fatalf("grid is %dx%d, want %dx%d",
			grid.Width, grid.Height, imagehash.GridWidth, imagehash.GridHeight)
	}

	// A solid color downsamples flat, so its hash is all zeros.
	hash, err := imagehash.DHash(grid)
	if err != nil {
		t.Fatalf("DHash() error = %v", err)
	}
	if hash != "0000000000000000" {
		t.Errorf("DHash(solid color) = %s, want 0000000000000000", hash)
	}
}

func TestDecodeIgnoresDeclaredMediaType(t *testing.T) {
	// The payload is PNG but the header claims JPEG; the sniffer decides.
	c := newCodec(t)
	ref := dataURL("image/jpeg", solidPNG(t, 20, 20, color.RGBA{R: 10, G: 10, B: 10, A: 255}))

	if _, err := c.DecodeAndDownsample(context.Background(), ref); err != nil {
		t.Errorf("DecodeAndDownsample() error = %v, want media type ignored", err)
	}
}

func TestDecodeUnpaddedBase64(t *testing.T) {
	c := newCodec(t)
	payload := base64.StdEncoding.EncodeToString(solidPNG(t, 16, 16, color.RGBA{A: 255}))
	ref := "data:image/png;base64," + string(bytes.TrimRight([]byte(payload), "="))

	if _, err := c.DecodeAndDownsample(context.Background(), ref); err != nil {
		t.Errorf("DecodeAndDownsample() error = %v, want unpadded payload accepted", err)
	}
}

func TestDecodeNetworkReferenceRejected(t *testing.T) {
	c := newCodec(t)
	_, err := c.DecodeAndDownsample(context.Background(), "https://cdn.example.com/s1.png")
	if !errors.Is(err, ErrNotInline) {
		t.Errorf("DecodeAndDownsample(url) error = %v, want ErrNotInline", err)
	}
}

func TestDecodeMalformedReferences(t *testing.T) {
	c := newCodec(t)
	tests := []struct {
		name string
		ref  string
	}{
		{"no payload separator", "data:image/png;base64"},
		{"not base64", "data:image/png;base64,!!!not-base64!!!"},
		{"payload is not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.DecodeAndDownsample(context.Background(), tt.ref); err == nil {
				t.Error("DecodeAndDownsample() expected error, got nil")
			}
		})
	}
}

func TestDecodeCancelledContext(t *testing.T) {
	c := newCodec(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ref := dataURL("image/png", solidPNG(t, 8, 8, color.RGBA{A: 255}))
	if _, err := c.DecodeAndDownsample(ctx, ref); !errors.Is(err, context.Canceled) {
		t.Errorf("DecodeAndDownsample() error = %v, want context.Canceled", err)
	}
}

func TestDecodeMemoizesByContentKey(t *testing.T) {
	c := newCodec(t)
	payload := solidPNG(t, 30, 30, color.RGBA{R: 120, G: 60, B: 30, A: 255})

	// Same payload under two media types shares one content key, so the
	// second call must hit the memo and return the identical grid.
	first, err := c.DecodeAndDownsample(context.Background(), dataURL("image/png", payload))
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	second, err := c.DecodeAndDownsample(context.Background(), dataURL("image/webp", payload))
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}

	firstHash, _ := imagehash.DHash(first)
	secondHash, _ := imagehash.DHash(second)
	if firstHash != secondHash {
		t.Errorf("memoized grids hash differently: %s vs %s", firstHash, secondHash)
	}
}

func TestDecodeGradientProducesDescendingBits(t *testing.T) {
	// Brightness falling left to right sets every comparison bit.
	img := image.NewRGBA(image.Rect(0, 0, 90, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 90; x++ {
			v := uint8(250 - x*2)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	c := newCodec(t)
	grid, err := c.DecodeAndDownsample(context.Background(), dataURL("image/png", buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeAndDownsample() error = %v", err)
	}
	hash, err := imagehash.DHash(grid)
	if err != nil {
		t.Fatalf("DHash() error = %v", err)
	}
	if hash != "ffffffffffffffff" {
		t.Errorf("DHash(left-to-right gradient) = %s, want ffffffffffffffff", hash)
	}
}
