package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/storelens/snapdiff/contentkey"
	"github.com/storelens/snapdiff/imagehash"
	"github.com/storelens/snapdiff/internal/metrics"
	"github.com/storelens/snapdiff/snapshot"
)

// fingerprint returns a copy of shots with content keys filled in and,
// when a codec is configured, a perceptual fingerprint for every
// screenshot that could be decoded. Decodes run concurrently with
// bounded fan-out, one unit of work per screenshot, and the call blocks
// until all of them finished: pairing needs the complete picture on both
// sides before it starts.
//
// A failed decode leaves the fingerprint absent rather than zeroed; the
// comparator then falls back to structural key comparison for that item.
func (e *Engine) fingerprint(ctx context.Context, shots []snapshot.Screenshot) []snapshot.Screenshot {
	out := make([]snapshot.Screenshot, len(shots))
	copy(out, shots)
	for i := range out {
		if out[i].ContentKey == "" {
			out[i].ContentKey = contentkey.Canonical(out[i].RawRef)
		}
	}
	if e.codec == nil {
		return out
	}

	p := pool.New().WithMaxGoroutines(e.decodeWorkers)
	var mu sync.Mutex
	for i := range out {
		if out[i].Fingerprint != "" {
			continue
		}
		i := i
		rawRef := out[i].RawRef
		p.Go(func() {
			start := time.Now()
			grid, err := e.codec.DecodeAndDownsample(ctx, rawRef)
			metrics.ScreenshotDecodeDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.ScreenshotDecodeFailures.Inc()
				e.logger.Warn("screenshot decode failed, comparing structurally only",
					zap.Int("index", i),
					zap.Error(err))
				return
			}
			fp, err := imagehash.DHash(grid)
			if err != nil {
				metrics.ScreenshotDecodeFailures.Inc()
				e.logger.Warn("screenshot fingerprint failed, comparing structurally only",
					zap.Int("index", i),
					zap.Error(err))
				return
			}
			mu.Lock()
			out[i].Fingerprint = fp
			mu.Unlock()
		})
	}
	p.Wait()
	return out
}
