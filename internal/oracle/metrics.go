package oracle

import (
	"context"
	"time"

	"github.com/loreline/loreline/internal/metrics"
)

type timedOracle struct {
	inner     Oracle
	collector *metrics.Collector
}

// WithMetrics wraps an oracle so every completion records its duration
// and prompt/response sizes.
func WithMetrics(o Oracle, collector *metrics.Collector) Oracle {
	if collector == nil {
		return o
	}
	return &timedOracle{inner: o, collector: collector}
}

func (t *timedOracle) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	response, err := t.inner.Complete(ctx, prompt)
	t.collector.RecordOracleUsage(time.Since(start), int64(len(prompt)), int64(len(response)))
	return response, err
}
