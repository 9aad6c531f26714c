package assessment

import (
	"context"
	"time"

	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

// Reload rebuilds the threshold snapshot from the base loader and every
// override source, then publishes it. On any failure the previously
// published snapshot stays active and the error is returned.
func (e *Engine) Reload(ctx context.Context) error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	base, err := e.base()
	if err != nil {
		prom.RecordReload(e.metrics, prom.ReloadFailed, 0)
		e.logger.Warn("threshold reload failed: base", logging.Err(err))
		return errors.Wrap(err, errors.CodeUnknown, "load base thresholds")
	}

	merged := make(map[string]float64)
	for _, src := range e.sources {
		values, err := src.Overrides(ctx)
		if err != nil {
			prom.RecordReload(e.metrics, prom.ReloadFailed, 0)
			e.logger.Warn("threshold reload failed: override source",
				logging.String("source", src.Name()), logging.Err(err))
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "read overrides from "+src.Name())
		}
		for k, v := range values {
			merged[k] = v
		}
	}

	next, err := base.ApplyOverrides(merged)
	if err != nil {
		prom.RecordReload(e.metrics, prom.ReloadRejected, 0)
		e.logger.Warn("threshold overlay rejected, keeping previous snapshot",
			logging.Int("overrides", len(merged)),
			logging.Uint64("revision", e.Revision()),
			logging.Err(err))
		return err
	}

	rev := e.publish(next)
	prom.RecordReload(e.metrics, prom.ReloadApplied, rev)
	e.logger.Info("thresholds published",
		logging.Int("overrides", len(merged)),
		logging.Uint64("revision", rev))
	return nil
}

// Watch calls Reload every interval until ctx is done. Reload errors are
// logged by Reload and do not stop the loop.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = e.Reload(ctx)
		}
	}
}
