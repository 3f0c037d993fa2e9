package common

import (
	"context"

	"go.uber.org/zap"
)

// BestEffort runs an enrichment sub-fetch that is allowed to fail. A failure is
// logged and reported through the ok flag; it never propagates. Every optional
// field (thumbnail, avatar, balance, catalog price) goes through this one path.
func BestEffort[T any](ctx context.Context, logger *zap.Logger, name string, fn func(context.Context) (T, error)) (T, bool) {
	value, err := fn(ctx)
	if err != nil {
		if logger != nil {
			logger.Debug("best-effort enrichment failed",
				zap.String("enrichment", name),
				zap.Error(err),
			)
		}
		var zero T
		return zero, false
	}
	return value, true
}
