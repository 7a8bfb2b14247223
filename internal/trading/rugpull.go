package trading

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"memeforge/internal/model"
)

// Rugpuller drains a pool and removes its record.
type Rugpuller interface {
	Rugpull(ctx context.Context, mint string) (model.RugpullResult, error)
}

// ExecuteRugpull winds down any active trading loop for the mint, then pulls
// the pool. Stopping first guarantees no trade lands after liquidity is gone.
func ExecuteRugpull(ctx context.Context, engine *Engine, pools Rugpuller, mint string, logger *zap.Logger) (model.RugpullResult, Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var stats Stats
	if engine.Active() {
		final, err := engine.Stop()
		if err != nil && !errors.Is(err, ErrNotActive) {
			return model.RugpullResult{}, Stats{}, err
		}
		stats = final
		logger.Info("trading loop halted for rugpull", zap.String("mint", mint))
	}

	result, err := pools.Rugpull(ctx, mint)
	if err != nil {
		return model.RugpullResult{}, stats, err
	}
	return result, stats, nil
}
