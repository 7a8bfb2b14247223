package trading

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"memeforge/internal/model"
)

var (
	// ErrAlreadyActive reports a start while a loop is running.
	ErrAlreadyActive = errors.New("trading loop already active")
	// ErrNotActive reports a stop with no loop running.
	ErrNotActive = errors.New("trading loop not active")
)

// Swapper executes the two trade primitives the loop needs.
type Swapper interface {
	Buy(ctx context.Context, mint string, solAmount decimal.Decimal, walletID int) (model.TradeResult, error)
	Sell(ctx context.Context, mint string, tokenAmount decimal.Decimal, walletID int) (model.TradeResult, error)
}

// Options configures one trading loop.
type Options struct {
	IntervalMin time.Duration
	IntervalMax time.Duration
	WarmupMin   time.Duration
	WarmupMax   time.Duration
	BuyProb     float64
	BuySOL      decimal.Decimal
	SellTokens  decimal.Decimal
	// Wallets are the participant wallet ids the loop rotates through.
	Wallets []int
}

// Engine drives the randomized buy/sell loop. At most one loop runs at a
// time; Start and Stop are safe to call from any goroutine. A failed trade is
// counted and reported but never stops the loop.
type Engine struct {
	swapper Swapper
	opts    Options
	logger  *zap.Logger
	rng     *rand.Rand

	// notify, when set, receives every trade outcome including failures.
	notify func(model.TradeResult)

	mu        sync.Mutex
	active    bool
	cancel    context.CancelFunc
	done      chan struct{}
	stats     Stats
	walletIdx int
}

// NewEngine builds a trading engine over a swapper.
func NewEngine(swapper Swapper, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		swapper: swapper,
		opts:    opts,
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// OnTrade registers a callback invoked after every trade attempt. It must be
// set before Start.
func (e *Engine) OnTrade(fn func(model.TradeResult)) {
	e.notify = fn
}

// Start launches the loop for a mint. The loop begins with a short warm-up
// delay, then alternates randomized trades and waits until Stop is called or
// ctx is cancelled.
func (e *Engine) Start(ctx context.Context, mint string) error {
	if len(e.opts.Wallets) == 0 {
		return errors.New("no trading wallets configured")
	}

	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return ErrAlreadyActive
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.active = true
	e.cancel = cancel
	e.done = make(chan struct{})
	e.walletIdx = 0
	e.stats = Stats{TokenMint: mint, StartedAt: time.Now().UTC()}
	done := e.done
	e.mu.Unlock()

	go func() {
		defer close(done)
		e.run(runCtx, mint)
	}()

	e.logger.Info("trading loop started", zap.String("mint", mint))
	return nil
}

// Stop halts the loop, waits for any in-flight trade to finish, and returns
// the final statistics.
func (e *Engine) Stop() (Stats, error) {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return Stats{}, ErrNotActive
	}
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done

	e.mu.Lock()
	e.active = false
	e.stats.StoppedAt = time.Now().UTC()
	final := e.stats
	e.mu.Unlock()

	e.logger.Info("trading loop stopped",
		zap.String("mint", final.TokenMint),
		zap.Int("trades", final.Trades),
		zap.Int("failures", final.Failures),
	)
	return final, nil
}

// Active reports whether a loop is running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Status returns a snapshot of the current run's statistics.
func (e *Engine) Status() (Stats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats, e.active
}

func (e *Engine) run(ctx context.Context, mint string) {
	if !e.sleep(ctx, e.randomDuration(e.opts.WarmupMin, e.opts.WarmupMax)) {
		return
	}
	for {
		e.trade(ctx, mint)
		if !e.sleep(ctx, e.randomDuration(e.opts.IntervalMin, e.opts.IntervalMax)) {
			return
		}
	}
}

func (e *Engine) trade(ctx context.Context, mint string) {
	walletID := e.nextWallet()

	var result model.TradeResult
	var err error
	if e.roll() < e.opts.BuyProb {
		result, err = e.swapper.Buy(ctx, mint, e.opts.BuySOL, walletID)
		if err != nil {
			result = model.TradeResult{
				Side: model.TradeBuy, WalletID: walletID, TokenMint: mint,
				Err: err.Error(), At: time.Now().UTC(),
			}
		}
	} else {
		result, err = e.swapper.Sell(ctx, mint, e.opts.SellTokens, walletID)
		if err != nil {
			result = model.TradeResult{
				Side: model.TradeSell, WalletID: walletID, TokenMint: mint,
				Err: err.Error(), At: time.Now().UTC(),
			}
		}
	}
	if err != nil {
		e.logger.Warn("trade failed",
			zap.String("side", string(result.Side)),
			zap.Int("wallet", walletID),
			zap.Error(err),
		)
	}

	e.mu.Lock()
	e.stats.record(result)
	e.mu.Unlock()

	if e.notify != nil {
		e.notify(result)
	}
}

func (e *Engine) nextWallet() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.opts.Wallets[e.walletIdx%len(e.opts.Wallets)]
	e.walletIdx++
	return id
}

func (e *Engine) roll() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

func (e *Engine) randomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return min + time.Duration(e.rng.Int63n(int64(max-min)))
}

// sleep waits for d or until ctx is cancelled; it reports whether the full
// wait elapsed.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
