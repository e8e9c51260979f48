// Package vigil runs the engine on a fixed schedule: every Interval it ticks
// each configured asset in order, Stagger apart, then records an equity
// snapshot.
package vigil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/internal/logger"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/shopspring/decimal"
)

// Asset is a tracked symbol and the USD spent on each accumulation buy.
type Asset struct {
	Symbol    string
	BuyAmount decimal.Decimal
}

type Runner struct {
	Engine   engine.Trader
	Assets   []Asset
	Interval time.Duration
	Stagger  time.Duration

	// Optional.
	Equity    journal.EquityRecorder
	OnAction  func(engine.Action)
	OnCycle   func(cycle int, snap engine.Snapshot)
	MaxCycles int         // 0 runs until ctx is cancelled
	StopWhen  func() bool // checked after every cycle
}

type Summary struct {
	Cycles      int
	Buys        int
	TakeProfits int
	StopLosses  int
	Skipped     int
	Errors      int
	Cash        decimal.Decimal
	Equity      decimal.Decimal
}

func (s *Summary) count(act engine.Action) {
	switch act.Reason {
	case engine.Accumulate:
		s.Buys++
	case engine.TakeProfit:
		s.TakeProfits++
	case engine.StopLoss:
		s.StopLosses++
	default:
		s.Skipped++
	}
}

func (r *Runner) validate() error {
	if r.Engine == nil {
		return errors.New("vigil: engine is required")
	}
	if len(r.Assets) == 0 {
		return errors.New("vigil: no assets configured")
	}
	if r.Interval < 0 || r.Stagger < 0 {
		return errors.New("vigil: interval and stagger must be >= 0")
	}
	return nil
}

// Run starts the first cycle immediately and keeps going until ctx is
// cancelled, MaxCycles is reached or StopWhen reports true; all of those
// return a nil error. A journal write failure stops the loop and is
// returned. Any other per-asset failure is logged and the loop continues.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := r.validate(); err != nil {
		return sum, err
	}

	logger.Info(ctx, "Vigil started",
		"assets", len(r.Assets),
		"interval", r.Interval.String(),
		"stagger", r.Stagger.String(),
	)

	var err error
	for {
		if err = r.cycle(ctx, sum.Cycles+1, &sum); err != nil {
			break
		}
		sum.Cycles++

		if r.MaxCycles > 0 && sum.Cycles >= r.MaxCycles {
			break
		}
		if r.StopWhen != nil && r.StopWhen() {
			break
		}
		if !sleep(ctx, r.Interval) {
			break
		}
	}

	snap := r.Engine.Snapshot()
	sum.Cash, sum.Equity = snap.Cash, snap.Equity

	if err != nil && errors.Is(err, ctx.Err()) {
		err = nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Vigil aborted", err, "cycles", sum.Cycles)
		return sum, err
	}

	logger.Info(ctx, "Vigil stopped",
		"cycles", sum.Cycles,
		"buys", sum.Buys,
		"take_profits", sum.TakeProfits,
		"stop_losses", sum.StopLosses,
		"cash", sum.Cash.StringFixed(2),
		"equity", sum.Equity.StringFixed(2),
	)
	return sum, nil
}

func (r *Runner) cycle(ctx context.Context, n int, sum *Summary) error {
	ctx, span := logger.StartSpan(ctx, "vigil.cycle")
	defer span.End()

	logger.Debug(ctx, "Vigil cycle", "cycle", n)

	for i, a := range r.Assets {
		if i > 0 && !sleep(ctx, r.Stagger) {
			return ctx.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		act, err := r.Engine.Tick(ctx, a.Symbol, a.BuyAmount)
		if err != nil {
			if errors.Is(err, engine.ErrSinkWrite) {
				return fmt.Errorf("cycle %d: %w", n, err)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			sum.Errors++
			logger.ErrorWithErr(ctx, "Tick failed", err, "asset", a.Symbol, "cycle", n)
			continue
		}

		sum.count(act)
		if r.OnAction != nil {
			r.OnAction(act)
		}
	}

	snap := r.Engine.Snapshot()
	if r.Equity != nil {
		if err := r.Equity.RecordEquity(snap.EquitySnapshot()); err != nil {
			logger.ErrorWithErr(ctx, "Recording equity failed", err, "cycle", n)
		}
	}
	if r.OnCycle != nil {
		r.OnCycle(n, snap)
	}
	return nil
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
