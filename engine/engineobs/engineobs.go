// Package engineobs wraps an engine.Trader with a span and structured logs
// per call.
package engineobs

import (
	"context"
	"time"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/internal/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type observableEngine struct {
	engine engine.Trader
}

var _ engine.Trader = (*observableEngine)(nil)

func Wrap(eng engine.Trader) engine.Trader {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Evaluate(ctx context.Context, asset string, price, buyAmount decimal.Decimal) (engine.Action, error) {
	ctx, span := logger.StartSpan(ctx, "engine.Evaluate", trace.WithAttributes(
		attribute.String("asset", asset),
		attribute.String("price", price.String()),
	))
	defer span.End()

	start := time.Now()
	act, err := oe.engine.Evaluate(ctx, asset, price, buyAmount)
	report(ctx, span, "evaluate", asset, act, err, start)
	return act, err
}

func (oe *observableEngine) Tick(ctx context.Context, asset string, buyAmount decimal.Decimal) (engine.Action, error) {
	ctx, span := logger.StartSpan(ctx, "engine.Tick", trace.WithAttributes(
		attribute.String("asset", asset),
	))
	defer span.End()

	start := time.Now()
	logger.Debug(ctx, "Fetching price", "asset", asset, "buy_amount", buyAmount.String())

	act, err := oe.engine.Tick(ctx, asset, buyAmount)
	report(ctx, span, "tick", asset, act, err, start)
	return act, err
}

func (oe *observableEngine) Snapshot() engine.Snapshot {
	return oe.engine.Snapshot()
}

func report(ctx context.Context, span trace.Span, op, asset string, act engine.Action, err error, start time.Time) {
	ms := time.Since(start).Milliseconds()
	if err != nil {
		logger.ErrorWithErr(ctx, "Engine "+op+" failed", err,
			"asset", asset,
			"duration_ms", ms,
		)
		return
	}

	span.SetAttributes(
		attribute.String("outcome", act.Outcome.String()),
		attribute.String("reason", act.Reason.String()),
	)

	args := []any{
		"asset", asset,
		"outcome", act.Outcome.String(),
		"reason", act.Reason.String(),
		"price", act.Price.String(),
		"cash", act.Cash.StringFixed(2),
		"duration_ms", ms,
	}

	switch act.Outcome {
	case engine.Opened:
		logger.Info(ctx, "Bought", append(args,
			"quantity_added", act.QuantityAdded.String(),
			"record_id", act.RecordID,
		)...)
	case engine.Closed:
		logger.Info(ctx, "Closed position", append(args,
			"quantity", act.Quantity.String(),
			"pnl", act.PnL.StringFixed(2),
			"record_id", act.RecordID,
		)...)
	default:
		if act.Err != nil {
			args = append(args, "cause", act.Err.Error())
		}
		for _, v := range act.Violations {
			args = append(args, "violation", v.Code+": "+v.Msg)
		}
		logger.Warn(ctx, "No action", args...)
	}
}
