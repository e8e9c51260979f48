// Package engine decides, per asset and price, whether to take profit, stop
// a loss or accumulate, and applies the result to the ledger. Every executed
// action is appended to the journal before the ledger changes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/papertrader/internal/id"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/pricing"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPolicy = errors.New("invalid policy")
	ErrSinkWrite     = errors.New("audit log write failed")
	ErrNoSource      = errors.New("no price source configured")
	ErrUnknownAsset  = ledger.ErrUnknownAsset
	ErrInvalidAmount = ledger.ErrInvalidAmount
)

const DefaultFetchTimeout = 10 * time.Second

// Trader is the engine surface used by the vigil loop and the CLI.
type Trader interface {
	Evaluate(ctx context.Context, asset string, price, buyAmount decimal.Decimal) (Action, error)
	Tick(ctx context.Context, asset string, buyAmount decimal.Decimal) (Action, error)
	Snapshot() Snapshot
}

type Config struct {
	Ledger  *ledger.Ledger
	Journal journal.Journal
	Policy  Policy

	Source       pricing.Source // required by Tick only
	Gate         *risk.Gate     // optional
	Clock        func() time.Time
	FetchTimeout time.Duration
}

type Engine struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	journal journal.Journal
	policy  Policy
	gate    *risk.Gate
	marks   map[string]decimal.Decimal

	source       pricing.Source
	now          func() time.Time
	fetchTimeout time.Duration
}

var _ Trader = (*Engine)(nil)

func New(cfg Config) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("engine: ledger is required")
	}
	if cfg.Journal == nil {
		return nil, errors.New("engine: journal is required")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	e := &Engine{
		ledger:       cfg.Ledger,
		journal:      cfg.Journal,
		policy:       cfg.Policy,
		gate:         cfg.Gate,
		marks:        make(map[string]decimal.Decimal),
		now:          cfg.Clock,
		fetchTimeout: cfg.FetchTimeout,
	}
	if cfg.Source != nil {
		e.source = pricing.Validate(cfg.Source)
	}
	return e, nil
}

func (e *Engine) Policy() Policy { return e.policy }

func (e *Engine) checkArgs(asset string, buyAmount decimal.Decimal) error {
	if buyAmount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, buyAmount)
	}
	if !e.ledger.Tracks(asset) {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	return nil
}

// Evaluate applies the decision rules to asset at price. At most one audit
// record is written. A journal failure returns an error wrapping
// ErrSinkWrite and leaves the ledger unchanged.
func (e *Engine) Evaluate(ctx context.Context, asset string, price, buyAmount decimal.Decimal) (Action, error) {
	if err := e.checkArgs(asset, buyAmount); err != nil {
		return Action{}, err
	}
	if err := ctx.Err(); err != nil {
		return Action{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Action{}, err
	}
	// From here on the call runs to completion regardless of ctx.
	return e.evaluate(asset, price, buyAmount)
}

func (e *Engine) evaluate(asset string, price, buyAmount decimal.Decimal) (Action, error) {
	pos, err := e.ledger.Position(asset)
	if err != nil {
		return Action{}, err
	}

	if !price.IsPositive() {
		return e.hold(asset, price, pos, PriceUnavailable), nil
	}

	e.marks[asset] = price
	if e.gate != nil {
		e.gate.Observe(asset, price)
	}

	if avg, ok := pos.AverageEntryPrice(); ok {
		switch {
		case price.GreaterThanOrEqual(avg.Mul(e.policy.TakeProfitRatio)):
			return e.close(asset, price, pos, TakeProfit)
		case price.LessThanOrEqual(avg.Mul(e.policy.StopLossRatio)):
			return e.close(asset, price, pos, StopLoss)
		}
	}

	return e.accumulate(asset, price, buyAmount, pos)
}

func (e *Engine) hold(asset string, price decimal.Decimal, pos ledger.Position, why Reason) Action {
	return Action{
		Outcome:  NoAction,
		Reason:   why,
		Asset:    asset,
		Price:    price,
		Quantity: pos.Quantity,
		Cash:     e.ledger.Cash(),
	}
}

func (e *Engine) close(asset string, price decimal.Decimal, pos ledger.Position, why Reason) (Action, error) {
	kind := journal.SellProfit
	if why == StopLoss {
		kind = journal.SellLoss
	}

	proceeds := pos.MarketValue(price)
	pnl := proceeds.Sub(pos.CostBasis)
	rec := e.record(kind, asset, price, pnl, pos.Quantity, e.ledger.Cash().Add(proceeds))

	if err := e.journal.Append(rec); err != nil {
		return Action{}, fmt.Errorf("%w: %s %s: %w", ErrSinkWrite, kind, asset, err)
	}
	if _, _, err := e.ledger.Close(asset, price); err != nil {
		return Action{}, fmt.Errorf("engine: close %s after journaling %s: %w", asset, rec.ID, err)
	}

	return Action{
		Outcome:  Closed,
		Reason:   why,
		Asset:    asset,
		Price:    price,
		Quantity: pos.Quantity,
		PnL:      pnl,
		Cash:     e.ledger.Cash(),
		RecordID: rec.ID,
	}, nil
}

func (e *Engine) accumulate(asset string, price, amount decimal.Decimal, pos ledger.Position) (Action, error) {
	if amount.IsZero() {
		return e.hold(asset, price, pos, BuyDisabled), nil
	}

	cash := e.ledger.Cash()
	if e.gate != nil {
		dec := e.gate.Evaluate(risk.Intent{
			Asset:     asset,
			Amount:    amount,
			Price:     price,
			Cash:      cash,
			CostBasis: pos.CostBasis,
		})
		if !dec.Allowed {
			act := e.hold(asset, price, pos, RiskRejected)
			act.Violations = dec.Violations
			return act, nil
		}
	}

	if amount.GreaterThan(cash) {
		return e.hold(asset, price, pos, InsufficientCash), nil
	}

	qty := ledger.Quantity(amount, price)
	if qty.IsZero() {
		return e.hold(asset, price, pos, BelowMinQuantity), nil
	}
	rec := e.record(journal.Buy, asset, price, amount, qty, cash.Sub(amount))

	if err := e.journal.Append(rec); err != nil {
		return Action{}, fmt.Errorf("%w: %s %s: %w", ErrSinkWrite, journal.Buy, asset, err)
	}
	added, err := e.ledger.Buy(asset, amount, price)
	if err != nil {
		return Action{}, fmt.Errorf("engine: buy %s after journaling %s: %w", asset, rec.ID, err)
	}

	return Action{
		Outcome:       Opened,
		Reason:        Accumulate,
		Asset:         asset,
		Price:         price,
		QuantityAdded: added,
		Quantity:      pos.Quantity.Add(added),
		Cash:          e.ledger.Cash(),
		RecordID:      rec.ID,
	}, nil
}

func (e *Engine) record(kind journal.Kind, asset string, price, amount, qty, cash decimal.Decimal) journal.Record {
	now := e.now()
	return journal.Record{
		ID:       id.NewAt(now),
		Time:     now,
		Kind:     kind,
		Asset:    asset,
		Price:    price,
		Amount:   amount,
		Quantity: qty,
		Cash:     cash,
	}
}

// Tick fetches a fresh price for asset and evaluates it. A failed, timed
// out or non-positive fetch is reported as NoAction{PriceUnavailable} with
// the cause in Action.Err. Cancelling ctx returns ctx.Err().
func (e *Engine) Tick(ctx context.Context, asset string, buyAmount decimal.Decimal) (Action, error) {
	if err := e.checkArgs(asset, buyAmount); err != nil {
		return Action{}, err
	}
	if e.source == nil {
		return Action{}, ErrNoSource
	}

	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	price, err := e.source.Price(fctx, asset)
	cancel()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Action{}, ctxErr
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		pos, perr := e.ledger.Position(asset)
		if perr != nil {
			return Action{}, perr
		}
		act := e.hold(asset, decimal.Zero, pos, PriceUnavailable)
		act.Err = err
		return act, nil
	}

	return e.Evaluate(ctx, asset, price, buyAmount)
}

// Marks returns a copy of the last observed price per asset.
func (e *Engine) Marks() map[string]decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(e.marks))
	for k, v := range e.marks {
		out[k] = v
	}
	return out
}
