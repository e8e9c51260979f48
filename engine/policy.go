package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	DefaultTakeProfitRatio = decimal.RequireFromString("1.05")
	DefaultStopLossRatio   = decimal.RequireFromString("0.95")
)

// Policy holds the exit thresholds, both relative to the average entry price.
type Policy struct {
	TakeProfitRatio decimal.Decimal // > 1, e.g. 1.05 sells at +5%
	StopLossRatio   decimal.Decimal // < 1, e.g. 0.95 sells at -5%
}

func DefaultPolicy() Policy {
	return Policy{
		TakeProfitRatio: DefaultTakeProfitRatio,
		StopLossRatio:   DefaultStopLossRatio,
	}
}

// Validate requires take_profit_ratio > 1 > stop_loss_ratio > 0.
func (p Policy) Validate() error {
	one := decimal.NewFromInt(1)
	if !p.TakeProfitRatio.GreaterThan(one) {
		return fmt.Errorf("%w: take profit ratio %s must be > 1", ErrInvalidPolicy, p.TakeProfitRatio)
	}
	if !p.StopLossRatio.LessThan(one) {
		return fmt.Errorf("%w: stop loss ratio %s must be < 1", ErrInvalidPolicy, p.StopLossRatio)
	}
	if !p.StopLossRatio.IsPositive() {
		return fmt.Errorf("%w: stop loss ratio %s must be > 0", ErrInvalidPolicy, p.StopLossRatio)
	}
	return nil
}
