package engine

import (
	"github.com/rustyeddy/papertrader/risk"
	"github.com/shopspring/decimal"
)

// Outcome is what an evaluation did to the ledger.
type Outcome int

const (
	NoAction Outcome = iota
	Opened
	Closed
)

func (o Outcome) String() string {
	switch o {
	case NoAction:
		return "NoAction"
	case Opened:
		return "Opened"
	case Closed:
		return "Closed"
	}
	return "Unknown"
}

// Reason explains an Outcome.
type Reason int

const (
	PriceUnavailable Reason = iota + 1
	InsufficientCash
	RiskRejected
	// BuyDisabled is a zero buy amount. Nothing is bought or journaled.
	BuyDisabled
	// BelowMinQuantity is a buy too small to add any units at the ledger's
	// precision.
	BelowMinQuantity
	Accumulate
	TakeProfit
	StopLoss
)

func (r Reason) String() string {
	switch r {
	case PriceUnavailable:
		return "PriceUnavailable"
	case InsufficientCash:
		return "InsufficientCash"
	case RiskRejected:
		return "RiskRejected"
	case BuyDisabled:
		return "BuyDisabled"
	case BelowMinQuantity:
		return "BelowMinQuantity"
	case Accumulate:
		return "Accumulate"
	case TakeProfit:
		return "TakeProfit"
	case StopLoss:
		return "StopLoss"
	}
	return "Unknown"
}

// Action is the result of one evaluation.
//
// Quantity is the position size after an Opened or NoAction result and the
// liquidated size after a Closed one. PnL is only set for Closed. RecordID is
// the audit record written, empty for NoAction.
type Action struct {
	Outcome       Outcome
	Reason        Reason
	Asset         string
	Price         decimal.Decimal
	QuantityAdded decimal.Decimal
	Quantity      decimal.Decimal
	PnL           decimal.Decimal
	Cash          decimal.Decimal
	RecordID      string

	Violations []risk.Violation // set for RiskRejected
	Err        error            // fetch failure behind PriceUnavailable
}

func (a Action) String() string {
	return a.Outcome.String() + "{" + a.Reason.String() + "}"
}
