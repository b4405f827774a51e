// Package executor is the order-execution collaborator consuming the orders
// derived from exit actions. The engine itself never blocks on it.
package executor

import (
	"github.com/evdnx/gotx/logger"
	"github.com/evdnx/gotx/types"
)

type Executor interface {
	Submit(o types.Order) error
	// For back-testing we expose the portfolio state
	Equity() float64
	Position(symbol string) (qty float64, avgPrice float64)
}

// Very simple paper-trader – perfect fills, no slippage
type PaperExecutor struct {
	log       logger.Logger
	equity    float64
	positions map[string]float64 // qty (positive = long, negative = short)
	avgPrice  map[string]float64
}

func NewPaperExecutor(startEquity float64, log logger.Logger) *PaperExecutor {
	if log == nil {
		log = logger.NewNop()
	}
	return &PaperExecutor{
		log:       log,
		equity:    startEquity,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
	}
}

func (p *PaperExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	// market fill – price = current market price (passed in Order.Price)
	cost := o.Price * o.Qty
	if o.Side == types.Buy {
		if cost > p.equity {
			p.log.Warn("insufficient_cash",
				logger.String("symbol", o.Symbol),
				logger.Float64("cost", cost),
				logger.Float64("equity", p.equity),
			)
			return nil
		}
		p.equity -= cost
		p.positions[o.Symbol] += o.Qty
		// simple VWAP for avg price
		prev := p.avgPrice[o.Symbol]
		newAvg := (prev*(p.positions[o.Symbol]-o.Qty) + cost) / p.positions[o.Symbol]
		p.avgPrice[o.Symbol] = newAvg
	} else { // Sell / short
		p.equity += cost
		p.positions[o.Symbol] -= o.Qty
		if p.positions[o.Symbol] != 0 {
			prev := p.avgPrice[o.Symbol]
			newAvg := (prev*(p.positions[o.Symbol]+o.Qty) + cost) / p.positions[o.Symbol]
			p.avgPrice[o.Symbol] = newAvg
		}
	}
	p.log.Info("order_filled",
		logger.String("symbol", o.Symbol),
		logger.String("side", string(o.Side)),
		logger.Float64("qty", o.Qty),
		logger.Float64("price", o.Price),
		logger.Float64("equity", p.equity),
	)
	return nil
}

func (p *PaperExecutor) Equity() float64 { return p.equity }

func (p *PaperExecutor) Position(sym string) (float64, float64) {
	return p.positions[sym], p.avgPrice[sym]
}
