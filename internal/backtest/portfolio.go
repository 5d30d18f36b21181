package backtest

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

// Portfolio tracks one agent's cash, open positions, closed trades and
// the daily equity curve. Cash never goes negative: buys are funded out
// of the current balance and position sizing is capped by it upstream.
type Portfolio struct {
	agentID     string
	cash        float64
	contributed float64
	positions   []*contracts.Position
	closed      []contracts.ClosedTrade
	snapshots   []contracts.Snapshot
	lastTopUp   string
}

// NewPortfolio creates an empty portfolio for the agent.
func NewPortfolio(agentID string) *Portfolio {
	return &Portfolio{agentID: agentID}
}

// AgentID returns the owning agent's id.
func (p *Portfolio) AgentID() string { return p.agentID }

// Cash returns the available balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Contributed returns the cumulative budget deposited so far.
func (p *Portfolio) Contributed() float64 { return p.contributed }

// TopUpIfNewMonth deposits amount when the date's calendar month differs
// from the month of the last deposit. It returns true when a deposit was
// made, so the same month never tops up twice regardless of how many
// days it is evaluated on.
func (p *Portfolio) TopUpIfNewMonth(date time.Time, amount float64) bool {
	month := date.UTC().Format("2006-01")
	if month == p.lastTopUp {
		return false
	}
	p.lastTopUp = month
	p.cash = round2(p.cash + amount)
	p.contributed = round2(p.contributed + amount)
	return true
}

// Open buys shares of ticker for amount dollars at price and records the
// new position. The caller sizes amount against Cash beforehand; a buy
// exceeding the balance is a programming error.
func (p *Portfolio) Open(ticker string, amount, price float64, date time.Time) (*contracts.Position, error) {
	if price <= 0 {
		return nil, fmt.Errorf("open %s: invalid price %.4f", ticker, price)
	}
	if amount > p.cash+0.005 {
		return nil, fmt.Errorf("open %s: amount %.2f exceeds cash %.2f", ticker, amount, p.cash)
	}
	pos := &contracts.Position{
		Ticker:       ticker,
		Shares:       amount / price,
		EntryPrice:   price,
		EntryDate:    midnight(date),
		CurrentPrice: price,
		HighestPrice: price,
	}
	p.cash = round2(p.cash - amount)
	p.positions = append(p.positions, pos)
	return pos, nil
}

// Close sells sellPct percent of the position at price. A full sale
// removes the position; a partial sale shrinks it in place. The realized
// slice is returned as a closed trade.
func (p *Portfolio) Close(pos *contracts.Position, sellPct, price float64, date time.Time, reason contracts.ExitReason) contracts.ClosedTrade {
	if sellPct > 100 {
		sellPct = 100
	}
	soldShares := pos.Shares * sellPct / 100
	proceeds := soldShares * price
	cost := soldShares * pos.EntryPrice
	profit := round2(proceeds - cost)

	returnPct := 0.0
	if pos.EntryPrice > 0 {
		returnPct = (price - pos.EntryPrice) / pos.EntryPrice * 100
	}

	trade := contracts.ClosedTrade{
		Ticker:      pos.Ticker,
		Shares:      soldShares,
		EntryPrice:  pos.EntryPrice,
		EntryDate:   pos.EntryDate,
		ExitPrice:   price,
		ExitDate:    midnight(date),
		Profit:      profit,
		ReturnPct:   returnPct,
		HoldingDays: pos.DaysHeld(date),
		Reason:      reason,
	}

	p.cash = round2(p.cash + proceeds)
	p.closed = append(p.closed, trade)

	if sellPct >= 100 {
		p.remove(pos)
	} else {
		pos.Shares -= soldShares
	}
	return trade
}

func (p *Portfolio) remove(pos *contracts.Position) {
	for i, cur := range p.positions {
		if cur == pos {
			p.positions = append(p.positions[:i], p.positions[i+1:]...)
			return
		}
	}
}

// Positions returns the open positions. The slice is shared with the
// portfolio; callers must not reorder it.
func (p *Portfolio) Positions() []*contracts.Position {
	return p.positions
}

// OpenCount returns the number of open positions.
func (p *Portfolio) OpenCount() int { return len(p.positions) }

// TickerCount returns how many open positions hold the given ticker.
func (p *Portfolio) TickerCount(ticker string) int {
	n := 0
	for _, pos := range p.positions {
		if strings.EqualFold(pos.Ticker, ticker) {
			n++
		}
	}
	return n
}

// FindPosition returns the oldest open position in ticker, or nil.
func (p *Portfolio) FindPosition(ticker string) *contracts.Position {
	for _, pos := range p.positions {
		if strings.EqualFold(pos.Ticker, ticker) {
			return pos
		}
	}
	return nil
}

// ClosedTrades returns the realized trades in close order.
func (p *Portfolio) ClosedTrades() []contracts.ClosedTrade {
	return p.closed
}

// TakeSnapshot marks the portfolio to market at the positions' current
// prices and appends a point to the equity curve.
func (p *Portfolio) TakeSnapshot(date time.Time) contracts.Snapshot {
	value := 0.0
	for _, pos := range p.positions {
		value += pos.MarketValue()
	}
	snap := contracts.Snapshot{
		Date:           midnight(date),
		Cash:           p.cash,
		PositionsValue: round2(value),
		TotalValue:     round2(p.cash + value),
	}
	p.snapshots = append(p.snapshots, snap)
	return snap
}

// Snapshots returns the equity curve in chronological order.
func (p *Portfolio) Snapshots() []contracts.Snapshot {
	return p.snapshots
}

// TotalValue marks the portfolio to market without recording a snapshot.
func (p *Portfolio) TotalValue() float64 {
	value := p.cash
	for _, pos := range p.positions {
		value += pos.MarketValue()
	}
	return round2(value)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
