package domain

import "time"

// Side is the direction of a position.
type Side string

// Side constants.
const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Exit reason codes.
const (
	ExitReasonStopLoss   = "STOP_LOSS"
	ExitReasonTarget     = "TARGET"
	ExitReasonTimeExit   = "TIME_EXIT"
	ExitReasonForceClose = "FORCE_CLOSE"
)

// Trade is one completed round-trip position. A Trade is created by a
// strategy at the moment an exit condition is satisfied (or forced) and
// is immutable afterwards; the ledger owns all trades for a strategy.
type Trade struct {
	Symbol     string
	Strategy   string
	EntryTime  time.Time
	ExitTime   *time.Time // nil until closed
	EntryPrice float64
	ExitPrice  *float64 // nil until closed
	Quantity   int
	Side       Side
	PnL        *float64 // derived at close, never recomputed
	ExitReason string   // empty until closed
}

// Close records the exit and computes pnl once. Calling Close on an
// already-closed trade is a no-op: pnl is computed exactly once.
func (t *Trade) Close(exitTime time.Time, exitPrice float64, reason string) {
	if t.Closed() {
		return
	}

	et := exitTime
	ep := exitPrice
	t.ExitTime = &et
	t.ExitPrice = &ep
	t.ExitReason = reason

	pnl := (exitPrice - t.EntryPrice) * float64(t.Quantity)
	if t.Side == SideShort {
		pnl = -pnl
	}
	t.PnL = &pnl
}

// Closed reports whether the trade has both exit price and time set.
func (t *Trade) Closed() bool {
	return t.ExitTime != nil && t.ExitPrice != nil
}

// DurationMinutes returns the holding time in minutes, or 0 for an open trade.
func (t *Trade) DurationMinutes() float64 {
	if t.ExitTime == nil {
		return 0
	}
	return t.ExitTime.Sub(t.EntryTime).Minutes()
}
