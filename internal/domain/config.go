package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a StrategyConfig violates its
// invariants. Configuration errors are fatal at strategy construction.
var ErrInvalidConfig = errors.New("invalid strategy config")

// ClockTime is a time of day within the trading session, timezone-free.
type ClockTime struct {
	Hour   int
	Minute int
}

// NewClockTime creates a ClockTime.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

// ClockTimeOf extracts the time of day from a timestamp.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns the time of day as minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.Minutes() < other.Minutes()
}

// After reports whether c is later than other.
func (c ClockTime) After(other ClockTime) bool {
	return c.Minutes() > other.Minutes()
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// StrategyConfig describes one strategy's fixed rule set. Immutable,
// one instance per strategy type, created at strategy construction.
type StrategyConfig struct {
	Name        string
	Side        Side
	EntryStart  ClockTime // entry window [EntryStart, EntryEnd)
	EntryEnd    ClockTime
	ExitTime    ClockTime
	Parameters  map[string]float64
	Description string
}

// Param returns the named parameter, or def if absent.
func (c StrategyConfig) Param(name string, def float64) float64 {
	if v, ok := c.Parameters[name]; ok {
		return v
	}
	return def
}

// Validate checks config invariants. Violations wrap ErrInvalidConfig.
func (c StrategyConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	if c.Side != SideLong && c.Side != SideShort {
		return fmt.Errorf("%w: %s has invalid side %q", ErrInvalidConfig, c.Name, c.Side)
	}
	if !c.EntryStart.Before(c.EntryEnd) {
		return fmt.Errorf("%w: %s entry window start %s is not before end %s",
			ErrInvalidConfig, c.Name, c.EntryStart, c.EntryEnd)
	}
	if c.ExitTime.Before(c.EntryEnd) {
		return fmt.Errorf("%w: %s exit time %s is before entry window end %s",
			ErrInvalidConfig, c.Name, c.ExitTime, c.EntryEnd)
	}
	return nil
}
