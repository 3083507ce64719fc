// Package progress renders textual progress for long transfers.
//
// A Meter tracks a position between a minimum and a maximum and derives
// a percentage, a transfer speed, and an estimated completion time from
// wall-clock time. A negative maximum marks the total as unknown; the
// meter then reports placeholder values until it is stopped.
//
//	m := progress.New(0, total).Start()
//	for chunk := range chunks {
//	    m.Increment(int64(len(chunk)))
//	    fmt.Fprintf(os.Stderr, "\r%s %s %s", m.Percentage(), m.Speed(), m.ETA())
//	}
//	m.Stop()
package progress

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrOutOfRange is returned by Update when the value falls outside the
// meter's bounds.
var ErrOutOfRange = errors.New("value out of range")

var speedUnits = []string{"", "K", "M", "G", "T", "P"}

// Meter tracks progress between a minimum and a maximum value.
// It is not safe for concurrent use.
type Meter struct {
	min, cur, max int64
	unknown       bool
	started       time.Time
	elapsed       time.Duration
	done          bool

	now func() time.Time
}

// New creates a meter covering [min, max]. A negative max means the
// total is unknown.
func New(min, max int64) *Meter {
	m := &Meter{min: min, cur: min, max: max, now: time.Now}
	if max < 0 {
		m.unknown = true
	}
	return m
}

// Start records the starting instant and returns the meter for chaining.
func (m *Meter) Start() *Meter {
	m.set(m.min)
	return m
}

// Update moves the meter to cur. The first update after Start anchors
// the elapsed-time measurement.
func (m *Meter) Update(cur int64) error {
	if cur < m.min {
		return fmt.Errorf("%w: %d is below the minimum %d", ErrOutOfRange, cur, m.min)
	}
	if !m.unknown && cur > m.max {
		return fmt.Errorf("%w: %d exceeds the maximum %d", ErrOutOfRange, cur, m.max)
	}
	m.set(cur)
	return nil
}

// Increment advances the meter by delta.
func (m *Meter) Increment(delta int64) error {
	return m.Update(m.cur + delta)
}

// Stop finalizes the meter. A known maximum is treated as reached.
func (m *Meter) Stop() {
	if !m.unknown {
		m.set(m.max)
	}
	m.done = true
}

// Current returns the meter's position.
func (m *Meter) Current() int64 {
	return m.cur
}

// Maximum returns the maximum as a string, or "UNKNOWN".
func (m *Meter) Maximum() string {
	if m.unknown {
		return "UNKNOWN"
	}
	return strconv.FormatInt(m.max, 10)
}

// Percentage renders the completed share as a fixed-width percentage,
// "100 %" once stopped and " ?? %" while the maximum is unknown.
func (m *Meter) Percentage() string {
	switch {
	case m.done:
		return "100 %"
	case m.unknown:
		return " ?? %"
	}
	pct := int64(100)
	if m.max > m.min {
		pct = int64(100 * float64(m.cur-m.min) / float64(m.max-m.min))
	}
	return fmt.Sprintf("%3d %%", pct)
}

// ETA renders the projected time to completion as "ETA : HH:MM:SS",
// the elapsed time as "Done: HH:MM:SS" once stopped, and
// "ETA : ??:??:??" while the maximum is unknown.
func (m *Meter) ETA() string {
	if m.done {
		return "Done: " + m.formatDuration(m.elapsed)
	}
	var t time.Duration
	switch {
	case m.unknown:
		t = -time.Second
	case m.elapsed == 0 || m.cur == m.min:
		t = 0
	default:
		t = time.Duration(float64(m.max-m.cur) / float64(m.cur-m.min) * float64(m.elapsed))
	}
	return "ETA : " + m.formatDuration(t)
}

// Speed renders the transfer rate in decimal units, e.g. "20 KB/s".
func (m *Meter) Speed() string {
	var rate float64
	if m.elapsed > 0 {
		rate = float64(m.cur-m.min) / m.elapsed.Seconds()
	}
	unit := speedUnits[0]
	for _, u := range speedUnits {
		unit = u
		if rate < 1000 {
			break
		}
		rate /= 1000
	}
	return fmt.Sprintf("%d %sB/s", int64(rate), unit)
}

func (m *Meter) set(cur int64) {
	m.cur = cur
	now := m.now()
	if m.started.IsZero() {
		m.started = now
	} else {
		m.elapsed = now.Sub(m.started)
	}
}

// formatDuration renders HH:MM:SS on a 24-hour dial. Non-positive
// durations render as "??:??:??" while the maximum is unknown.
func (m *Meter) formatDuration(d time.Duration) string {
	if d <= 0 && m.unknown {
		return "??:??:??"
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", (s/3600)%24, (s/60)%60, s%60)
}
