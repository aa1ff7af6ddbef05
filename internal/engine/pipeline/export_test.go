package pipeline

import "time"

// SetClock replaces the clock used for build record timestamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}
