// Package schedule turns relative step offsets into absolute due times that
// fall inside a daily business-hours window. All arithmetic is wall-clock
// arithmetic in the location of the reference time.
package schedule

import (
	"fmt"
	"time"
)

const (
	DefaultStart = 6
	DefaultEnd   = 16
)

// Window is the [Start, End) range of clock hours in which work is scheduled.
type Window struct {
	Start int `yaml:"business_start" json:"business_start"`
	End   int `yaml:"business_end" json:"business_end"`
}

func DefaultWindow() Window {
	return Window{Start: DefaultStart, End: DefaultEnd}
}

func (w Window) Validate() error {
	if w.Start < 0 || w.Start > 23 {
		return fmt.Errorf("business start hour %d out of range 0-23", w.Start)
	}
	if w.End <= w.Start || w.End > 24 {
		return fmt.Errorf("business end hour %d must be after start %d and at most 24", w.End, w.Start)
	}
	return nil
}

// DueAt computes the due time of a step relative to reference.
//
// When firstWithoutWait is set (the first step of a sequence carrying no
// wait) the offsets are ignored and the task lands at the opening of the
// next business window: today if reference is before End, otherwise
// tomorrow. In every other case the offsets are added and the result is
// clamped into the window; a result already inside the window keeps its
// minutes and seconds.
func DueAt(reference time.Time, waitDays, waitHours int, firstWithoutWait bool, w Window) time.Time {
	if firstWithoutWait {
		if reference.Hour() >= w.End {
			return atHour(reference, 1, w.Start)
		}
		return atHour(reference, 0, w.Start)
	}
	due := Shift(reference, waitDays, waitHours)
	switch {
	case due.Hour() >= w.End:
		return atHour(due, 1, w.Start)
	case due.Hour() < w.Start:
		return atHour(due, 0, w.Start)
	}
	return due
}

// Shift adds days and hours to t on the wall clock.
func Shift(t time.Time, days, hours int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, t.Hour()+hours, t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddHours shifts t by hours on the wall clock without any clamping.
func AddHours(t time.Time, hours int) time.Time {
	return Shift(t, 0, hours)
}

func atHour(t time.Time, dayOffset, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+dayOffset, hour, 0, 0, 0, t.Location())
}
