package fleet

import (
	"fmt"
	"time"
)

// ScheduleWindow holds the two start times a route runs at, as "HH:MM" strings.
type ScheduleWindow struct {
	MorningStart   string `groups:"basic"`
	AfternoonStart string `groups:"basic"`
}

// SharesStartTime reports whether either start time exactly matches the other
// window. Conflict detection is deliberately equality-based rather than
// interval-based.
func (w ScheduleWindow) SharesStartTime(other ScheduleWindow) bool {
	if w.MorningStart != "" && w.MorningStart == other.MorningStart {
		return true
	}
	if w.AfternoonStart != "" && w.AfternoonStart == other.AfternoonStart {
		return true
	}
	return false
}

func (w ScheduleWindow) Validate() error {
	for _, startTime := range []string{w.MorningStart, w.AfternoonStart} {
		if startTime == "" {
			continue
		}
		if _, err := time.Parse("15:04", startTime); err != nil {
			return NewValidationError(fmt.Sprintf("schedule start time %q is not a valid HH:MM time", startTime))
		}
	}
	return nil
}

func (w ScheduleWindow) Empty() bool {
	return w.MorningStart == "" && w.AfternoonStart == ""
}
