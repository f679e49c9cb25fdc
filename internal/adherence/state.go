package adherence

import "time"

// Status is the presentation state of a medication's schedule.
type Status string

const (
	StatusNoSchedule Status = "no_schedule"
	StatusOverdue    Status = "overdue"
	StatusDueToday   Status = "due_today"
	StatusDueIn      Status = "due_in"
)

// DueState pairs a status with its day count: the overdue magnitude for
// StatusOverdue, the remaining days for StatusDueIn, zero otherwise.
type DueState struct {
	Status Status `json:"status"`
	Days   int    `json:"days"`
}

// ClassifyDays maps a DaysUntilDue result onto a DueState.
func ClassifyDays(days int, ok bool) DueState {
	switch {
	case !ok:
		return DueState{Status: StatusNoSchedule}
	case days < 0:
		return DueState{Status: StatusOverdue, Days: -days}
	case days == 0:
		return DueState{Status: StatusDueToday}
	default:
		return DueState{Status: StatusDueIn, Days: days}
	}
}

func (c *Calculator) Classify(events []Event, now time.Time) DueState {
	return ClassifyDays(c.DaysUntilDue(events, now))
}
