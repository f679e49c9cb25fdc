// Package adherence computes dosing schedules and adherence statistics from a
// medication's interval and its injection history. Everything here is pure:
// callers fetch the data and pass the current time explicitly.
package adherence

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/illegalcall/shot-tracker/internal/models"
)

// ErrInvalidFrequency is returned when a calculator is built with an interval
// that is not a positive finite number of days.
var ErrInvalidFrequency = errors.New("adherence: frequency days must be a positive finite number")

// Event is one logged injection as seen by the engine.
type Event struct {
	ID         string
	Timestamp  time.Time
	RecordedAt time.Time
	Site       models.InjectionSite
	Dosage     float64
}

// FromLogs converts stored injection logs into engine events.
func FromLogs(logs []models.InjectionLog) []Event {
	events := make([]Event, 0, len(logs))
	for _, l := range logs {
		events = append(events, Event{
			ID:         l.ID,
			Timestamp:  l.InjectionDate,
			RecordedAt: l.CreatedAt,
			Site:       l.InjectionSite,
			Dosage:     l.Dosage,
		})
	}
	return events
}

// Calculator evaluates one medication's schedule. All day arithmetic happens
// in the calculator's location. A Calculator is immutable and may be shared
// between goroutines.
type Calculator struct {
	frequencyDays float64
	loc           *time.Location
}

// New builds a calculator for a medication taken every frequencyDays days. A
// nil location means UTC.
func New(frequencyDays float64, loc *time.Location) (*Calculator, error) {
	if math.IsNaN(frequencyDays) || math.IsInf(frequencyDays, 0) || frequencyDays <= 0 {
		return nil, ErrInvalidFrequency
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{frequencyDays: frequencyDays, loc: loc}, nil
}

func (c *Calculator) FrequencyDays() float64   { return c.frequencyDays }
func (c *Calculator) Location() *time.Location { return c.loc }

// NextDueDate projects the next dose from the latest event. The whole part of
// the interval is added as calendar days so the wall clock survives DST
// changes; a fractional remainder is added as a share of 24 hours on top.
// It reports false when there is no history.
func (c *Calculator) NextDueDate(events []Event) (time.Time, bool) {
	last, ok := latest(events)
	if !ok {
		return time.Time{}, false
	}
	whole := math.Floor(c.frequencyDays)
	due := last.Timestamp.In(c.loc).AddDate(0, 0, int(whole))
	if frac := c.frequencyDays - whole; frac > 0 {
		due = due.Add(time.Duration(frac * float64(24*time.Hour)))
	}
	return due, true
}

// DaysUntilDue is the number of calendar days from now to the due date.
// Negative values mean the dose is overdue by that many days.
func (c *Calculator) DaysUntilDue(events []Event, now time.Time) (int, bool) {
	due, ok := c.NextDueDate(events)
	if !ok {
		return 0, false
	}
	return c.calendarDays(now, due), true
}

// AdherencePercent compares the number of logged doses with the number
// expected over the span between the first and last dose. Extra doses never
// push the result above 100.
func (c *Calculator) AdherencePercent(events []Event) int {
	if len(events) == 0 {
		return 0
	}
	first, last := bounds(events)
	span := c.calendarDays(first, last)
	expected := math.Floor(float64(span)/c.frequencyDays) + 1
	pct := roundHalfUp(float64(len(events)) / expected * 100)
	if pct > 100 {
		pct = 100
	}
	return int(pct)
}

// AverageInterval is the mean number of calendar days between consecutive
// doses, rounded half up. Fewer than two events yield 0.
func (c *Calculator) AverageInterval(events []Event) int {
	if len(events) < 2 {
		return 0
	}
	sorted := Sorted(events)
	total := 0
	for i := 1; i < len(sorted); i++ {
		total += c.calendarDays(sorted[i-1].Timestamp, sorted[i].Timestamp)
	}
	return int(roundHalfUp(float64(total) / float64(len(sorted)-1)))
}

// Sorted returns a copy of events in ascending timestamp order, using the
// same tie-break as NextDueDate.
func Sorted(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return before(out[i], out[j]) })
	return out
}

// before orders events by timestamp, then recording time, then id.
func before(a, b Event) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.Before(b.RecordedAt)
	}
	return a.ID < b.ID
}

func latest(events []Event) (Event, bool) {
	if len(events) == 0 {
		return Event{}, false
	}
	best := events[0]
	for _, e := range events[1:] {
		if before(best, e) {
			best = e
		}
	}
	return best, true
}

func bounds(events []Event) (first, last time.Time) {
	first, last = events[0].Timestamp, events[0].Timestamp
	for _, e := range events[1:] {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return first, last
}

// calendarDays counts civil-day boundaries between from and to in the
// calculator's location.
func (c *Calculator) calendarDays(from, to time.Time) int {
	return dayNumber(to, c.loc) - dayNumber(from, c.loc)
}

func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
