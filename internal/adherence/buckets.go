package adherence

import (
	"sort"
	"time"

	"github.com/illegalcall/shot-tracker/internal/models"
)

// Window bounds the events used by the bucketed aggregations. Both ends are
// inclusive; a zero bound is open.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LastMonths is the window [now - months, now] with the month subtraction
// done in loc. A day past the end of the target month is clamped to its last
// day, so May 31 minus three months is Feb 28.
func LastMonths(now time.Time, months int, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	first := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); d > last {
		d = last
	}
	hh, mm, ss := local.Clock()
	start := time.Date(first.Year(), first.Month(), d, hh, mm, ss, local.Nanosecond(), loc)
	return Window{Start: start, End: now}
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Filter returns the events inside the window without touching the input.
func (w Window) Filter(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if w.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

// MonthBucket counts the doses of one calendar month.
type MonthBucket struct {
	Key   string `json:"key"`   // YYYY-MM
	Label string `json:"label"` // e.g. "Mar 2025"
	Count int    `json:"count"`
}

// MonthlyHistogram groups events by calendar month in the calculator's
// location, oldest month first.
func (c *Calculator) MonthlyHistogram(events []Event) []MonthBucket {
	counts := make(map[string]int)
	labels := make(map[string]string)
	for _, e := range events {
		t := e.Timestamp.In(c.loc)
		key := t.Format("2006-01")
		if _, seen := labels[key]; !seen {
			labels[key] = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc).Format("Jan 2006")
		}
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, MonthBucket{Key: k, Label: labels[k], Count: counts[k]})
	}
	return buckets
}

// SiteShare is the number of doses given at one site. Percent is rounded to
// one decimal on its own, so the shares need not add up to exactly 100.
type SiteShare struct {
	Site    models.InjectionSite `json:"site"`
	Count   int                  `json:"count"`
	Percent float64              `json:"percent"`
}

// SiteDistribution counts events per injection site in canonical site order.
// Sites without events are left out.
func SiteDistribution(events []Event) []SiteShare {
	if len(events) == 0 {
		return []SiteShare{}
	}
	counts := make(map[models.InjectionSite]int)
	for _, e := range events {
		counts[e.Site]++
	}

	shares := make([]SiteShare, 0, len(counts))
	for site, n := range counts {
		shares = append(shares, SiteShare{
			Site:    site,
			Count:   n,
			Percent: roundHalfUp(float64(n)/float64(len(events))*1000) / 10,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		oi, oj := models.SiteOrder(shares[i].Site), models.SiteOrder(shares[j].Site)
		if oi != oj {
			return oi < oj
		}
		return shares[i].Site < shares[j].Site
	})
	return shares
}

// SitesUsed is the number of distinct injection sites in events.
func SitesUsed(events []Event) int {
	seen := make(map[models.InjectionSite]struct{})
	for _, e := range events {
		seen[e.Site] = struct{}{}
	}
	return len(seen)
}
