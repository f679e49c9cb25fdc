package adherence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/shot-tracker/internal/models"
)

func TestSiteDistribution(t *testing.T) {
	events := []Event{
		{Site: models.SiteAbdomen},
		{Site: models.SiteAbdomen},
		{Site: models.SiteLeftArm},
	}

	got := SiteDistribution(events)
	assert.Equal(t, []SiteShare{
		{Site: models.SiteLeftArm, Count: 1, Percent: 33.3},
		{Site: models.SiteAbdomen, Count: 2, Percent: 66.7},
	}, got)
	assert.Equal(t, 2, SitesUsed(events))
}

func TestSiteDistributionPercentagesRoundIndependently(t *testing.T) {
	events := []Event{
		{Site: models.SiteLeftArm},
		{Site: models.SiteRightArm},
		{Site: models.SiteLeftThigh},
	}

	total := 0.0
	for _, s := range SiteDistribution(events) {
		assert.Equal(t, 33.3, s.Percent)
		total += s.Percent
	}
	assert.InDelta(t, 99.9, total, 1e-9)
}

func TestMonthlyHistogramChronological(t *testing.T) {
	c := mustNew(t, 7, nil)
	events := []Event{
		{Timestamp: day(2025, time.March, 3, 9)},
		{Timestamp: day(2024, time.December, 30, 9)},
		{Timestamp: day(2025, time.January, 6, 9)},
		{Timestamp: day(2025, time.March, 10, 9)},
	}

	assert.Equal(t, []MonthBucket{
		{Key: "2024-12", Label: "Dec 2024", Count: 1},
		{Key: "2025-01", Label: "Jan 2025", Count: 1},
		{Key: "2025-03", Label: "Mar 2025", Count: 2},
	}, c.MonthlyHistogram(events))
}

func TestMonthlyHistogramUsesHomeZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	events := []Event{{Timestamp: time.Date(2025, time.January, 31, 23, 30, 0, 0, time.UTC)}}

	assert.Equal(t, "2025-02", mustNew(t, 7, tokyo).MonthlyHistogram(events)[0].Key)
	assert.Equal(t, "2025-01", mustNew(t, 7, time.UTC).MonthlyHistogram(events)[0].Key)
}

func TestWindow(t *testing.T) {
	now := day(2025, time.April, 15, 12)
	w := LastMonths(now, 3, time.UTC)
	assert.Equal(t, day(2025, time.January, 15, 12), w.Start)

	events := []Event{
		{ID: "old", Timestamp: day(2025, time.January, 15, 11)},
		{ID: "start", Timestamp: w.Start},
		{ID: "mid", Timestamp: day(2025, time.March, 1, 0)},
		{ID: "future", Timestamp: now.Add(time.Second)},
	}
	var ids []string
	for _, e := range w.Filter(events) {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"start", "mid"}, ids)
	assert.Len(t, Window{}.Filter(events), 4)
}

func TestLastMonthsClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		months int
		start  time.Time
	}{
		{"may 31 to february", day(2025, time.May, 31, 12), 3, day(2025, time.February, 28, 12)},
		{"leap february", day(2024, time.March, 31, 12), 1, day(2024, time.February, 29, 12)},
		{"december 31 to september", day(2025, time.December, 31, 12), 3, day(2025, time.September, 30, 12)},
		{"across the year", day(2025, time.January, 31, 12), 2, day(2024, time.November, 30, 12)},
		{"no clamp needed", day(2025, time.May, 15, 12), 3, day(2025, time.February, 15, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := LastMonths(tt.now, tt.months, time.UTC)
			assert.Equal(t, tt.start, w.Start)
			assert.Equal(t, tt.now, w.End)
		})
	}

	w := LastMonths(day(2025, time.May, 31, 12), 3, time.UTC)
	assert.True(t, w.Contains(day(2025, time.February, 28, 13)))
	assert.True(t, w.Contains(day(2025, time.March, 1, 13)))
	assert.False(t, w.Contains(day(2025, time.February, 28, 11)))
}

func TestSummarize(t *testing.T) {
	c := mustNew(t, 7, nil)
	events := eventsAtDays(0, 7, 14, 21)
	events[3].Site = models.SiteLeftThigh

	s := c.Summarize(events, Window{})
	assert.Equal(t, 100, s.Adherence)
	assert.Equal(t, 4, s.TotalLogs)
	assert.Equal(t, 7, s.AverageInterval)
	assert.Equal(t, 2, s.SitesUsed)
	require.Len(t, s.Monthly, 1)
	assert.Equal(t, 4, s.Monthly[0].Count)

	windowed := c.Summarize(events, Window{Start: events[2].Timestamp})
	assert.Equal(t, 2, windowed.TotalLogs)
}

func TestFromLogs(t *testing.T) {
	created := day(2025, time.May, 1, 10)
	logs := []models.InjectionLog{{
		ID:            "log-1",
		InjectionDate: day(2025, time.May, 1, 8),
		InjectionSite: models.SiteRightThigh,
		Dosage:        0.5,
		CreatedAt:     created,
	}}

	assert.Equal(t, []Event{{
		ID:         "log-1",
		Timestamp:  day(2025, time.May, 1, 8),
		RecordedAt: created,
		Site:       models.SiteRightThigh,
		Dosage:     0.5,
	}}, FromLogs(logs))
}
