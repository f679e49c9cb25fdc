package adherence

// Summary bundles the statistics shown on the stats screen.
type Summary struct {
	Window          Window        `json:"window"`
	Adherence       int           `json:"adherence"`
	TotalLogs       int           `json:"total_logs"`
	AverageInterval int           `json:"average_interval_days"`
	SitesUsed       int           `json:"sites_used"`
	Monthly         []MonthBucket `json:"monthly"`
	Sites           []SiteShare   `json:"sites"`
}

// Summarize computes every aggregate over the events inside w.
func (c *Calculator) Summarize(events []Event, w Window) Summary {
	in := w.Filter(events)
	return Summary{
		Window:          w,
		Adherence:       c.AdherencePercent(in),
		TotalLogs:       len(in),
		AverageInterval: c.AverageInterval(in),
		SitesUsed:       SitesUsed(in),
		Monthly:         c.MonthlyHistogram(in),
		Sites:           SiteDistribution(in),
	}
}
