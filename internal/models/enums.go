package models

import "strings"

// Unit is the dosage unit of a medication.
type Unit string

const (
	UnitMg  Unit = "mg"
	UnitML  Unit = "mL"
	UnitIU  Unit = "IU"
	UnitMcg Unit = "mcg"
)

// Units lists every accepted dosage unit.
var Units = []Unit{UnitMg, UnitML, UnitIU, UnitMcg}

func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// Frequency is the dosing schedule label of a medication.
type Frequency string

const (
	FrequencyDaily         Frequency = "daily"
	FrequencyEveryOtherDay Frequency = "every_other_day"
	FrequencyTwiceWeekly   Frequency = "twice_weekly"
	FrequencyWeekly        Frequency = "weekly"
	FrequencyBiweekly      Frequency = "biweekly"
	FrequencyMonthly       Frequency = "monthly"
	FrequencyCustom        Frequency = "custom"
)

// frequencyDays holds the canonical interval for every non-custom frequency.
var frequencyDays = map[Frequency]float64{
	FrequencyDaily:         1,
	FrequencyEveryOtherDay: 2,
	FrequencyTwiceWeekly:   3.5,
	FrequencyWeekly:        7,
	FrequencyBiweekly:      14,
	FrequencyMonthly:       30,
}

func (f Frequency) Valid() bool {
	if f == FrequencyCustom {
		return true
	}
	_, ok := frequencyDays[f]
	return ok
}

// CanonicalDays returns the interval in days implied by the label. Custom
// frequencies have no canonical interval and report false.
func (f Frequency) CanonicalDays() (float64, bool) {
	days, ok := frequencyDays[f]
	return days, ok
}

// InjectionSite is the body location of an injection.
type InjectionSite string

const (
	SiteLeftArm    InjectionSite = "left_arm"
	SiteRightArm   InjectionSite = "right_arm"
	SiteLeftThigh  InjectionSite = "left_thigh"
	SiteRightThigh InjectionSite = "right_thigh"
	SiteAbdomen    InjectionSite = "abdomen"
	SiteOther      InjectionSite = "other"
)

// InjectionSites lists the sites in their canonical display order.
var InjectionSites = []InjectionSite{
	SiteLeftArm, SiteRightArm, SiteLeftThigh, SiteRightThigh, SiteAbdomen, SiteOther,
}

// DefaultSite is used when neither the request nor the medication names a site.
const DefaultSite = SiteAbdomen

func (s InjectionSite) Valid() bool {
	for _, known := range InjectionSites {
		if s == known {
			return true
		}
	}
	return false
}

// Display renders the site for humans, e.g. "left arm".
func (s InjectionSite) Display() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// SiteOrder returns the position of s in InjectionSites, or len(InjectionSites)
// for unknown values so they sort last.
func SiteOrder(s InjectionSite) int {
	for i, known := range InjectionSites {
		if s == known {
			return i
		}
	}
	return len(InjectionSites)
}
