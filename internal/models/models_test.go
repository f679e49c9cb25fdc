package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestMedicationInputNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        MedicationInput
		wantField string
		wantDays  float64
		wantUnit  Unit
	}{
		{
			name:     "defaults to weekly mg",
			in:       MedicationInput{Name: " Sema ", Dosage: 0.25},
			wantDays: 7,
			wantUnit: UnitMg,
		},
		{
			name:     "canonical days override caller value",
			in:       MedicationInput{Name: "BPC", Dosage: 250, Unit: UnitMcg, Frequency: FrequencyTwiceWeekly, FrequencyDays: 99},
			wantDays: 3.5,
			wantUnit: UnitMcg,
		},
		{
			name:     "custom keeps caller value",
			in:       MedicationInput{Name: "T", Dosage: 100, Frequency: FrequencyCustom, FrequencyDays: 10},
			wantDays: 10,
			wantUnit: UnitMg,
		},
		{name: "missing name", in: MedicationInput{Name: "  ", Dosage: 1}, wantField: "name"},
		{name: "zero dosage", in: MedicationInput{Name: "x"}, wantField: "dosage"},
		{name: "bad unit", in: MedicationInput{Name: "x", Dosage: 1, Unit: "cc"}, wantField: "unit"},
		{name: "bad frequency", in: MedicationInput{Name: "x", Dosage: 1, Frequency: "hourly"}, wantField: "frequency"},
		{name: "custom without days", in: MedicationInput{Name: "x", Dosage: 1, Frequency: FrequencyCustom}, wantField: "frequency_days"},
		{name: "bad site", in: MedicationInput{Name: "x", Dosage: 1, PreferredSite: ptr(InjectionSite("neck"))}, wantField: "preferred_site"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := in.Normalize()
			if tt.wantField != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, in.FrequencyDays)
			assert.Equal(t, tt.wantUnit, in.Unit)
		})
	}
}

func TestMedicationInputClearsEmptySite(t *testing.T) {
	in := MedicationInput{Name: "x", Dosage: 1, PreferredSite: ptr(InjectionSite(""))}
	require.NoError(t, in.Normalize())
	assert.Nil(t, in.PreferredSite)

	var med Medication
	in.Apply(&med)
	assert.Equal(t, "x", med.Name)
	assert.Equal(t, SiteAbdomen, med.DefaultSite())
}

func TestLogInjectionRequestBuild(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	med := Medication{ID: "med-1", UserID: "user-1", Dosage: 2.5, PreferredSite: ptr(SiteLeftThigh)}

	t.Run("log now uses medication defaults", func(t *testing.T) {
		log, err := LogInjectionRequest{MedicationID: "med-1"}.Build(med, now)
		require.NoError(t, err)
		assert.Equal(t, now, log.InjectionDate)
		assert.Equal(t, 2.5, log.Dosage)
		assert.Equal(t, SiteLeftThigh, log.InjectionSite)
		assert.Equal(t, "user-1", log.UserID)
		assert.True(t, log.IsCompleted)
		assert.Nil(t, log.Notes)
	})

	t.Run("explicit values win", func(t *testing.T) {
		when := now.Add(-time.Hour)
		log, err := LogInjectionRequest{
			InjectionDate: &when,
			Dosage:        ptr(5.0),
			InjectionSite: ptr(SiteRightArm),
			Notes:         ptr("  slight sting "),
		}.Build(med, now)
		require.NoError(t, err)
		assert.Equal(t, when, log.InjectionDate)
		assert.Equal(t, 5.0, log.Dosage)
		assert.Equal(t, SiteRightArm, log.InjectionSite)
		require.NotNil(t, log.Notes)
		assert.Equal(t, "slight sting", *log.Notes)
	})

	t.Run("falls back to abdomen", func(t *testing.T) {
		log, err := LogInjectionRequest{}.Build(Medication{Dosage: 1}, now)
		require.NoError(t, err)
		assert.Equal(t, SiteAbdomen, log.InjectionSite)
	})

	rejects := map[string]LogInjectionRequest{
		"injection_date": {InjectionDate: ptr(now.Add(time.Minute))},
		"dosage":         {Dosage: ptr(-1.0)},
		"injection_site": {InjectionSite: ptr(InjectionSite("ear"))},
	}
	for field, req := range rejects {
		t.Run("rejects "+field, func(t *testing.T) {
			_, err := req.Build(med, now)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestOnboardingRequestValidatesStepsInOrder(t *testing.T) {
	req := OnboardingRequest{}
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, "full_name: please enter your name", err.Error())

	req.FullName = "Sam"
	err = req.Validate()
	assert.Equal(t, "medication.name: please enter medication name", err.Error())

	req.Medication.Name = "Tirzepatide"
	err = req.Validate()
	assert.Equal(t, "medication.dosage: please enter a valid dosage", err.Error())

	req.Medication.Dosage = 2.5
	require.NoError(t, req.Validate())
	assert.Equal(t, 7.0, req.Medication.FrequencyDays)
}

func TestMagicLinkRequestValidate(t *testing.T) {
	req := MagicLinkRequest{Email: "  Sam@Example.COM "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "sam@example.com", req.Email)

	for _, bad := range []string{"", "not-an-email", "a@"} {
		r := MagicLinkRequest{Email: bad}
		assert.Error(t, r.Validate(), bad)
	}
}

func TestReminderValidate(t *testing.T) {
	ok := NewReminderRequest{MedicationID: "m", ReminderTime: "08:30", HoursBefore: 2}
	assert.NoError(t, ok.Validate())

	bad := []NewReminderRequest{
		{ReminderTime: "08:30"},
		{MedicationID: "m", ReminderTime: "8.30"},
		{MedicationID: "m", ReminderTime: "25:00"},
		{MedicationID: "m", ReminderTime: "08:30", HoursBefore: 73},
	}
	for _, r := range bad {
		assert.Error(t, r.Validate())
	}
}

func TestProfileHelpers(t *testing.T) {
	p := Profile{Timezone: "Europe/Berlin"}
	assert.Equal(t, "Europe/Berlin", p.Location().String())
	assert.Equal(t, "N/A", p.DisplayName())

	p = Profile{Timezone: "Mars/Olympus", FullName: ptr("Sam")}
	assert.Equal(t, time.UTC, p.Location())
	assert.Equal(t, "Sam", p.DisplayName())

	req := UpdateProfileRequest{Timezone: ptr("Nowhere/City")}
	assert.Error(t, req.Validate())
}

func TestEnums(t *testing.T) {
	assert.Equal(t, "left arm", SiteLeftArm.Display())
	assert.Equal(t, 0, SiteOrder(SiteLeftArm))
	assert.Equal(t, len(InjectionSites), SiteOrder("knee"))

	days, ok := FrequencyMonthly.CanonicalDays()
	assert.True(t, ok)
	assert.Equal(t, 30.0, days)
	_, ok = FrequencyCustom.CanonicalDays()
	assert.False(t, ok)

	assert.True(t, ExportXLSX.Valid())
	assert.False(t, ExportFormat("pdf").Valid())
}
