package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/adherence"
	"github.com/illegalcall/shot-tracker/internal/models"
	"github.com/illegalcall/shot-tracker/internal/repository"
)

const recentLogCount = 5

// selectMedication picks the medication named by ?medication_id, or the
// first active one. It returns nil when the user has none.
func (s *Server) selectMedication(c *fiber.Ctx) (*models.Medication, []models.Medication, error) {
	meds, err := s.repo.ListActiveMedications(c.UserContext(), userID(c))
	if err != nil {
		return nil, nil, err
	}

	want := c.Query("medication_id")
	if want == "" {
		if len(meds) == 0 {
			return nil, meds, nil
		}
		return &meds[0], meds, nil
	}
	for i := range meds {
		if meds[i].ID == want {
			return &meds[i], meds, nil
		}
	}
	return nil, meds, fmt.Errorf("medication %s: %w", want, repository.ErrNotFound)
}

func (s *Server) location(ctx context.Context, uid string) (*time.Location, error) {
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return profile.Location(), nil
}

type dashboardResponse struct {
	Medication   *models.Medication    `json:"medication"`
	Medications  []models.Medication   `json:"medications"`
	NextDueDate  *time.Time            `json:"next_due_date"`
	DaysUntilDue *int                  `json:"days_until_due"`
	State        adherence.DueState    `json:"state"`
	RecentLogs   []models.InjectionLog `json:"recent_logs"`
}

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	med, meds, err := s.selectMedication(c)
	if err != nil {
		return s.fail(c, err, "Failed to fetch medication")
	}
	resp := dashboardResponse{
		Medication:  med,
		Medications: meds,
		State:       adherence.DueState{Status: adherence.StatusNoSchedule},
		RecentLogs:  []models.InjectionLog{},
	}
	if med == nil {
		return c.JSON(resp)
	}

	ctx := c.UserContext()
	uid := userID(c)
	loc, err := s.location(ctx, uid)
	if err != nil {
		return s.fail(c, err, "Failed to fetch profile")
	}
	logs, err := s.repo.ListInjections(ctx, uid, repository.InjectionFilter{MedicationID: med.ID})
	if err != nil {
		return s.fail(c, err, "Failed to fetch injections")
	}
	calc, err := adherence.New(med.FrequencyDays, loc)
	if err != nil {
		return s.fail(c, err, "Invalid medication schedule")
	}

	events := adherence.FromLogs(logs)
	now := s.now()
	if due, ok := calc.NextDueDate(events); ok {
		days, _ := calc.DaysUntilDue(events, now)
		resp.NextDueDate = &due
		resp.DaysUntilDue = &days
	}
	resp.State = calc.Classify(events, now)
	if len(logs) > recentLogCount {
		logs = logs[:recentLogCount]
	}
	resp.RecentLogs = logs

	return c.JSON(resp)
}

type calendarDay struct {
	Date  string                `json:"date"`
	Count int                   `json:"count"`
	Logs  []models.InjectionLog `json:"logs"`
}

// handleCalendar groups one month of logs by civil day in the owner's zone.
func (s *Server) handleCalendar(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid := userID(c)
	loc, err := s.location(ctx, uid)
	if err != nil {
		return s.fail(c, err, "Failed to fetch profile")
	}

	month := c.Query("month", s.now().In(loc).Format("2006-01"))
	start, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return badRequest(c, "month must use YYYY-MM")
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	logs, err := s.repo.ListInjections(ctx, uid, repository.InjectionFilter{
		MedicationID: c.Query("medication_id"),
		From:         start,
		To:           end,
	})
	if err != nil {
		return s.fail(c, err, "Failed to fetch injections")
	}

	// logs arrive newest first; walk backwards for ascending days
	days := []calendarDay{}
	for i := len(logs) - 1; i >= 0; i-- {
		key := logs[i].InjectionDate.In(loc).Format("2006-01-02")
		if n := len(days); n > 0 && days[n-1].Date == key {
			days[n-1].Count++
			days[n-1].Logs = append(days[n-1].Logs, logs[i])
			continue
		}
		days = append(days, calendarDay{Date: key, Count: 1, Logs: []models.InjectionLog{logs[i]}})
	}

	return c.JSON(fiber.Map{
		"month": month,
		"days":  days,
	})
}
