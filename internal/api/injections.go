package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/metrics"
	"github.com/illegalcall/shot-tracker/internal/models"
	"github.com/illegalcall/shot-tracker/internal/repository"
)

const (
	defaultInjectionLimit = 50
	maxInjectionLimit     = 500
)

// handleListInjections returns logs newest first. from and to are RFC 3339
// timestamps and both bounds are inclusive.
func (s *Server) handleListInjections(c *fiber.Ctx) error {
	filter := repository.InjectionFilter{
		MedicationID: c.Query("medication_id"),
		Limit:        c.QueryInt("limit", defaultInjectionLimit),
	}
	if filter.Limit < 1 || filter.Limit > maxInjectionLimit {
		return badRequest(c, "limit must be between 1 and 500")
	}

	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		return badRequest(c, "from must be an RFC 3339 timestamp")
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		return badRequest(c, "to must be an RFC 3339 timestamp")
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return badRequest(c, "to must not be before from")
	}

	logs, err := s.repo.ListInjections(c.UserContext(), userID(c), filter)
	if err != nil {
		return s.fail(c, err, "Failed to fetch injections")
	}
	return c.JSON(fiber.Map{"injections": logs})
}

// handleLogInjection records a dose. Omitted fields fall back to the
// medication, so {"medication_id": "..."} alone logs a dose right now.
func (s *Server) handleLogInjection(c *fiber.Ctx) error {
	var req models.LogInjectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.MedicationID == "" {
		return badRequest(c, "medication_id is required")
	}

	ctx := c.UserContext()
	uid := userID(c)
	med, err := s.repo.GetMedication(ctx, uid, req.MedicationID)
	if err != nil {
		return s.fail(c, err, "Failed to fetch medication")
	}
	if !med.IsActive {
		return badRequest(c, "Medication is no longer active")
	}

	log, err := req.Build(*med, s.now())
	if err != nil {
		return s.fail(c, err, "Invalid injection")
	}
	if err := s.repo.CreateInjection(ctx, &log); err != nil {
		return s.fail(c, err, "Failed to log injection")
	}
	metrics.InjectionsLogged.Inc()
	s.invalidateStats(ctx, uid)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"injection": log})
}

func parseTimeQuery(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
