package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/models"
)

func (s *Server) handleListReminders(c *fiber.Ctx) error {
	reminders, err := s.repo.ListReminders(c.UserContext(), userID(c))
	if err != nil {
		return s.fail(c, err, "Failed to fetch reminders")
	}
	return c.JSON(fiber.Map{"reminders": reminders})
}

func (s *Server) handleCreateReminder(c *fiber.Ctx) error {
	var req models.NewReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return s.fail(c, err, "Invalid reminder")
	}

	ctx := c.UserContext()
	uid := userID(c)
	// ownership check
	if _, err := s.repo.GetMedication(ctx, uid, req.MedicationID); err != nil {
		return s.fail(c, err, "Failed to fetch medication")
	}

	reminder := models.Reminder{
		UserID:       uid,
		MedicationID: req.MedicationID,
		ReminderTime: req.ReminderTime,
		HoursBefore:  req.HoursBefore,
	}
	if err := s.repo.CreateReminder(ctx, &reminder); err != nil {
		return s.fail(c, err, "Failed to create reminder")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reminder": reminder})
}

func (s *Server) handleDeleteReminder(c *fiber.Ctx) error {
	if err := s.repo.DeactivateReminder(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return s.fail(c, err, "Failed to delete reminder")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
