package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/models"
	"github.com/illegalcall/shot-tracker/internal/repository"
)

// fail maps err onto a status code: validation errors are 400, missing or
// foreign rows 404, everything else 500. Internal details are only echoed
// outside production.
func (s *Server) fail(c *fiber.Ctx, err error, message string) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Message,
			"field": verr.Field,
		})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": message + ": not found",
		})
	}

	s.logger.Error(message, "error", err, "path", c.Path(), "user_id", userID(c))
	errorMessage := message
	if s.cfg.Server.Environment != "production" {
		errorMessage = fmt.Sprintf("%s: %v", message, err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": errorMessage,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}
