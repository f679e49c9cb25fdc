package api

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/jobs"
	"github.com/illegalcall/shot-tracker/internal/metrics"
	"github.com/illegalcall/shot-tracker/internal/models"
)

func jobKey(id int) string {
	return fmt.Sprintf("job:%d", id)
}

func (s *Server) handleCreateExport(c *fiber.Ctx) error {
	var req models.NewExportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Format == "" {
		req.Format = models.ExportCSV
	}
	if !req.Format.Valid() {
		return badRequest(c, "format must be one of csv, html, xlsx")
	}

	ctx := c.UserContext()
	job, err := s.repo.CreateExportJob(ctx, userID(c), req.Format)
	if err != nil {
		return s.fail(c, err, "Failed to create export")
	}

	// Set initial status in Redis
	if err := s.db.Redis.Set(ctx, jobKey(job.ID), models.StatusPending, 0).Err(); err != nil {
		return s.fail(c, err, "Failed to set export status")
	}

	payload, _ := json.Marshal(models.ExportMessage{ID: job.ID, UserID: job.UserID, Format: job.Format})
	msg := &sarama.ProducerMessage{
		Topic: s.cfg.Kafka.Topic,
		Key:   sarama.StringEncoder(job.UserID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		// nothing will ever pick the job up
		if uerr := s.repo.UpdateExportJob(ctx, job.ID, models.StatusFailed, nil); uerr != nil {
			s.logger.Error("Failed to mark export failed", "job_id", job.ID, "error", uerr)
		}
		if rerr := s.db.Redis.Set(ctx, jobKey(job.ID), models.StatusFailed, 0).Err(); rerr != nil {
			s.logger.Error("Failed to mark export failed in Redis", "job_id", job.ID, "error", rerr)
		}
		metrics.Exports.WithLabelValues(string(job.Format), models.StatusFailed).Inc()
		return s.fail(c, err, "Failed to queue export")
	}

	s.logger.Info("Export queued", "job_id", job.ID, "format", job.Format)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job": job})
}

// loadExport fetches the caller's job with the live Redis status overlaid.
func (s *Server) loadExport(c *fiber.Ctx) (*models.ExportJob, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid export id")
	}
	job, err := s.repo.GetExportJob(c.UserContext(), userID(c), id)
	if err != nil {
		return nil, err
	}
	if status, err := s.db.Redis.Get(c.UserContext(), jobKey(id)).Result(); err == nil && status != "" {
		job.Status = status
	}
	return job, nil
}

func (s *Server) handleGetExport(c *fiber.Ctx) error {
	job, err := s.loadExport(c)
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return badRequest(c, fe.Message)
		}
		return s.fail(c, err, "Failed to fetch export")
	}
	return c.JSON(fiber.Map{"job": job})
}

func (s *Server) handleDownloadExport(c *fiber.Ctx) error {
	job, err := s.loadExport(c)
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return badRequest(c, fe.Message)
		}
		return s.fail(c, err, "Failed to fetch export")
	}
	if job.Status != models.StatusCompleted || job.FilePath == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "Export is not ready",
			"status": job.Status,
		})
	}

	rc, err := s.storage.Open(c.UserContext(), *job.FilePath)
	if err != nil {
		return s.fail(c, err, "Failed to open export")
	}
	c.Attachment(jobs.FileName(job.Format, job.CreatedAt))
	c.Set(fiber.HeaderContentType, job.Format.ContentType())
	// the response closes rc once streamed
	return c.SendStream(rc)
}
