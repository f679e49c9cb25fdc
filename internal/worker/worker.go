package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/tidwall/gjson"

	"github.com/illegalcall/shot-tracker/internal/config"
	"github.com/illegalcall/shot-tracker/internal/jobs"
	"github.com/illegalcall/shot-tracker/internal/metrics"
	"github.com/illegalcall/shot-tracker/internal/models"
	"github.com/illegalcall/shot-tracker/internal/repository"
	"github.com/illegalcall/shot-tracker/internal/storage"
	"github.com/illegalcall/shot-tracker/pkg/database"
)

// errPermanent marks failures that a retry cannot fix.
var errPermanent = errors.New("permanent failure")

type Worker struct {
	cfg       *config.Config
	db        *database.Clients
	repo      *repository.Repository
	storage   storage.Storage
	consumer  sarama.ConsumerGroup
	logger    *slog.Logger
	ready     chan struct{}
	readyOnce sync.Once
	now       func() time.Time
}

func NewWorker(cfg *config.Config, db *database.Clients, store storage.Storage, consumer sarama.ConsumerGroup, logger *slog.Logger) *Worker {
	logger.Info("Initializing new Worker")
	return &Worker{
		cfg:      cfg,
		db:       db,
		repo:     repository.New(db.DB),
		storage:  store,
		consumer: consumer,
		logger:   logger,
		ready:    make(chan struct{}),
		now:      time.Now,
	}
}

// Start consumes export jobs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	w.logger.Info("Starting worker", "topics", topics)

	// Start error logging for consumer errors
	go func() {
		for err := range w.consumer.Errors() {
			w.logger.Error("Kafka consumer error received", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if err := w.consumer.Consume(ctx, topics, w); err != nil {
				w.logger.Error("Error from consumer.Consume", "error", err)
				select {
				case <-ctx.Done():
				case <-time.After(w.cfg.Kafka.RetryBackoff):
				}
			}
			if ctx.Err() != nil {
				w.logger.Info("Context cancelled, exiting consumer loop")
				return
			}
		}
	}()

	select {
	case <-w.ready:
		w.logger.Info("Worker setup complete; consumer ready")
	case <-ctx.Done():
	}

	<-ctx.Done()
	<-done
	w.logger.Info("Worker shutting down gracefully")
	return nil
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	w.readyOnce.Do(func() { close(w.ready) })
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	w.logger.Debug("Consumer group session cleanup complete")
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		w.logger.Debug("Message received from Kafka", "offset", message.Offset, "partition", message.Partition)
		if err := w.processJob(session.Context(), message); err != nil {
			w.logger.Error("Failed to process job", "error", err, "offset", message.Offset)
		}
		// unmarked messages are redelivered to the next session
		if session.Context().Err() != nil {
			return nil
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (w *Worker) processJob(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var job models.ExportMessage
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		w.logger.Error("JSON unmarshalling failed", "error", err, "raw", string(msg.Value))
		w.failUnparsed(ctx, msg.Value)
		return fmt.Errorf("failed to parse job: %w", err)
	}
	log := w.logger.With("jobID", job.ID, "format", job.Format)

	var (
		path string
		err  error
	)
	for attempt := 1; attempt <= max(w.cfg.Kafka.RetryMax, 1); attempt++ {
		path, err = w.export(ctx, job)
		if err == nil || errors.Is(err, errPermanent) || ctx.Err() != nil {
			break
		}
		log.Warn("Export attempt failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(w.cfg.Kafka.RetryBackoff):
		}
	}

	// Interrupted by shutdown: leave the job pending for redelivery.
	if err != nil && ctx.Err() != nil {
		log.Warn("Export interrupted", "error", ctx.Err())
		return fmt.Errorf("export %d interrupted: %w", job.ID, ctx.Err())
	}
	if err != nil {
		log.Error("Export ultimately failed", "error", err)
		w.setStatus(ctx, log, job, models.StatusFailed, nil)
		return err
	}

	if err := w.setStatus(ctx, log, job, models.StatusCompleted, &path); err != nil {
		// no row points at the file, so nobody could download it
		if derr := w.storage.Delete(ctx, path); derr != nil {
			log.Error("Failed to remove orphaned export file", "path", path, "error", derr)
		}
		w.setStatus(ctx, log, job, models.StatusFailed, nil)
		return err
	}
	log.Info("Export completed", "path", path)
	return nil
}

// export renders the user's full history and stores the file.
func (w *Worker) export(ctx context.Context, job models.ExportMessage) (string, error) {
	if !job.Format.Valid() {
		return "", fmt.Errorf("%w: unsupported format %q", errPermanent, job.Format)
	}

	profile, err := w.repo.GetProfile(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", errPermanent, err)
		}
		return "", err
	}
	meds, err := w.repo.ListAllMedications(ctx, job.UserID)
	if err != nil {
		return "", err
	}
	logs, err := w.repo.ListInjections(ctx, job.UserID, repository.InjectionFilter{})
	if err != nil {
		return "", err
	}

	data, err := jobs.Render(job.Format, jobs.Report{
		Profile:     *profile,
		Medications: meds,
		Logs:        logs,
		GeneratedAt: w.now(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPermanent, err)
	}

	pattern := fmt.Sprintf("export-%d-*.%s", job.ID, job.Format)
	path, err := w.storage.StoreFromBytes(ctx, pattern, data)
	if errors.Is(err, storage.ErrTooLarge) {
		return "", fmt.Errorf("%w: %v", errPermanent, err)
	}
	return path, err
}

// failUnparsed marks a job failed when its id can still be read from an
// otherwise malformed payload, so it does not stay pending forever.
func (w *Worker) failUnparsed(ctx context.Context, raw []byte) {
	if !gjson.ValidBytes(raw) {
		return
	}
	id := gjson.GetBytes(raw, "id")
	if id.Type != gjson.Number || id.Int() <= 0 {
		return
	}
	format := gjson.GetBytes(raw, "format")
	job := models.ExportMessage{ID: int(id.Int()), Format: "unknown"}
	if format.Type == gjson.String {
		job.Format = models.ExportFormat(format.Str)
	}
	w.setStatus(ctx, w.logger.With("jobID", job.ID), job, models.StatusFailed, nil)
}

// setStatus records the outcome in Postgres and Redis. A completion that
// Postgres did not accept is returned so the caller can fail the job instead;
// every other failure is logged only and the API falls back to whichever
// store is readable.
func (w *Worker) setStatus(ctx context.Context, log *slog.Logger, job models.ExportMessage, status string, path *string) error {
	if err := w.repo.UpdateExportJob(ctx, job.ID, status, path); err != nil {
		log.Error("Failed to update job status in DB", "status", status, "error", err)
		if status == models.StatusCompleted {
			return err
		}
	}
	metrics.Exports.WithLabelValues(string(job.Format), status).Inc()

	redisKey := fmt.Sprintf("job:%d", job.ID)
	if err := w.db.Redis.Set(ctx, redisKey, status, 0).Err(); err != nil {
		log.Error("Failed to update Redis status", "status", status, "error", err)
	}
	return nil
}
