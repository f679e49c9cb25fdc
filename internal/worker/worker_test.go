package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/shot-tracker/internal/config"
	"github.com/illegalcall/shot-tracker/internal/models"
	"github.com/illegalcall/shot-tracker/internal/storage"
	"github.com/illegalcall/shot-tracker/pkg/database"
)

// MockConsumerGroup mocks sarama.ConsumerGroup
type MockConsumerGroup struct {
	mock.Mock
}

func (m *MockConsumerGroup) Consume(ctx context.Context, topics []string, handler sarama.ConsumerGroupHandler) error {
	args := m.Called(ctx, topics, handler)
	return args.Error(0)
}

func (m *MockConsumerGroup) Errors() <-chan error {
	args := m.Called()
	return args.Get(0).(chan error)
}

func (m *MockConsumerGroup) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConsumerGroup) Pause(partitions map[string][]int32) {
	m.Called(partitions)
}

func (m *MockConsumerGroup) Resume(partitions map[string][]int32) {
	m.Called(partitions)
}

func (m *MockConsumerGroup) PauseAll() {
	m.Called()
}

func (m *MockConsumerGroup) ResumeAll() {
	m.Called()
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

// setupTestWorker creates a test worker with mocked dependencies
func setupTestWorker(t *testing.T) (*Worker, sqlmock.Sqlmock, *miniredis.Miniredis, *MockConsumerGroup, string) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	miniRedis := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: miniRedis.Addr(),
	})

	dbClients := &database.Clients{
		DB:    sqlx.NewDb(sqlDB, "sqlmock"),
		Redis: redisClient,
	}

	dir, err := os.MkdirTemp("", "worker-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	store, err := storage.NewLocalStorage(dir, 0)
	require.NoError(t, err)

	cfg := &config.Config{
		Kafka: config.KafkaConfig{
			Topic:        "test-topic",
			RetryMax:     2,
			RetryBackoff: time.Millisecond,
		},
	}

	mockConsumerGroup := new(MockConsumerGroup)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	worker := NewWorker(cfg, dbClients, store, mockConsumerGroup, logger)
	worker.now = func() time.Time { return time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC) }

	return worker, mock, miniRedis, mockConsumerGroup, dir
}

func exportMessage(t *testing.T, msg models.ExportMessage) *sarama.ConsumerMessage {
	value, err := json.Marshal(msg)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Value: value}
}

func expectHistory(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "timezone", "created_at", "updated_at"}).
			AddRow("user-1", "sam@example.com", "Sam", "UTC", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM medications WHERE user_id = $1 ORDER BY created_at ASC")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "dosage", "unit", "frequency",
			"frequency_days", "preferred_injection_site", "is_active", "created_at", "updated_at"}).
			AddRow("m1", "user-1", "Tirzepatide", 2.5, "mg", "weekly", 7.0, nil, false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM injection_logs WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "medication_id", "injection_date", "dosage",
			"injection_site", "notes", "is_completed", "created_at", "updated_at"}).
			AddRow("l1", "user-1", "m1", time.Date(2025, time.March, 30, 8, 15, 0, 0, time.UTC), 2.5, "right_arm", nil, true, now, now))
}

func TestProcessJobCompletes(t *testing.T) {
	worker, mock, miniRedis, _, dir := setupTestWorker(t)

	expectHistory(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, file_path = $2 WHERE id = $3")).
		WithArgs(models.StatusCompleted, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := worker.processJob(context.Background(), exportMessage(t, models.ExportMessage{
		ID: 7, UserID: "user-1", Format: models.ExportCSV,
	}))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	status, err := miniRedis.Get("job:7")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "export-7-"))

	content, err := os.ReadFile(dir + "/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "2025-03-30,08:15,Tirzepatide,2.5,mg,right arm,")
}

func TestProcessJobUnknownFormatFailsWithoutRetry(t *testing.T) {
	worker, mock, miniRedis, _, _ := setupTestWorker(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, file_path = $2 WHERE id = $3")).
		WithArgs(models.StatusFailed, nil, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := worker.processJob(context.Background(), exportMessage(t, models.ExportMessage{
		ID: 8, UserID: "user-1", Format: "pdf",
	}))
	assert.ErrorIs(t, err, errPermanent)
	assert.NoError(t, mock.ExpectationsWereMet())

	status, err := miniRedis.Get("job:8")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status)
}

func TestProcessJobRetriesTransientErrors(t *testing.T) {
	worker, mock, _, _, _ := setupTestWorker(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WillReturnError(sqlmock.ErrCancelled)
	expectHistory(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs")).
		WithArgs(models.StatusCompleted, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := worker.processJob(context.Background(), exportMessage(t, models.ExportMessage{
		ID: 9, UserID: "user-1", Format: models.ExportHTML,
	}))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessJobRemovesFileWhenCompletionIsNotRecorded(t *testing.T) {
	worker, mock, miniRedis, _, dir := setupTestWorker(t)

	expectHistory(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, file_path = $2 WHERE id = $3")).
		WithArgs(models.StatusCompleted, sqlmock.AnyArg(), 12).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, file_path = $2 WHERE id = $3")).
		WithArgs(models.StatusFailed, nil, 12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := worker.processJob(context.Background(), exportMessage(t, models.ExportMessage{
		ID: 12, UserID: "user-1", Format: models.ExportCSV,
	}))
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "orphaned export file is removed")

	status, err := miniRedis.Get("job:12")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status)
}

func TestProcessJobStopsRetryingOnShutdown(t *testing.T) {
	worker, mock, miniRedis, _, _ := setupTestWorker(t)
	worker.cfg.Kafka.RetryBackoff = time.Hour

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WillReturnError(sqlmock.ErrCancelled)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := worker.processJob(ctx, exportMessage(t, models.ExportMessage{
		ID: 13, UserID: "user-1", Format: models.ExportCSV,
	}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second, "backoff must not outlive the context")
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.False(t, miniRedis.Exists("job:13"), "interrupted job stays pending")
}

func TestConsumeClaimLeavesMessageUnmarkedOnShutdown(t *testing.T) {
	worker, _, _, _, _ := setupTestWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 1)}
	claim.messages <- exportMessage(t, models.ExportMessage{ID: 14, UserID: "user-1", Format: models.ExportCSV})
	close(claim.messages)

	session := &fakeSession{ctx: ctx}
	require.NoError(t, worker.ConsumeClaim(session, claim))
	assert.Empty(t, session.marked)
}

func TestProcessJobRejectsMalformedMessage(t *testing.T) {
	worker, mock, _, _, _ := setupTestWorker(t)

	err := worker.processJob(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")})
	assert.ErrorContains(t, err, "failed to parse job")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessJobFailsJobWithReadableID(t *testing.T) {
	worker, mock, miniRedis, _, _ := setupTestWorker(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, file_path = $2 WHERE id = $3")).
		WithArgs(models.StatusFailed, nil, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := worker.processJob(context.Background(), &sarama.ConsumerMessage{
		Value: []byte(`{"id":11,"user_id":"user-1","format":5}`),
	})
	assert.ErrorContains(t, err, "failed to parse job")
	assert.NoError(t, mock.ExpectationsWereMet())

	status, err := miniRedis.Get("job:11")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status)
}

func TestConsumeClaimMarksEveryMessage(t *testing.T) {
	worker, mock, _, _, _ := setupTestWorker(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs")).
		WithArgs(models.StatusFailed, nil, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Value: []byte("not json"), Offset: 1}
	claim.messages <- exportMessage(t, models.ExportMessage{ID: 10, UserID: "user-1", Format: "doc"})
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, worker.ConsumeClaim(session, claim))
	assert.Len(t, session.marked, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerStart(t *testing.T) {
	worker, _, _, mockConsumerGroup, _ := setupTestWorker(t)

	errChan := make(chan error)
	mockConsumerGroup.On("Errors").Return(errChan)
	mockConsumerGroup.On("Consume", mock.Anything, []string{worker.cfg.Kafka.Topic}, mock.Anything).
		Run(func(args mock.Arguments) {
			handler := args.Get(2).(sarama.ConsumerGroupHandler)
			_ = handler.Setup(nil)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := worker.Start(ctx)
	assert.NoError(t, err)

	select {
	case <-worker.ready:
	default:
		t.Fatal("worker never became ready")
	}
	mockConsumerGroup.AssertExpectations(t)
	close(errChan)
}
