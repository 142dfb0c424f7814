package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stackpad/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))
	return db
}

func TestPGHandler_OnlyErrorAndAbove(t *testing.T) {
	h := NewPGHandler(newTestDB(t))
	defer h.Stop()

	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelDebug))
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.False(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}

func TestPGHandler_PersistsStructuredRecord(t *testing.T) {
	db := newTestDB(t)
	h := NewPGHandler(db)
	log := slog.New(h)

	log.Error("request failed",
		"request_id", "req-123",
		"user_id", "user-456",
		"path", "/api/v1/items",
		"error", "connection reset",
		"attempt", int64(3),
	)
	log.Info("not persisted")

	h.Stop()

	var entry models.SystemLog
	require.Eventually(t, func() bool {
		return db.First(&entry).Error == nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "req-123", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-456", *entry.UserID)
	assert.Equal(t, "/api/v1/items", entry.Path)
	assert.Equal(t, "connection reset", entry.Error)
	assert.Contains(t, string(entry.Attrs), "attempt")

	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "info records never reach the store")
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	everything := &captureHandler{min: slog.LevelDebug}
	errorsOnly := &captureHandler{min: slog.LevelError}

	log := slog.New(NewMultiHandler(everything, errorsOnly))
	log.Info("routine")
	log.Error("broken")

	assert.Equal(t, []string{"routine", "broken"}, everything.messages)
	assert.Equal(t, []string{"broken"}, errorsOnly.messages)
}

type captureHandler struct {
	min      slog.Level
	messages []string
}

func (h *captureHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *captureHandler) Handle(_ context.Context, record slog.Record) error {
	h.messages = append(h.messages, record.Message)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }
