package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder(t *testing.T) {
	t.Run("captures records and With attributes", func(t *testing.T) {
		logger, rec := NewTestLogger(t)
		logger.With(slog.String("component", "test")).Info("hello", slog.Int("n", 1))

		entries := rec.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "hello", entries[0].Message)
		assert.True(t, rec.HasAttr("component", "test"))
		assert.True(t, rec.HasAttr("n", int64(1)))
	})

	t.Run("groups prefix keys", func(t *testing.T) {
		logger, rec := NewTestLogger(t)
		logger.WithGroup("req").Info("grouped", slog.String("id", "x"))
		assert.True(t, rec.HasAttr("req.id", "x"))
	})

	t.Run("filters by level and resets", func(t *testing.T) {
		logger, rec := NewTestLogger(t)
		logger.Info("info")
		logger.Error("boom")

		assert.Len(t, rec.EntriesAt(slog.LevelError), 1)
		AssertLogged(t, rec, slog.LevelInfo, "info")

		rec.Reset()
		assert.Empty(t, rec.Entries())
		AssertNoErrors(t, rec)
	})
}
