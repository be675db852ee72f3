package logger

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []LogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e LogEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestLoggerWritesEntries(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(WithOutputDir(dir), WithFileName("test.log"), WithStdout(false), WithMinLevel(LevelInfo))
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithUserID(ctx, 7)

	l.Debug(ctx).Logs("dropped")
	l.Info(ctx).WithMeta(map[string]string{"recipe_id": "3"}).Logs("Recipe created")
	l.Warn(ctx).WithFields("kind", "favorite", "count", 2).Logs("Add rejected")
	l.Close()
	l.Close()

	entries := readEntries(t, filepath.Join(dir, "test.log"))
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "Recipe created", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].RequestID)
	assert.Equal(t, "7", entries[0].UserID)
	assert.Equal(t, "3", entries[0].Meta["recipe_id"])

	assert.Equal(t, "WARN", entries[1].Level)
	assert.Equal(t, map[string]string{"kind": "favorite", "count": "2"}, entries[1].Meta)
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info(context.Background()).WithFields("a", 1).Logs("nothing")
		l.Close()
	})
}

func TestLogsAfterCloseDoNotBlock(t *testing.T) {
	l, err := NewLogger(WithOutputDir(t.TempDir()), WithStdout(false))
	require.NoError(t, err)
	l.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2000; i++ {
			l.Error(context.Background()).Logs("late")
		}
		close(done)
	}()
	<-done
}
