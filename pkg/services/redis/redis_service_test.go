package redisservice

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(rc, log), mr
}

func TestRedisService_SummaryLock(t *testing.T) {
	s, mr := newTestService(t)
	ctx := context.Background()

	ok, val, err := s.LockSummary(ctx, "m1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, val)

	locked, err := s.IsSummaryLocked(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, locked)

	ok, other, err := s.LockSummary(ctx, "m1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, other)

	// a foreign value must not release it
	assert.Error(t, s.UnlockSummary(ctx, "m1", "not-mine"))
	assert.NoError(t, s.UnlockSummary(ctx, "m1", val))
	locked, _ = s.IsSummaryLocked(ctx, "m1")
	assert.False(t, locked)

	// expiry frees the lock as well
	ok, _, _ = s.LockSummary(ctx, "m2", time.Second)
	require.True(t, ok)
	mr.FastForward(2 * time.Second)
	ok, _, _ = s.LockSummary(ctx, "m2", time.Second)
	assert.True(t, ok)

	assert.NoError(t, s.UnlockSummary(ctx, "m3", ""))
}

func TestRedisService_CaptureUsage(t *testing.T) {
	s, _ := newTestService(t)
	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.CaptureSessionStarted("m1", "a", start))
	require.NoError(t, s.CaptureSessionStarted("m1", "b", start.Add(10*time.Second)))
	active, err := s.ActiveCaptureSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)

	used, err := s.CaptureSessionEnded("m1", "a", start.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(90), used)

	used, err = s.CaptureSessionEnded("m1", "b", start.Add(40*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(30), used)

	// unknown sessions don't count
	used, err = s.CaptureSessionEnded("m1", "c", start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)

	total, err := s.GetCaptureUsage("m1")
	require.NoError(t, err)
	assert.Equal(t, int64(120), total)

	active, _ = s.ActiveCaptureSessions()
	assert.Equal(t, int64(0), active)

	total, err = s.GetCaptureUsage("other")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRedisService_TranscriptHistory(t *testing.T) {
	s, mr := newTestService(t)

	empty, err := s.GetTranscriptHistory("m1")
	require.NoError(t, err)
	assert.Nil(t, empty)

	for i, text := range []string{"one", "two", "three"} {
		require.NoError(t, s.AddTranscriptToHistory("m1", &TranscriptChunk{TranscriptId: uint64(i + 1), OriginalText: text}, time.Hour))
	}

	chunks, err := s.GetTranscriptHistory("m1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "one", chunks[0].OriginalText)
	assert.Equal(t, "three", chunks[2].OriginalText)
	assert.True(t, mr.TTL(transcriptHistoryPrefix+"m1") > 0)

	require.NoError(t, s.DeleteTranscriptHistory("m1"))
	chunks, _ = s.GetTranscriptHistory("m1")
	assert.Empty(t, chunks)
}
