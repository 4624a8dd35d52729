package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donelist/backend/internal/config"
	"github.com/donelist/backend/internal/infrastructure/queue"
	"github.com/donelist/backend/repository"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

// embeddingSink records SetEmbedding patches; every other TaskRepository
// method is unused by the enricher.
type embeddingSink struct {
	repository.TaskRepository
	patches map[string][]float32
}

func newEmbeddingSink() *embeddingSink {
	return &embeddingSink{patches: make(map[string][]float32)}
}

func (s *embeddingSink) SetEmbedding(_ context.Context, id string, embedding []float32) error {
	s.patches[id] = embedding
	return nil
}

type offlineMonitor struct{ online bool }

func (m offlineMonitor) IsOnline() bool { return m.online }

func newEnricherForTests(t *testing.T, embedder *fakeEmbedder, sink *embeddingSink, cfg EnricherConfig) *Enricher {
	t.Helper()
	store, err := queue.Open(filepath.Join(t.TempDir(), "enrich.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewEnricher(store, nil, embedder, sink, nil, cfg)
}

func TestDrain_PatchesEmbeddingAndPurgesJob(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	sink := newEmbeddingSink()
	e := newEnricherForTests(t, embedder, sink, EnricherConfig{})

	require.NoError(t, e.EnqueueEnrichment(context.Background(), "task-1", "Buy milk"))
	require.Equal(t, 1, e.Size())

	require.NoError(t, e.Drain(context.Background()))

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, sink.patches["task-1"])
	assert.Zero(t, e.Size())
}

func TestDrain_FailedJobIsDroppedByDefault(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("api down")}
	sink := newEmbeddingSink()
	e := newEnricherForTests(t, embedder, sink, EnricherConfig{MaxAttempts: 1})

	require.NoError(t, e.EnqueueEnrichment(context.Background(), "task-1", "Buy milk"))
	require.NoError(t, e.Drain(context.Background()))

	// At-most-once: no retry, no embedding, no leftover job.
	assert.Empty(t, sink.patches)
	assert.Zero(t, e.Size())
	assert.Equal(t, 1, embedder.calls)
}

func TestDrain_RetriesWhenConfigured(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("api down")}
	sink := newEmbeddingSink()
	e := newEnricherForTests(t, embedder, sink, EnricherConfig{MaxAttempts: 2})

	require.NoError(t, e.EnqueueEnrichment(context.Background(), "task-1", "Buy milk"))

	require.NoError(t, e.Drain(context.Background()))
	assert.Equal(t, 1, e.Size())

	embedder.err = nil
	embedder.vector = []float32{1}
	require.NoError(t, e.Drain(context.Background()))
	assert.Equal(t, []float32{1}, sink.patches["task-1"])
	assert.Zero(t, e.Size())
}

func TestDrain_SkippedWhileStoreOffline(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	sink := newEmbeddingSink()

	store, err := queue.Open(filepath.Join(t.TempDir(), "enrich.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e := NewEnricher(store, offlineMonitor{online: false}, embedder, sink, nil, EnricherConfig{})

	require.NoError(t, e.EnqueueEnrichment(context.Background(), "task-1", "Buy milk"))
	require.NoError(t, e.Drain(context.Background()))

	assert.Zero(t, embedder.calls)
	assert.Equal(t, 1, e.Size())
}

func TestEnqueueEnrichment_FailsClosedWithoutStore(t *testing.T) {
	e := &Enricher{}
	err := e.EnqueueEnrichment(context.Background(), "task-1", "Buy milk")
	assert.Error(t, err)
}

func TestDigest_RunSendsOneTemplatedEmail(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	d := NewDigest(digestConfigForTests(), nil)
	d.send = func(addr, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	d.Run()

	assert.Equal(t, "localhost:2525", gotAddr)
	assert.Equal(t, "digest@donelist.dev", gotFrom)
	assert.Equal(t, []string{"someone@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Your daily task summary")
}

func TestDigest_DeliveryFailureIsSwallowed(t *testing.T) {
	d := NewDigest(digestConfigForTests(), nil)
	d.send = func(addr, from string, to []string, msg []byte) error {
		return fmt.Errorf("smtp down")
	}

	assert.NotPanics(t, d.Run)
}

func TestDigest_ScheduleIsInterpretedInUTC(t *testing.T) {
	d := NewDigest(digestConfigForTests(), nil)

	entries := d.cron.Entries()
	require.Len(t, entries, 1)

	// Regardless of the server's timezone the next run lands on the
	// configured UTC hour.
	sched, ok := entries[0].Schedule.(*cron.SpecSchedule)
	require.True(t, ok)
	assert.Equal(t, time.UTC, sched.Location)

	next := entries[0].Schedule.Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 18, next.UTC().Hour())
	assert.Equal(t, 0, next.UTC().Minute())
}

func TestDigest_InvalidScheduleIsNotRegistered(t *testing.T) {
	cfg := digestConfigForTests()
	cfg.MinuteUTC = 75

	d := NewDigest(cfg, nil)
	assert.Empty(t, d.cron.Entries())
}

func digestConfigForTests() (cfg config.DigestConfig) {
	cfg.Enabled = true
	cfg.HourUTC = 18
	cfg.SMTPAddr = "localhost:2525"
	cfg.From = "digest@donelist.dev"
	cfg.Recipient = "someone@example.com"
	return cfg
}
