package queue

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStoreForTests(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "enrich.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnqueueAndBatch(t *testing.T) {
	store := openStoreForTests(t)

	require.NoError(t, store.Enqueue(Job{TaskID: "t1", Text: "Buy milk"}))
	require.NoError(t, store.Enqueue(Job{TaskID: "t2", Text: "Walk dog"}))

	jobs, err := store.Batch(10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "t1", jobs[0].TaskID)
	assert.Equal(t, "t2", jobs[1].TaskID)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestBatchRespectsLimit(t *testing.T) {
	store := openStoreForTests(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Enqueue(Job{TaskID: "t", Text: "x"}))
	}

	jobs, err := store.Batch(3)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestRemoveDeletesJob(t *testing.T) {
	store := openStoreForTests(t)

	require.NoError(t, store.Enqueue(Job{TaskID: "t1", Text: "Buy milk"}))
	jobs, err := store.Batch(1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, store.Remove(jobs[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRequeueMovesJobBehindNewerArrivals(t *testing.T) {
	store := openStoreForTests(t)

	require.NoError(t, store.Enqueue(Job{TaskID: "first", Text: "a", Timestamp: time.Now().Add(-time.Minute)}))
	require.NoError(t, store.Enqueue(Job{TaskID: "second", Text: "b"}))

	jobs, err := store.Batch(10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "first", jobs[0].TaskID)

	require.NoError(t, store.Remove(jobs[0]))
	require.NoError(t, store.Requeue(jobs[0]))

	jobs, err = store.Batch(10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "second", jobs[0].TaskID)
	assert.Equal(t, "first", jobs[1].TaskID)
}

func TestJobsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enrich.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(Job{TaskID: "t1", Text: "Buy milk"}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	jobs, err := reopened.Batch(10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "t1", jobs[0].TaskID)
	assert.Equal(t, "Buy milk", jobs[0].Text)
}
