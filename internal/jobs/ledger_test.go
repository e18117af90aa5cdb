package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreline/loreline/internal/models"
	"github.com/loreline/loreline/internal/store"
)

func newTestLedger(t *testing.T) (*Ledger, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewLedger(mem, slog.New(slog.DiscardHandler)), mem
}

func TestCreateStartsPending(t *testing.T) {
	ledger, _ := newTestLedger(t)

	job, err := ledger.Create(context.Background(), "owner-1", "https://example.com/talk")
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, 0, job.Progress)
	assert.Equal(t, "queued", job.Stage)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestLifecycleTransitions(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	job, err := ledger.Create(ctx, "owner-1", "ref")
	require.NoError(t, err)

	require.NoError(t, ledger.Advance(ctx, job.ID, 25, "extracting"))
	got, err := ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, got.Status)
	assert.Equal(t, 25, got.Progress)
	assert.Equal(t, "extracting", got.Stage)

	require.NoError(t, ledger.Complete(ctx, job.ID, []byte(`{"title":"Talk"}`)))
	got, err = ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusComplete, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.JSONEq(t, `{"title":"Talk"}`, string(got.Result))
}

func TestTerminalJobsAreImmutable(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	job, err := ledger.Create(ctx, "owner-1", "ref")
	require.NoError(t, err)
	require.NoError(t, ledger.Fail(ctx, job.ID, "extraction failed"))

	err = ledger.Advance(ctx, job.ID, 50, "synthesizing")
	assert.ErrorIs(t, err, ErrTerminal)
	err = ledger.Complete(ctx, job.ID, nil)
	assert.ErrorIs(t, err, ErrTerminal)
	err = ledger.Fail(ctx, job.ID, "again")
	assert.ErrorIs(t, err, ErrTerminal)

	got, err := ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Equal(t, "extraction failed", got.Error)
}

func TestGetUnknownJob(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSweepRemovesOldJobs(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return base }
	old, err := ledger.Create(ctx, "owner-1", "old-ref")
	require.NoError(t, err)
	require.NoError(t, ledger.Complete(ctx, old.ID, nil))

	ledger.now = func() time.Time { return base.Add(48 * time.Hour) }
	fresh, err := ledger.Create(ctx, "owner-1", "fresh-ref")
	require.NoError(t, err)

	n, err := ledger.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = ledger.Get(ctx, old.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = ledger.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestSweepRemovesStuckProcessingJobs(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return base }
	stuck, err := ledger.Create(ctx, "owner-1", "ref")
	require.NoError(t, err)
	require.NoError(t, ledger.Advance(ctx, stuck.ID, 50, "synthesizing"))

	ledger.now = func() time.Time { return base.Add(72 * time.Hour) }
	n, err := ledger.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
