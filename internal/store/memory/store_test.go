package memory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/seconds-app/courier-bridge/internal/store/memory"
	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(reference, provider, providerJobID string) *courier.Job {
	return &courier.Job{
		ID:        "id-" + reference,
		Reference: reference,
		Status:    courier.StatusNew,
		Selected: courier.SelectedConfiguration{
			ProviderID:    provider,
			ProviderJobID: providerJobID,
		},
	}
}

func TestStore_CreateAndFindByReference(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, newJob("REF1", "gophr", "GPH-1")))

	job, err := store.FindJobByReference(ctx, "REF1")
	require.NoError(t, err)
	assert.Equal(t, "REF1", job.Reference)

	_, err = store.FindJobByReference(ctx, "REF2")
	assert.True(t, errors.Is(err, courier.ErrJobNotFound))
}

func TestStore_CreateDuplicateReference(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, newJob("REF1", "gophr", "GPH-1")))
	assert.Error(t, store.CreateJob(ctx, newJob("REF1", "gophr", "GPH-2")))
}

func TestStore_FindByProviderID(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, newJob("REF1", "street_stream", "SS-9001")))

	job, err := store.FindJobByProviderID(ctx, "street_stream", "SS-9001")
	require.NoError(t, err)
	assert.Equal(t, "REF1", job.Reference)

	_, err = store.FindJobByProviderID(ctx, "gophr", "SS-9001")
	assert.True(t, errors.Is(err, courier.ErrJobNotFound), "the lookup key is scoped per provider")
}

func TestStore_ReadsAreCopies(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, newJob("REF1", "gophr", "GPH-1")))

	job, err := store.FindJobByReference(ctx, "REF1")
	require.NoError(t, err)
	job.Status = courier.StatusCancelled

	again, err := store.FindJobByReference(ctx, "REF1")
	require.NoError(t, err)
	assert.Equal(t, courier.StatusNew, again.Status, "mutating a returned job must not touch the stored one")
}

func TestStore_UpdateJob(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, newJob("REF1", "gophr", "GPH-1")))

	job, err := store.FindJobByReference(ctx, "REF1")
	require.NoError(t, err)
	job.Status = courier.StatusEnRoute
	require.NoError(t, store.UpdateJob(ctx, job))

	updated, err := store.FindJobByReference(ctx, "REF1")
	require.NoError(t, err)
	assert.Equal(t, courier.StatusEnRoute, updated.Status)

	err = store.UpdateJob(ctx, newJob("REF-UNKNOWN", "gophr", "GPH-9"))
	assert.True(t, errors.Is(err, courier.ErrJobNotFound))
}

func TestStore_NextOrderNumber(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	first, err := store.NextOrderNumber(ctx)
	require.NoError(t, err)
	second, err := store.NextOrderNumber(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestStore_MarkSubmissionAttempt(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	first, err := store.MarkSubmissionAttempt(ctx, "REF1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.MarkSubmissionAttempt(ctx, "REF1")
	require.NoError(t, err)
	assert.False(t, second)
}

func TestStore_FinalizeIfNotAlready(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.FinalizeIfNotAlready(ctx, "REF1")
	assert.True(t, errors.Is(err, courier.ErrJobNotFound))

	require.NoError(t, store.CreateJob(ctx, newJob("REF1", "gophr", "GPH-1")))

	first, err := store.FinalizeIfNotAlready(ctx, "REF1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.FinalizeIfNotAlready(ctx, "REF1")
	require.NoError(t, err)
	assert.False(t, second)
}

func TestStore_FinalizeConcurrentSingleWinner(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateJob(ctx, newJob("REF1", "gophr", "GPH-1")))

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := store.FinalizeIfNotAlready(ctx, "REF1")
			if err == nil && first {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
