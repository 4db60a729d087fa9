package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sam-nazarian/event-booking-practice/internal/queue"
	"github.com/sam-nazarian/event-booking-practice/internal/worker"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeAggregator 把每次 Recompute 丟進 channel，測試端靠它同步
type fakeAggregator struct {
	mu    sync.Mutex
	errs  []error
	calls chan primitive.ObjectID
}

func newFakeAggregator(errs ...error) *fakeAggregator {
	return &fakeAggregator{
		errs:  errs,
		calls: make(chan primitive.ObjectID, 16),
	}
}

func (f *fakeAggregator) Recompute(ctx context.Context, eventID primitive.ObjectID) error {
	f.mu.Lock()
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	f.mu.Unlock()

	f.calls <- eventID
	return err
}

func waitForCall(t *testing.T, f *fakeAggregator) primitive.ObjectID {
	t.Helper()
	select {
	case id := <-f.calls:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for recompute")
		return primitive.NilObjectID
	}
}

func assertNoCall(t *testing.T, f *fakeAggregator) {
	t.Helper()
	select {
	case id := <-f.calls:
		t.Fatalf("unexpected recompute for %s", id.Hex())
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRatingWorker_Start(t *testing.T) {
	t.Run("Success - recomputes the published event", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewRatingQueue(10)
		aggregator := newFakeAggregator()
		require.NoError(t, worker.NewRatingWorker(aggregator, q).Start(ctx))

		eventID := primitive.NewObjectID()
		require.NoError(t, q.PublishRecompute(ctx, &queue.RecomputeJob{EventID: eventID.Hex()}))

		assert.Equal(t, eventID, waitForCall(t, aggregator))
	})

	t.Run("Success - malformed job is discarded and the loop continues", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewRatingQueue(10)
		aggregator := newFakeAggregator()
		require.NoError(t, worker.NewRatingWorker(aggregator, q).Start(ctx))

		require.NoError(t, q.PublishRecompute(ctx, &queue.RecomputeJob{EventID: "not-a-hex-id"}))

		eventID := primitive.NewObjectID()
		require.NoError(t, q.PublishRecompute(ctx, &queue.RecomputeJob{EventID: eventID.Hex()}))

		assert.Equal(t, eventID, waitForCall(t, aggregator))
	})

	t.Run("Success - missing event is acked without retry", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewRatingQueue(10)
		aggregator := newFakeAggregator(apperrors.ErrEventNotFound)
		require.NoError(t, worker.NewRatingWorker(aggregator, q).Start(ctx))

		eventID := primitive.NewObjectID()
		require.NoError(t, q.PublishRecompute(ctx, &queue.RecomputeJob{EventID: eventID.Hex()}))

		assert.Equal(t, eventID, waitForCall(t, aggregator))
		assertNoCall(t, aggregator)
	})

	t.Run("Success - transient failure is retried", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewRatingQueue(10)
		aggregator := newFakeAggregator(errors.New("db unavailable"))
		require.NoError(t, worker.NewRatingWorker(aggregator, q).Start(ctx))

		eventID := primitive.NewObjectID()
		require.NoError(t, q.PublishRecompute(ctx, &queue.RecomputeJob{EventID: eventID.Hex()}))

		assert.Equal(t, eventID, waitForCall(t, aggregator))
		assert.Equal(t, eventID, waitForCall(t, aggregator))
	})
}
