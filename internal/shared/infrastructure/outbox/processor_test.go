package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/shared/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
	"github.com/Gzeu/tarot-reading-app/pkg/observability"
)

// mockRepository is a test double for outbox.Repository.
type mockRepository struct {
	mu           sync.Mutex
	messages     []*outbox.Message
	publishedIDs []int64
	failedIDs    []int64
}

func (r *mockRepository) Save(ctx context.Context, msg *outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = int64(len(r.messages) + 1)
	r.messages = append(r.messages, msg)
	return nil
}

func (r *mockRepository) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *mockRepository) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*outbox.Message
	now := time.Now()
	for _, msg := range r.messages {
		if msg.PublishedAt == nil {
			if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
				continue
			}
			result = append(result, msg)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *mockRepository) MarkPublished(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishedIDs = append(r.publishedIDs, id)
	for _, msg := range r.messages {
		if msg.ID == id {
			now := time.Now()
			msg.PublishedAt = &now
		}
	}
	return nil
}

func (r *mockRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedIDs = append(r.failedIDs, id)
	for _, msg := range r.messages {
		if msg.ID == id {
			msg.RetryCount++
			msg.LastError = &errMsg
			msg.NextRetryAt = &nextRetryAt
		}
	}
	return nil
}

func (r *mockRepository) DeleteOld(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

// mockPublisher records published routing keys and can be told to fail.
type mockPublisher struct {
	mu        sync.Mutex
	published []string
	failWith  error
}

func (p *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, routingKey)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func newTestMessage(t *testing.T, routingKey string) *outbox.Message {
	t.Helper()
	event := domain.NewBaseEvent(uuid.New(), "reading", routingKey)
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	return msg
}

func TestProcessor_ProcessOnce_PublishesAndMarks(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	metrics := observability.NewInMemoryMetrics()

	require.NoError(t, repo.Save(context.Background(), newTestMessage(t, "readings.reading.generated")))
	require.NoError(t, repo.Save(context.Background(), newTestMessage(t, "billing.subscription.activated")))

	p := outbox.NewProcessor(repo, pub, outbox.DefaultProcessorConfig(), nil, metrics)
	require.NoError(t, p.ProcessOnce(context.Background()))

	assert.Equal(t, []string{"readings.reading.generated", "billing.subscription.activated"}, pub.published)
	assert.Equal(t, []int64{1, 2}, repo.publishedIDs)
	assert.Equal(t, int64(2), metrics.CounterValue("outbox.published"))
}

func TestProcessor_ProcessOnce_FailureSchedulesRetry(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{failWith: errors.New("broker down")}
	metrics := observability.NewInMemoryMetrics()

	require.NoError(t, repo.Save(context.Background(), newTestMessage(t, "readings.reading.generated")))

	p := outbox.NewProcessor(repo, pub, outbox.DefaultProcessorConfig(), nil, metrics)
	require.NoError(t, p.ProcessOnce(context.Background()))

	assert.Empty(t, repo.publishedIDs)
	assert.Equal(t, []int64{1}, repo.failedIDs)
	assert.Equal(t, 1, repo.messages[0].RetryCount)
	require.NotNil(t, repo.messages[0].LastError)
	assert.Equal(t, "broker down", *repo.messages[0].LastError)
	assert.NotNil(t, repo.messages[0].NextRetryAt)
	assert.Equal(t, int64(1), metrics.CounterValue("outbox.publish_failed"))
}

func TestProcessor_ProcessOnce_SkipsMessagesWaitingForRetry(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}

	msg := newTestMessage(t, "readings.reading.generated")
	require.NoError(t, repo.Save(context.Background(), msg))
	future := time.Now().Add(time.Hour)
	msg.NextRetryAt = &future

	p := outbox.NewProcessor(repo, pub, outbox.DefaultProcessorConfig(), nil, nil)
	require.NoError(t, p.ProcessOnce(context.Background()))

	assert.Empty(t, pub.published)
}

func TestProcessor_StartStop(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}

	cfg := outbox.DefaultProcessorConfig()
	cfg.PollInterval = 5 * time.Millisecond

	p := outbox.NewProcessor(repo, pub, cfg, nil, nil)
	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())

	require.NoError(t, repo.Save(context.Background(), newTestMessage(t, "readings.reading.generated")))

	assert.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.published) == 1
	}, time.Second, 10*time.Millisecond)

	p.Stop()
	assert.False(t, p.IsRunning())
}

func TestMessage_NewMessageFromEvent(t *testing.T) {
	aggregateID := uuid.New()
	event := domain.NewBaseEvent(aggregateID, "subscription", "billing.subscription.canceled")

	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "subscription", msg.EventType)
	assert.Equal(t, "billing.subscription.canceled", msg.RoutingKey)
	assert.False(t, msg.IsPublished())
	assert.True(t, msg.CanRetry(5))
	msg.RetryCount = 5
	assert.False(t, msg.CanRetry(5))
}
