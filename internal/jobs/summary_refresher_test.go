package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/pkg/model"
)

type mockCounter struct {
	counts    map[model.EntityType]int
	countErr  error
	cached    any
	cachedKey string
	cachedTTL time.Duration
}

func (m *mockCounter) CountPending(ctx context.Context) (map[model.EntityType]int, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	return m.counts, nil
}

func (m *mockCounter) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.cachedKey = key
	m.cached = value
	m.cachedTTL = ttl
	return nil
}

type mockPublisher struct {
	subjects []string
	payloads []any
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, payload any) error {
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, payload)
	return nil
}

func TestRunOnce_CachesAndPublishes(t *testing.T) {
	counter := &mockCounter{
		counts: map[model.EntityType]int{
			model.EntityProduct:       3,
			model.EntityChangeRequest: 1,
		},
	}
	pub := &mockPublisher{}

	r := NewSummaryRefresher(zap.NewNop(), counter, pub, time.Minute)
	r.runOnce(context.Background())

	assert.Equal(t, "pending:summary", counter.cachedKey)
	assert.Equal(t, counter.counts, counter.cached)
	assert.Equal(t, 2*time.Minute, counter.cachedTTL)

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "evt.approval.pending_summary.v1", pub.subjects[0])
}

func TestRunOnce_CountFailureSkipsPublish(t *testing.T) {
	counter := &mockCounter{countErr: errors.New("pg down")}
	pub := &mockPublisher{}

	r := NewSummaryRefresher(zap.NewNop(), counter, pub, time.Minute)
	r.runOnce(context.Background())

	assert.Empty(t, pub.subjects)
	assert.Nil(t, counter.cached)
}

func TestRunOnce_NilPublisher(t *testing.T) {
	counter := &mockCounter{counts: map[model.EntityType]int{model.EntityAsset: 2}}

	r := NewSummaryRefresher(zap.NewNop(), counter, nil, time.Minute)
	r.runOnce(context.Background())

	assert.Equal(t, "pending:summary", counter.cachedKey)
}

func TestStartStop(t *testing.T) {
	counter := &mockCounter{counts: map[model.EntityType]int{}}
	r := NewSummaryRefresher(zap.NewNop(), counter, nil, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	r.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
