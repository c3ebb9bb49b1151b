package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type fakeBroker struct {
	mu        sync.Mutex
	published map[string][][]byte
	fail      bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][][]byte)}
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("broker unavailable")
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.published[channel] = append(b.published[channel], data)
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *fakeBroker) Close() error { return nil }

func newProcessor(t *testing.T, broker *fakeBroker, repo *memory.OutboxRepository) *OutboxProcessor {
	t.Helper()
	quiet := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:       10,
		PollInterval:    time.Millisecond,
		RetryAttempts:   2,
		RetryDelay:      time.Millisecond,
		CleanupInterval: time.Minute,
		RetentionPeriod: time.Millisecond,
	}, quiet, metrics.New("test"))
}

func TestProcessEvents_PublishesAndMarksProcessed(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := newFakeBroker()
	ctx := context.Background()

	payload, _ := json.Marshal(model.AppointmentEvent{PatientName: "John Carter"})
	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   payload,
	}))

	p := newProcessor(t, broker, repo)
	require.NoError(t, p.ProcessEvents(ctx))

	assert.Len(t, broker.published[model.EventAppointmentBooked], 1)

	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusProcessed, events[0].Status)
	assert.NotNil(t, events[0].ProcessedAt)
}

func TestProcessEvents_BrokerFailureMarksFailed(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := newFakeBroker()
	broker.fail = true
	ctx := context.Background()

	payload, _ := json.Marshal(model.AppointmentEvent{PatientName: "John Carter"})
	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   payload,
	}))

	p := newProcessor(t, broker, repo)
	require.NoError(t, p.ProcessEvents(ctx))

	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusFailed, events[0].Status)
	require.NotNil(t, events[0].ErrorMessage)
	assert.Contains(t, *events[0].ErrorMessage, "broker unavailable")
}

func TestPruneProcessed_DeletesOldProcessedEvents(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := newFakeBroker()
	ctx := context.Background()

	payload, _ := json.Marshal(model.AppointmentEvent{PatientName: "John Carter"})
	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   payload,
	}))

	p := newProcessor(t, broker, repo)
	require.NoError(t, p.ProcessEvents(ctx))

	// Let the processed event age past the retention period.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, p.PruneProcessed(ctx))

	assert.Empty(t, repo.Events())
}

func TestPruneProcessed_KeepsPendingEvents(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := newFakeBroker()
	ctx := context.Background()

	payload, _ := json.Marshal(model.AppointmentEvent{PatientName: "John Carter"})
	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   payload,
	}))

	p := newProcessor(t, broker, repo)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, p.PruneProcessed(ctx))

	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusPending, events[0].Status)
}

func TestProcessEvents_ProcessedEventsNotRepublished(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := newFakeBroker()
	ctx := context.Background()

	payload, _ := json.Marshal(model.AppointmentEvent{PatientName: "John Carter"})
	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   payload,
	}))

	p := newProcessor(t, broker, repo)
	require.NoError(t, p.ProcessEvents(ctx))
	require.NoError(t, p.ProcessEvents(ctx))

	assert.Len(t, broker.published[model.EventAppointmentBooked], 1)
}
