package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/ports"
)

type stubOutbox struct {
	mu           sync.Mutex
	pending      []ports.OutboxRecord
	published    []uuid.UUID
	failed       []uuid.UUID
	deadLettered []uuid.UUID
	claimTokens  map[uuid.UUID]string
}

func (s *stubOutbox) Enqueue(context.Context, ports.OutboxEvent) error { return nil }

func (s *stubOutbox) ClaimUnpublished(_ context.Context, limit int, claimToken string, _ time.Time) ([]ports.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimTokens == nil {
		s.claimTokens = map[uuid.UUID]string{}
	}
	n := len(s.pending)
	if n > limit {
		n = limit
	}
	out := make([]ports.OutboxRecord, n)
	copy(out, s.pending[:n])
	for _, rec := range out {
		s.claimTokens[rec.OutboxID] = claimToken
	}
	s.pending = s.pending[n:]
	return out, nil
}

func (s *stubOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimTokens[outboxID] != claimToken {
		return errors.New("claim token mismatch")
	}
	s.published = append(s.published, outboxID)
	return nil
}

func (s *stubOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimTokens[outboxID] != claimToken {
		return errors.New("claim token mismatch")
	}
	s.failed = append(s.failed, outboxID)
	return nil
}

func (s *stubOutbox) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimTokens[outboxID] != claimToken {
		return errors.New("claim token mismatch")
	}
	s.deadLettered = append(s.deadLettered, outboxID)
	return nil
}

type stubPublisher struct {
	mu        sync.Mutex
	delivered []string
	failTypes map[string]bool
}

func (s *stubPublisher) Publish(_ context.Context, eventType string, _ []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTypes[eventType] {
		return errors.New("broker unavailable")
	}
	s.delivered = append(s.delivered, eventType)
	return nil
}

func record(eventType string, retryCount int) ports.OutboxRecord {
	return ports.OutboxRecord{
		OutboxID:   uuid.New(),
		EventType:  eventType,
		Payload:    []byte(`{}`),
		RetryCount: retryCount,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessOncePublishesClaimedBatch(t *testing.T) {
	t.Parallel()

	outbox := &stubOutbox{pending: []ports.OutboxRecord{
		record("note.created", 0),
		record("comment.created", 0),
	}}
	publisher := &stubPublisher{}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, 3)

	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce failed: %v", err)
	}
	if len(publisher.delivered) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", publisher.delivered)
	}
	if len(outbox.published) != 2 || len(outbox.failed) != 0 {
		t.Fatalf("expected both records marked published, got published=%d failed=%d", len(outbox.published), len(outbox.failed))
	}
}

func TestProcessOnceMarksFailureForRetry(t *testing.T) {
	t.Parallel()

	outbox := &stubOutbox{pending: []ports.OutboxRecord{record("note.created", 0)}}
	publisher := &stubPublisher{failTypes: map[string]bool{"note.created": true}}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, 3)

	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce failed: %v", err)
	}
	if len(outbox.failed) != 1 || len(outbox.deadLettered) != 0 {
		t.Fatalf("first failure should retry, got failed=%d dead=%d", len(outbox.failed), len(outbox.deadLettered))
	}
}

func TestProcessOnceDeadLettersAtMaxRetries(t *testing.T) {
	t.Parallel()

	// RetryCount 2 with maxRetries 3: this attempt is the last one.
	outbox := &stubOutbox{pending: []ports.OutboxRecord{record("note.created", 2)}}
	publisher := &stubPublisher{failTypes: map[string]bool{"note.created": true}}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, 3)

	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce failed: %v", err)
	}
	if len(outbox.deadLettered) != 1 || len(outbox.failed) != 0 {
		t.Fatalf("exhausted record should dead-letter, got failed=%d dead=%d", len(outbox.failed), len(outbox.deadLettered))
	}
}

func TestProcessOnceOneBadRecordDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	outbox := &stubOutbox{pending: []ports.OutboxRecord{
		record("note.created", 0),
		record("comment.created", 0),
	}}
	publisher := &stubPublisher{failTypes: map[string]bool{"note.created": true}}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, 3)

	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce failed: %v", err)
	}
	if len(outbox.published) != 1 || len(outbox.failed) != 1 {
		t.Fatalf("expected one publish and one retry, got published=%d failed=%d", len(outbox.published), len(outbox.failed))
	}
	if len(publisher.delivered) != 1 || publisher.delivered[0] != "comment.created" {
		t.Fatalf("healthy record should still deliver, got %v", publisher.delivered)
	}
}

func TestProcessOnceRespectsBatchSize(t *testing.T) {
	t.Parallel()

	outbox := &stubOutbox{pending: []ports.OutboxRecord{
		record("note.created", 0),
		record("note.created", 0),
		record("note.created", 0),
	}}
	publisher := &stubPublisher{}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 2, 3)

	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce failed: %v", err)
	}
	if len(outbox.published) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(outbox.published))
	}
	outbox.mu.Lock()
	remaining := len(outbox.pending)
	outbox.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("expected 1 record left for the next tick, got %d", remaining)
	}
}
