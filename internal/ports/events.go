package ports

import "context"

// EventPublisher delivers outbox payloads to the configured transport.
// Partition key keeps per-entity ordering when the transport supports it.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}
