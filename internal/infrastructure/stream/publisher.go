package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/owner"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

// OwnerPublisher publishes new-owner events to the owner stream. The
// consumer side of the same stream picks them up for reconciliation, so
// other services can hand owners to this one asynchronously.
type OwnerPublisher struct {
	stream string
	client *redis.Client
}

var _ ports.OwnerPublisher = (*OwnerPublisher)(nil)

func NewOwnerPublisher(stream string, client *redis.Client) *OwnerPublisher {
	return &OwnerPublisher{stream: stream, client: client}
}

func (p *OwnerPublisher) PublishNewOwner(ctx context.Context, event *owner.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return apperror.Unexpected(fmt.Errorf("failed to encode owner event: %w", err))
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"key":     fmt.Sprintf("%s:%d", event.Doc, time.Now().UnixMilli()),
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return apperror.Unexpected(fmt.Errorf("failed to publish owner event: %w", err))
	}

	return nil
}
