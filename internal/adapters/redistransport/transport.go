// Package redistransport publishes room events over Redis pub/sub. The
// socket gateway subscribes to the room channels and fans out to its live
// connections; this process only ever publishes.
package redistransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
)

// DefaultChannelPrefix namespaces the pub/sub channels carrying room events.
const DefaultChannelPrefix = "rooms:"

// Envelope is the wire format published per event.
type Envelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emittedAt"`
}

// Transport is a Redis-backed implementation of core.Transport.
type Transport struct {
	client redis.UniversalClient
	prefix string
}

var _ core.Transport = (*Transport)(nil)

// New creates a Transport with the default channel prefix.
func New(client redis.UniversalClient) (*Transport, error) {
	return NewWithPrefix(client, DefaultChannelPrefix)
}

// NewWithPrefix creates a Transport with a custom channel prefix.
func NewWithPrefix(client redis.UniversalClient, prefix string) (*Transport, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &Transport{client: client, prefix: prefix}, nil
}

// Publish sends one event envelope to the room's channel. A room with no
// subscribers is not an error; PUBLISH simply reaches zero receivers.
func (t *Transport) Publish(ctx context.Context, room realtime.Room, event string, payload any) error {
	data, err := json.Marshal(Envelope{
		Event:     event,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	if err := t.client.Publish(ctx, t.prefix+room.String(), data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", room, err)
	}
	return nil
}
