package websocket

import (
	"context"
	"encoding/json"

	"goride-ledger/pkg/cache"
	"goride-ledger/pkg/logger"
)

// Relay fans messages out to every replica through a redis channel. Each
// replica delivers what it receives to its own hub. Without redis the relay
// delivers straight to the local hub.
type Relay struct {
	hub     *Hub
	cache   *cache.RedisCache
	channel string
	logger  *logger.Logger
}

func NewRelay(hub *Hub, redisCache *cache.RedisCache, channel string, log *logger.Logger) *Relay {
	return &Relay{
		hub:     hub,
		cache:   redisCache,
		channel: channel,
		logger:  log,
	}
}

func (r *Relay) Broadcast(ctx context.Context, message Message) error {
	if message.Timestamp == 0 {
		message.Timestamp = getCurrentTimestamp()
	}
	if r.cache == nil {
		r.hub.Deliver(message)
		return nil
	}
	return r.cache.Publish(ctx, r.channel, message)
}

// Run forwards channel messages to the local hub until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	if r.cache == nil {
		return
	}

	pubsub := r.cache.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var message Message
			if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
				r.logger.WithError(err).Warn("Dropping malformed relay message")
				continue
			}
			r.hub.Deliver(message)
		}
	}
}
