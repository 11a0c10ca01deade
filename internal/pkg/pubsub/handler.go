package pubsub

import (
	"context"
	"encoding/json"
	"errors"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
)

// ErrDrop acks a message that can never be handled.
var ErrDrop = errors.New("message dropped")

type SubscriptionHandler struct {
	SubscriptionId string
	Handler        func(ctx context.Context, message *pubsub.Message)
}

// JSONHandler decodes every message as T before calling handle. Messages that
// do not decode, or whose handling fails with ErrDrop, are acked; any other
// error nacks the message for redelivery.
func JSONHandler[T any](event string, handle func(ctx context.Context, payload T) error) func(context.Context, *pubsub.Message) {
	return func(ctx context.Context, message *pubsub.Message) {
		var payload T
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			log.Warn().Err(err).Str("event", event).Msg("Cannot parse message")
			message.Ack()
			return
		}

		err := handle(ctx, payload)
		switch {
		case err == nil:
			message.Ack()
		case errors.Is(err, ErrDrop):
			log.Warn().Err(err).Str("event", event).Str("id", message.ID).Msg("Dropping message")
			message.Ack()
		default:
			log.Warn().Err(err).Str("event", event).Str("id", message.ID).Msg("Handling failed, message will be redelivered")
			message.Nack()
		}
	}
}
