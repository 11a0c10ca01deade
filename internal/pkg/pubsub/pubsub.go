package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
)

// Publishable is anything that knows which topic it belongs to.
type Publishable interface {
	GetEventTopicName() string
}

// Client wraps one GCP pubsub connection for the life of the process.
type Client struct {
	ctx    context.Context
	client *pubsub.Client
}

func NewClient(ctx context.Context, projectId string) (*Client, error) {
	if projectId == "" {
		return nil, fmt.Errorf("pub sub missing projectID to initialize")
	}
	client, err := pubsub.NewClient(ctx, projectId)
	if err != nil {
		return nil, fmt.Errorf("initializing pub sub connection: %w", err)
	}
	log.Info().Str("projectId", projectId).Msg("Successful pubsub init")
	return &Client{ctx: ctx, client: client}, nil
}

// Subscribe blocks receiving messages until the client context ends.
func (c *Client) Subscribe(subscriptionHandler SubscriptionHandler) {
	sub := c.client.Subscription(subscriptionHandler.SubscriptionId)
	err := sub.Receive(c.ctx, subscriptionHandler.Handler)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Subscriber error for sub id %s", subscriptionHandler.SubscriptionId))
	}
}

func (c *Client) Publish(message Publishable) {
	t := c.getTopic(message.GetEventTopicName())
	if t == nil {
		return
	}
	defer t.Stop()

	result := t.Publish(c.ctx, &pubsub.Message{Data: encodeMessage(message)})

	go func(res *pubsub.PublishResult) {
		_, err := res.Get(c.ctx)
		if err != nil {
			log.Warn().Err(err).Msg(fmt.Sprintf("Failed to publish message for %s", message.GetEventTopicName()))
		}
	}(result)
}

func (c *Client) Close() {
	if err := c.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing pubsub client")
	}
}

func (c *Client) getTopic(topicName string) *pubsub.Topic {
	t := c.client.Topic(topicName)
	exists, err := t.Exists(c.ctx)
	if err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Cant check topic %s", topicName))
		return t
	}
	if exists {
		return t
	}

	log.Info().Msg(fmt.Sprintf("Topic %s does not exist. Creating new", topicName))
	nt, err := c.client.CreateTopic(c.ctx, topicName)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Cant create topic %s", topicName))
		return nil
	}
	return nt
}

func encodeMessage(message any) []byte {
	switch m := message.(type) {
	case string:
		return []byte(m)
	default:
		bytes, _ := json.Marshal(message)
		return bytes
	}
}
