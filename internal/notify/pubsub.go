package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSub publishes job events to a Google Cloud Pub/Sub topic.
type PubSub struct {
	topic *pubsub.Topic
}

// NewPubSub creates a publisher for the given project and topic. The topic
// must already exist; we fail fast rather than publish into the void.
func NewPubSub(ctx context.Context, client *pubsub.Client, topicID string) (*PubSub, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client is required")
	}
	if topicID == "" {
		return nil, fmt.Errorf("topic id is required")
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", topicID, err)
	}
	if !exists {
		return nil, fmt.Errorf("pubsub topic %s does not exist", topicID)
	}
	return &PubSub{topic: topic}, nil
}

// Publish marshals the payload to JSON and publishes it.
func (p *PubSub) Publish(ctx context.Context, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event payload: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{Data: data})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish event: %w", err)
	}
	return id, nil
}

// Stop flushes pending messages. Call during shutdown.
func (p *PubSub) Stop() {
	p.topic.Stop()
}
