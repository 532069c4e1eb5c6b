package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// LogEvents subscribes to every event topic and writes one log line per event
// until ctx is cancelled. It backs the in-process GoChannel publisher, which
// would otherwise drop events nobody listens to.
func LogEvents(ctx context.Context, subscriber message.Subscriber, topicPrefix string, logger *slog.Logger) error {
	for _, eventType := range EventTypes {
		topic := Topic(topicPrefix, eventType)
		messages, err := subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		go func(topic string, messages <-chan *message.Message) {
			for msg := range messages {
				logger.InfoContext(ctx, "Event received",
					"topic", topic,
					"event_id", msg.UUID,
					"type", msg.Metadata.Get("event_type"),
					"payload", string(msg.Payload))
				msg.Ack()
			}
		}(topic, messages)
	}
	return nil
}
