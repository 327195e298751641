// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"turingtest-be/internal/pkg/logger"
	"turingtest-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder receives every domain event taken off the bus. The
// websocket hub and the NATS publisher both satisfy it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarders map[string]EventForwarder
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarders map[string]EventForwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarders: forwarders,
		logger:     log,
	}
}

// Consume subscribes and processes messages on a background goroutine until
// ctx ends.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. Forwarding is best effort; a failing sink is
// logged and does not block the others.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("EVENTS", "Failed to unmarshal domain event", map[string]interface{}{
			"message_uuid": msg.UUID,
			"error":        err,
		})
		return
	}

	for name, forwarder := range cs.forwarders {
		if err := forwarder.Publish(ctx, event); err != nil {
			cs.logger.Warn("EVENTS", "Failed to forward domain event", map[string]interface{}{
				"event_id":   event.EventId(),
				"event_type": event.EventType(),
				"forwarder":  name,
				"error":      err.Error(),
			})
		}
	}
}
