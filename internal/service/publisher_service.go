package service

import (
	"context"
	"encoding/json"
	"fmt"

	"turingtest-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const DomainEventsTopic = "domain_events"

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	publisher message.Publisher
	topicName string
}

func NewPublisherService(publisher message.Publisher, topicName string) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(events.BaseEvent{
		Id:         event.EventId(),
		Type:       event.EventType(),
		User:       event.UserId(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}

	id := event.EventId()
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, payload)
	msg.Metadata.Set("event_type", event.EventType())
	msg.SetContext(ctx)

	return p.publisher.Publish(p.topicName, msg)
}

// noopPublisher drops events; used when no bus is configured.
type noopPublisher struct{}

func NewNoopPublisherService() IPublisherService {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, events.Event) error {
	return nil
}
