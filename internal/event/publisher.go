package event

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// Lifecycle routing keys published on the topic exchange.
const (
	SessionCreated   = "assessment.session.created"
	SessionFailed    = "assessment.session.failed"
	SessionCompleted = "assessment.session.completed"
	SectionReady     = "assessment.section.ready"
	SessionReady     = "assessment.session.ready"
)

type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *EventPublisher) Publish(routingKey string, payload interface{}) error {
	event := map[string]interface{}{
		"type":      routingKey,
		"payload":   payload,
		"timestamp": time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.channel.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// PublishSessionEvent is fire-and-forget: lifecycle events must never block
// or fail a session transition. Safe on a nil publisher.
func (p *EventPublisher) PublishSessionEvent(routingKey, sessionID, userID string) {
	if p == nil {
		return
	}
	payload := map[string]string{"session_id": sessionID, "user_id": userID}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Printf("Failed to publish %s for session %s: %v", routingKey, sessionID, err)
	}
}

func (p *EventPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
