package fulfillment

import (
	"github.com/orderstack/checkout-service/pkg/config"
	"github.com/orderstack/checkout-service/pkg/enums"
)

// TopicFor resolves which topic an outbox event type is published to.
// Unrouted event types report false and are treated as non-retryable.
func TopicFor(cfg config.PubSubConfig, eventType enums.OutboxEventType) (string, bool) {
	switch eventType {
	case enums.EventOrderConfirmed:
		return cfg.FulfillmentTopic, cfg.FulfillmentTopic != ""
	default:
		return "", false
	}
}
