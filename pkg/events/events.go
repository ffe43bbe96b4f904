package events

import "go.uber.org/zap"

// Event names published by the core workflows. Payloads carry identifiers
// only; consumers re-fetch the current state rather than trusting pushed
// values.
const (
	OrderStatusChanged   = "order.status_changed"
	OrderDelivered       = "order.delivered"
	PaymentRegistered    = "commission.payment_registered"
	ClaimSubmitted       = "commission.claim_submitted"
	ClaimResolved        = "commission.claim_resolved"
	PaymentStatusChanged = "order.payment_status_changed"
)

// Publisher delivers notifications to the realtime/notification bus.
// Publishing is fire-and-forget: failures are logged by implementations and
// never surface into the caller's path.
type Publisher interface {
	Publish(event string, payload map[string]any)
}

// LogPublisher logs every event. It stands in for the realtime transport,
// which is an external collaborator.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher that writes events to the logger.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event and returns immediately.
func (p *LogPublisher) Publish(event string, payload map[string]any) {
	p.logger.Info("event published",
		zap.String("event", event),
		zap.Any("payload", payload),
	)
}

// NopPublisher discards all events. Used in tests.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(string, map[string]any) {}
