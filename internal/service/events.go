package service

import "go-construction-inventory/internal/ws"

// EventPublisher pushes realtime events to connected clients. ws.Hub implements it.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

const (
	eventInventoryUpdate  = ws.EventInventoryUpdate
	eventNotification     = ws.EventNotification
	eventUserStatusUpdate = ws.EventUserStatusUpdate
)

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
