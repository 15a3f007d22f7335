// Package messaging carries domain events out of the command handlers.
// The current transport is the structured log; events are advisory and
// every mutation has already committed by the time one is published.
package messaging

import (
	"context"

	"capsulehub/domain/events"

	"go.uber.org/zap"
)

// LogPublisher writes domain events to the structured log
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a new log-backed publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish sends a single event
func (p *LogPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Time("occurredAt", event.GetTimestamp()),
	)
	return nil
}
