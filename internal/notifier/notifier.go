// Package notifier fans alert lifecycle events out to downstream consumers.
package notifier

import (
	"context"
	"errors"
	"time"

	"climate-sentinel/internal/models"
)

// EventType alert lifecycle transition
type EventType string

const (
	EventRaised  EventType = "alert.raised"
	EventCleared EventType = "alert.cleared"
)

// AlertEvent payload delivered to every sink
type AlertEvent struct {
	Type      EventType    `json:"type"`
	Alert     models.Alert `json:"alert"`
	EmittedAt time.Time    `json:"emittedAt"`
}

// NewAlertEvent stamps an event
func NewAlertEvent(t EventType, alert models.Alert) AlertEvent {
	return AlertEvent{Type: t, Alert: alert, EmittedAt: time.Now().UTC()}
}

// AlertNotifier receives created and deactivated alerts
type AlertNotifier interface {
	AlertRaised(ctx context.Context, alert models.Alert) error
	AlertCleared(ctx context.Context, alert models.Alert) error
}

// Nop discards every event
type Nop struct{}

func (Nop) AlertRaised(context.Context, models.Alert) error  { return nil }
func (Nop) AlertCleared(context.Context, models.Alert) error { return nil }

// Multi delivers to every notifier and joins their errors
type Multi []AlertNotifier

func (m Multi) AlertRaised(ctx context.Context, alert models.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.AlertRaised(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) AlertCleared(ctx context.Context, alert models.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.AlertCleared(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
