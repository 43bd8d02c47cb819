package services

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/account-service/internal/models"
	"github.com/isdelr/account-service/internal/store"
	"github.com/rs/zerolog/log"
)

// EventsCollection holds the account audit log.
const EventsCollection = "events"

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message, userID string) error
	AuthFailed(ctx context.Context, kind, username string)
}

// EventService records account events in the document store.
type EventService struct {
	store store.Store
	now   func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(s store.Store) *EventService {
	return &EventService{store: s, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message, userID string) error {
	event := models.Event{
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.store.InsertOne(ctx, EventsCollection, event); err != nil {
		return fmt.Errorf("record %s event: %w", eventType, err)
	}
	return nil
}

// AuthFailed records a rejected authentication attempt. Recording errors are
// logged and otherwise ignored.
func (s *EventService) AuthFailed(ctx context.Context, kind, username string) {
	msg := "authentication failed: " + kind
	if username != "" {
		msg += " for " + username
	}
	if err := s.CreateEvent(ctx, models.EventAuthFailed, "warn", msg, ""); err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("Failed to record auth failure event")
	}
}
