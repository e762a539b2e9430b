package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/farellandr/eventbook/internal/models"
	"gorm.io/gorm"
)

// eventOrder is the only ordering events are ever listed in. id breaks ties
// so events sharing a date and time keep insertion order.
const eventOrder = "date ASC, time ASC, id ASC"

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("create event failed", "title", event.Title, "error", err)
		return fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event created", "event_id", event.ID)
	return nil
}

func (s *Store) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

// UpdateEvent overwrites every editable column of the event, including a
// nil image_path or fee.
func (s *Store) UpdateEvent(ctx context.Context, event *models.Event) error {
	result := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
		"title":       event.Title,
		"location":    event.Location,
		"description": event.Description,
		"date":        event.Date,
		"time":        event.Time,
		"day_night":   event.DayNight,
		"fee":         event.Fee,
		"image_path":  event.ImagePath,
	})
	if result.Error != nil {
		s.log.Error("update event failed", "event_id", event.ID, "error", result.Error)
		return fmt.Errorf("update event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes the event row together with every booking that
// references it, in one transaction.
func (s *Store) DeleteEvent(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Event{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		s.log.Error("delete event failed", "event_id", id, "error", err)
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info("event deleted", "event_id", id)
	return nil
}

func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := s.db.WithContext(ctx).Order(eventOrder).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListEventsWithBookingStatus lists every event flagged with whether userID
// holds a booking for it. A nil userID is an anonymous caller: nothing is
// booked.
func (s *Store) ListEventsWithBookingStatus(ctx context.Context, userID *uint) ([]models.EventWithStatus, error) {
	if userID == nil {
		events, err := s.ListEvents(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.EventWithStatus, 0, len(events))
		for _, e := range events {
			out = append(out, models.EventWithStatus{Event: e})
		}
		return out, nil
	}

	var rows []models.EventWithStatus
	err := s.db.WithContext(ctx).
		Table("event AS e").
		Select("e.*, CASE WHEN b.id IS NOT NULL THEN 1 ELSE 0 END AS is_booked").
		Joins("LEFT JOIN booking b ON b.event_id = e.id AND b.user_id = ?", *userID).
		Order("e.date ASC, e.time ASC, e.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list events with booking status: %w", err)
	}
	if rows == nil {
		rows = []models.EventWithStatus{}
	}
	return rows, nil
}
