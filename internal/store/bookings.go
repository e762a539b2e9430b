package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/eventbook/internal/models"
	"gorm.io/gorm"
)

// CreateBooking records a confirmed booking of eventID by userID.
//
// The (user_id, event_id) unique index is what guarantees one booking per
// pair; the existence check inside the transaction only avoids a write on
// the common path. Two racing inserts resolve to one row and one
// ErrAlreadyBooked.
func (s *Store) CreateBooking(ctx context.Context, userID, eventID uint, bookingDate time.Time) (*models.Booking, error) {
	booking := &models.Booking{
		UserID:      userID,
		EventID:     eventID,
		BookingDate: bookingDate.UTC(),
		Status:      models.StatusConfirmed,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Event{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&models.Booking{}).
			Where("user_id = ? AND event_id = ?", userID, eventID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyBooked
		}

		return tx.Create(booking).Error
	})

	switch {
	case err == nil:
		s.log.Info("booking created", "booking_id", booking.ID, "user_id", userID, "event_id", eventID)
		return booking, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyBooked):
		return nil, err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, ErrAlreadyBooked
	default:
		s.log.Error("create booking failed", "user_id", userID, "event_id", eventID, "error", err)
		return nil, fmt.Errorf("create booking: %w", err)
	}
}

func (s *Store) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

// ListBookingsForUser returns the user's bookings joined with their events,
// in the same order events are listed.
func (s *Store) ListBookingsForUser(ctx context.Context, userID uint) ([]models.BookingDetail, error) {
	var rows []models.BookingDetail
	err := s.db.WithContext(ctx).
		Table("booking AS b").
		Select("b.*, e.title, e.location, e.date, e.time, e.day_night").
		Joins("JOIN event e ON e.id = b.event_id").
		Where("b.user_id = ?", userID).
		Order("e.date ASC, e.time ASC, e.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if rows == nil {
		rows = []models.BookingDetail{}
	}
	return rows, nil
}

func (s *Store) CountBookingsForEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}
