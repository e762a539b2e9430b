package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/farellandr/eventbook/internal/models"
	"github.com/farellandr/eventbook/internal/store"
)

const (
	MsgBooked         = "Event booked successfully!"
	MsgAlreadyBooked  = "You have already booked this event"
	MsgBookingFailed  = "Error booking event"
	MsgEventNotFound  = "Event not found"
	MsgBookingMissing = "Booking not found"
)

type BookingStore interface {
	CreateBooking(ctx context.Context, userID, eventID uint, bookingDate time.Time) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookingsForUser(ctx context.Context, userID uint) ([]models.BookingDetail, error)
}

// BookingResult is the user-facing outcome of a booking attempt.
type BookingResult struct {
	Booked  bool
	Message string
	Booking *models.Booking
}

type BookingService struct {
	bookings BookingStore
	log      *slog.Logger
}

func NewBookingService(bookings BookingStore, log *slog.Logger) *BookingService {
	if log == nil {
		log = slog.Default()
	}
	return &BookingService{bookings: bookings, log: log}
}

// Book books eventID for userID at the given time. The returned error is
// store.ErrNotFound, store.ErrAlreadyBooked or a storage fault; the result
// message is always safe to show the user.
func (bs *BookingService) Book(ctx context.Context, userID, eventID uint, at time.Time) (BookingResult, error) {
	booking, err := bs.bookings.CreateBooking(ctx, userID, eventID, at)
	switch {
	case err == nil:
		return BookingResult{Booked: true, Message: MsgBooked, Booking: booking}, nil
	case errors.Is(err, store.ErrAlreadyBooked):
		return BookingResult{Message: MsgAlreadyBooked}, err
	case errors.Is(err, store.ErrNotFound):
		return BookingResult{Message: MsgEventNotFound}, err
	default:
		bs.log.Error("booking failed", "user_id", userID, "event_id", eventID, "error", err)
		return BookingResult{Message: MsgBookingFailed}, err
	}
}

func (bs *BookingService) ListForUser(ctx context.Context, userID uint) ([]models.BookingDetail, error) {
	return bs.bookings.ListBookingsForUser(ctx, userID)
}

// BookingForOwner returns the booking if it belongs to userID. Someone
// else's booking is reported as not found.
func (bs *BookingService) BookingForOwner(ctx context.Context, bookingID, userID uint) (*models.Booking, error) {
	booking, err := bs.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, store.ErrNotFound
	}
	return booking, nil
}

func (bs *BookingService) Get(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return bs.bookings.GetBooking(ctx, bookingID)
}
