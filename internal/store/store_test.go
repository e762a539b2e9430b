package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/farellandr/eventbook/config"
	"github.com/farellandr/eventbook/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := config.OpenDatabase(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), true, log)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db, log), db
}

func addEvent(t *testing.T, s *Store, title, date, tm string) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:    title,
		Location: "Hall A",
		Date:     date,
		Time:     tm,
		DayNight: models.Night,
	}
	if err := s.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("create event %q: %v", title, err)
	}
	return event
}

func addUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), email, "hash", false)
	if err != nil {
		t.Fatalf("create user %q: %v", email, err)
	}
	return user
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	addUser(t, s, "ana@example.com")

	_, err := s.CreateUser(ctx, "ana@example.com", "other", true)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	user, err := s.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.IsPromoter {
		t.Error("duplicate registration must not change the stored user")
	}
}

func TestEmailIsCaseSensitive(t *testing.T) {
	s, _ := newTestStore(t)

	addUser(t, s, "ana@example.com")
	if _, err := s.CreateUser(context.Background(), "Ana@example.com", "hash", false); err != nil {
		t.Fatalf("differently cased email should be a new user: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByEmail: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetUserByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID: expected ErrNotFound, got %v", err)
	}
}

func TestListEventsOrdering(t *testing.T) {
	s, _ := newTestStore(t)

	addEvent(t, s, "late", "2024-05-02", "09:00")
	addEvent(t, s, "tie-first", "2024-05-01", "20:00")
	addEvent(t, s, "early", "2024-05-01", "08:30")
	addEvent(t, s, "tie-second", "2024-05-01", "20:00")

	events, err := s.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("list events: %v", err)
	}

	want := []string{"early", "tie-first", "tie-second", "late"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, title := range want {
		if events[i].Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, events[i].Title)
		}
	}
}

func TestListEventsWithBookingStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := addEvent(t, s, "first", "2024-05-01", "10:00")
	addEvent(t, s, "second", "2024-05-02", "10:00")
	ana := addUser(t, s, "ana@example.com")
	ben := addUser(t, s, "ben@example.com")

	if _, err := s.CreateBooking(ctx, ana.ID, first.ID, time.Now()); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	anonymous, err := s.ListEventsWithBookingStatus(ctx, nil)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if len(anonymous) != 2 {
		t.Fatalf("expected 2 events, got %d", len(anonymous))
	}
	for _, e := range anonymous {
		if e.IsBooked {
			t.Errorf("anonymous caller sees %q as booked", e.Title)
		}
	}

	forAna, err := s.ListEventsWithBookingStatus(ctx, &ana.ID)
	if err != nil {
		t.Fatalf("list for ana: %v", err)
	}
	if len(forAna) != 2 || !forAna[0].IsBooked || forAna[1].IsBooked {
		t.Errorf("unexpected status for ana: %+v", forAna)
	}
	if forAna[0].Title != "first" || forAna[0].Location != "Hall A" {
		t.Errorf("event columns not populated: %+v", forAna[0].Event)
	}

	forBen, err := s.ListEventsWithBookingStatus(ctx, &ben.ID)
	if err != nil {
		t.Fatalf("list for ben: %v", err)
	}
	for _, e := range forBen {
		if e.IsBooked {
			t.Errorf("ben sees %q as booked", e.Title)
		}
	}
}

func TestCreateBookingOnlyOnce(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	event := addEvent(t, s, "gig", "2024-05-01", "21:00")
	user := addUser(t, s, "ana@example.com")

	booking, err := s.CreateBooking(ctx, user.ID, event.ID, time.Now())
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if booking.Status != models.StatusConfirmed {
		t.Errorf("expected status %q, got %q", models.StatusConfirmed, booking.Status)
	}

	if _, err := s.CreateBooking(ctx, user.ID, event.ID, time.Now()); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}

	count, err := s.CountBookingsForEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 booking, got %d", count)
	}
}

func TestCreateBookingConcurrent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	event := addEvent(t, s, "gig", "2024-05-01", "21:00")
	user := addUser(t, s, "ana@example.com")

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		already int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateBooking(ctx, user.ID, event.ID, time.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrAlreadyBooked):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || already != attempts-1 {
		t.Errorf("expected 1 success and %d duplicates, got %d and %d", attempts-1, ok, already)
	}
}

func TestUniqueIndexRejectsDuplicateRow(t *testing.T) {
	s, db := newTestStore(t)

	event := addEvent(t, s, "gig", "2024-05-01", "21:00")
	user := addUser(t, s, "ana@example.com")

	first := &models.Booking{UserID: user.ID, EventID: event.ID, BookingDate: time.Now()}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	second := &models.Booking{UserID: user.ID, EventID: event.ID, BookingDate: time.Now()}
	if err := db.Create(second).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicated key error, got %v", err)
	}

	var stored models.Booking
	if err := db.First(&stored, first.ID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if stored.Status != models.StatusConfirmed {
		t.Errorf("expected default status %q, got %q", models.StatusConfirmed, stored.Status)
	}
}

func TestCreateBookingMissingEvent(t *testing.T) {
	s, _ := newTestStore(t)
	user := addUser(t, s, "ana@example.com")

	if _, err := s.CreateBooking(context.Background(), user.ID, 999, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEvent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	fee := 1000.0
	image := "uploads/poster.png"
	event := &models.Event{
		Title: "gig", Location: "Hall A", Date: "2024-05-01", Time: "21:00",
		DayNight: models.Night, Fee: &fee, ImagePath: &image,
	}
	if err := s.CreateEvent(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	event.Title = "matinee"
	event.DayNight = models.Day
	event.Fee = nil
	event.ImagePath = nil
	if err := s.UpdateEvent(ctx, event); err != nil {
		t.Fatalf("update event: %v", err)
	}

	got, err := s.GetEventByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Title != "matinee" || got.DayNight != models.Day {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.Fee != nil || got.ImagePath != nil {
		t.Errorf("expected fee and image_path cleared, got fee=%v image=%v", got.Fee, got.ImagePath)
	}

	missing := &models.Event{ID: 999, Title: "x", Location: "y", Date: "2024-01-01", Time: "10:00", DayNight: models.Day}
	if err := s.UpdateEvent(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing event, got %v", err)
	}
}

func TestDeleteEventPurgesBookings(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	event := addEvent(t, s, "gig", "2024-05-01", "21:00")
	other := addEvent(t, s, "other", "2024-05-02", "21:00")
	user := addUser(t, s, "ana@example.com")
	for _, id := range []uint{event.ID, other.ID} {
		if _, err := s.CreateBooking(ctx, user.ID, id, time.Now()); err != nil {
			t.Fatalf("create booking: %v", err)
		}
	}

	if err := s.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if _, err := s.GetEventByID(ctx, event.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted event to be gone, got %v", err)
	}

	count, err := s.CountBookingsForEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 0 {
		t.Errorf("expected bookings of deleted event purged, got %d", count)
	}

	mine, err := s.ListBookingsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(mine) != 1 || mine[0].EventID != other.ID || mine[0].Title != "other" {
		t.Errorf("unexpected remaining bookings: %+v", mine)
	}

	if err := s.DeleteEvent(ctx, event.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestUpdateEventWithUnchangedFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	event := addEvent(t, s, "gig", "2024-05-01", "21:00")
	for i := 0; i < 2; i++ {
		if err := s.UpdateEvent(ctx, event); err != nil {
			t.Fatalf("save #%d of an unchanged event: %v", i+1, err)
		}
	}
}
