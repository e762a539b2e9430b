package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/farellandr/eventbook/internal/helpers"
	"github.com/farellandr/eventbook/internal/images"
	"github.com/farellandr/eventbook/internal/models"
)

type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uint) error
	ListEventsWithBookingStatus(ctx context.Context, userID *uint) ([]models.EventWithStatus, error)
}

type ImageStore interface {
	Save(upload images.Upload) (string, error)
	Discard(rel *string)
}

// EventInput holds the raw form fields of an event.
type EventInput struct {
	Title       string
	Location    string
	Description string
	Date        string
	Time        string
	DayNight    string
	Fee         string
}

type EventService struct {
	events EventStore
	images ImageStore
	log    *slog.Logger
}

func NewEventService(events EventStore, imgs ImageStore, log *slog.Logger) *EventService {
	if log == nil {
		log = slog.Default()
	}
	return &EventService{events: events, images: imgs, log: log}
}

func buildEvent(in EventInput) (*models.Event, error) {
	fee, err := helpers.ParseFee(in.Fee)
	if err != nil {
		return nil, invalid("fee must be a number")
	}

	event := &models.Event{
		Title:    strings.TrimSpace(in.Title),
		Location: strings.TrimSpace(in.Location),
		Date:     strings.TrimSpace(in.Date),
		Time:     strings.TrimSpace(in.Time),
		DayNight: models.DayNight(strings.ToLower(strings.TrimSpace(in.DayNight))),
		Fee:      fee,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		event.Description = &desc
	}

	if err := models.Validate.Struct(event); err != nil {
		return nil, describeValidation(err)
	}
	return event, nil
}

// storeImage saves an upload. A disallowed file type is not an error: the
// upload is dropped and ok is false.
func (es *EventService) storeImage(upload *images.Upload) (path string, ok bool, err error) {
	if upload == nil {
		return "", false, nil
	}
	path, err = es.images.Save(*upload)
	switch {
	case err == nil:
		return path, true, nil
	case errors.Is(err, images.ErrDisallowedType):
		return "", false, nil
	case errors.Is(err, images.ErrTooLarge):
		return "", false, invalid("%v", err)
	default:
		es.log.Error("saving event image failed", "filename", upload.Filename, "error", err)
		return "", false, fmt.Errorf("save image: %w", err)
	}
}

func (es *EventService) CreateEvent(ctx context.Context, in EventInput, upload *images.Upload) (*models.Event, error) {
	event, err := buildEvent(in)
	if err != nil {
		return nil, err
	}

	path, saved, err := es.storeImage(upload)
	if err != nil {
		return nil, err
	}
	if saved {
		event.ImagePath = &path
	}

	if err := es.events.CreateEvent(ctx, event); err != nil {
		if saved {
			es.images.Discard(&path)
		}
		return nil, err
	}
	return event, nil
}

// UpdateEvent applies the edit. removeImage wins over an upload sent in the
// same request: the current image is cleared and the upload is ignored.
// A replaced or cleared image file is deleted only after the row is
// updated.
func (es *EventService) UpdateEvent(ctx context.Context, id uint, in EventInput, upload *images.Upload, removeImage bool) (*models.Event, error) {
	existing, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event, err := buildEvent(in)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.ImagePath = existing.ImagePath

	var stale *string
	var fresh *string
	if removeImage {
		event.ImagePath = nil
		stale = existing.ImagePath
	} else {
		path, saved, err := es.storeImage(upload)
		if err != nil {
			return nil, err
		}
		if saved {
			fresh = &path
			event.ImagePath = fresh
			stale = existing.ImagePath
		}
	}

	if err := es.events.UpdateEvent(ctx, event); err != nil {
		es.images.Discard(fresh)
		return nil, err
	}

	es.images.Discard(stale)
	return event, nil
}

// DeleteEvent removes the event row (and its bookings), then its image.
// A crash between the two leaves an unreferenced file behind, never a row
// pointing at a missing file.
func (es *EventService) DeleteEvent(ctx context.Context, id uint) error {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return err
	}

	if err := es.events.DeleteEvent(ctx, id); err != nil {
		return err
	}

	if event.HasImage() {
		es.images.Discard(event.ImagePath)
	}
	return nil
}

func (es *EventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return es.events.GetEventByID(ctx, id)
}

func (es *EventService) ListEvents(ctx context.Context, userID *uint) ([]models.EventWithStatus, error) {
	return es.events.ListEventsWithBookingStatus(ctx, userID)
}
