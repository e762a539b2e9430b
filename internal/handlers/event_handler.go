package handlers

import (
	"errors"
	"net/http"

	"github.com/farellandr/eventbook/internal/auth"
	"github.com/farellandr/eventbook/internal/helpers"
	"github.com/farellandr/eventbook/internal/images"
	"github.com/farellandr/eventbook/internal/middleware"
	"github.com/farellandr/eventbook/internal/services"
	"github.com/farellandr/eventbook/internal/store"
	"github.com/gin-gonic/gin"
)

func eventInput(c *gin.Context) services.EventInput {
	return services.EventInput{
		Title:       c.PostForm("title"),
		Location:    c.PostForm("location"),
		Description: c.PostForm("description"),
		Date:        c.PostForm("date"),
		Time:        c.PostForm("time"),
		DayNight:    c.PostForm("day_night"),
		Fee:         c.PostForm("fee"),
	}
}

// formImage opens the optional "image" file of a multipart form. The
// returned close func is always safe to call.
func formImage(c *gin.Context) (*images.Upload, func(), error) {
	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader.Filename == "" {
		return nil, func() {}, nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &images.Upload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Body:     src,
	}, func() { src.Close() }, nil
}

func respondEventError(c *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
	default:
		_ = c.Error(err)
		helpers.RespondWithError(c, http.StatusInternalServerError, failure)
	}
}

func ListEvents(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetIdentity(c)

		list, err := events.ListEvents(c.Request.Context(), id.UserIDPtr())
		if err != nil {
			_ = c.Error(err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"events":        list,
			"total":         len(list),
			"authenticated": id.Authenticated(),
		})
	}
}

func GetEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := helpers.ParseID(c.Param("id"))
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
			return
		}

		event, err := events.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondEventError(c, err, "Error retrieving event.")
			return
		}

		c.JSON(http.StatusOK, event)
	}
}

func CreateEvent(policy *auth.Policy, events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := policy.RequirePromoter(c.Request.Context(), middleware.GetIdentity(c)); !d.Allowed() {
			deny(c, d)
			return
		}

		upload, closeUpload, err := formImage(c)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded image.")
			return
		}
		defer closeUpload()

		event, err := events.CreateEvent(c.Request.Context(), eventInput(c), upload)
		if err != nil {
			respondEventError(c, err, "Failed to create event.")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "Event added successfully!",
			"event_id": event.ID,
			"event":    event,
		})
	}
}

func UpdateEvent(policy *auth.Policy, events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := policy.RequirePromoter(c.Request.Context(), middleware.GetIdentity(c)); !d.Allowed() {
			deny(c, d)
			return
		}

		eventID, err := helpers.ParseID(c.Param("id"))
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
			return
		}

		upload, closeUpload, err := formImage(c)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded image.")
			return
		}
		defer closeUpload()

		removeImage := helpers.ParseBool(c.PostForm("remove_image"))
		event, err := events.UpdateEvent(c.Request.Context(), eventID, eventInput(c), upload, removeImage)
		if err != nil {
			respondEventError(c, err, "Failed to update event.")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Event updated successfully!",
			"event":   event,
		})
	}
}

func DeleteEvent(policy *auth.Policy, events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := policy.RequirePromoter(c.Request.Context(), middleware.GetIdentity(c)); !d.Allowed() {
			deny(c, d)
			return
		}

		eventID, err := helpers.ParseID(c.Param("id"))
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
			return
		}

		if err := events.DeleteEvent(c.Request.Context(), eventID); err != nil {
			respondEventError(c, err, "Failed to delete event.")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Event deleted successfully!",
		})
	}
}
