package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/farellandr/eventbook/internal/auth"
	"github.com/farellandr/eventbook/internal/helpers"
	"github.com/farellandr/eventbook/internal/middleware"
	"github.com/farellandr/eventbook/internal/services"
	"github.com/farellandr/eventbook/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

type VerifyTicketRequest struct {
	QRData string `json:"qr_data" binding:"required"`
}

func BookEvent(policy *auth.Policy, bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetIdentity(c)
		if d := policy.RequireAuthenticated(id); !d.Allowed() {
			deny(c, d)
			return
		}

		eventID, err := helpers.ParseID(c.Param("id"))
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
			return
		}

		result, err := bookings.Book(c.Request.Context(), id.UserID, eventID, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, store.ErrAlreadyBooked):
				helpers.RespondWithError(c, http.StatusConflict, result.Message)
			case errors.Is(err, store.ErrNotFound):
				helpers.RespondWithError(c, http.StatusNotFound, result.Message)
			default:
				_ = c.Error(err)
				helpers.RespondWithError(c, http.StatusInternalServerError, result.Message)
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": result.Message,
			"booking": result.Booking,
		})
	}
}

func ListMyBookings(policy *auth.Policy, bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetIdentity(c)
		if d := policy.RequireAuthenticated(id); !d.Allowed() {
			deny(c, d)
			return
		}

		list, err := bookings.ListForUser(c.Request.Context(), id.UserID)
		if err != nil {
			_ = c.Error(err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving bookings.")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"bookings": list,
			"total":    len(list),
		})
	}
}

func BookingQR(policy *auth.Policy, bookings *services.BookingService, signer *helpers.TicketSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetIdentity(c)
		if d := policy.RequireAuthenticated(id); !d.Allowed() {
			deny(c, d)
			return
		}

		bookingID, err := helpers.ParseID(c.Param("id"))
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
			return
		}

		booking, err := bookings.BookingForOwner(c.Request.Context(), bookingID, id.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				helpers.RespondWithError(c, http.StatusNotFound, services.MsgBookingMissing)
				return
			}
			_ = c.Error(err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving booking.")
			return
		}

		qrImage, err := qrcode.Encode(signer.Payload(booking.ID, booking.EventID, booking.UserID), qrcode.Medium, 256)
		if err != nil {
			_ = c.Error(err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
			return
		}

		c.Data(http.StatusOK, "image/png", qrImage)
	}
}

// VerifyTicket checks a scanned booking QR payload at the door.
func VerifyTicket(policy *auth.Policy, bookings *services.BookingService, signer *helpers.TicketSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := policy.RequirePromoter(c.Request.Context(), middleware.GetIdentity(c)); !d.Allowed() {
			deny(c, d)
			return
		}

		var req VerifyTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
			return
		}

		claim, err := signer.Verify(req.QRData)
		if err != nil {
			helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code.")
			return
		}

		booking, err := bookings.Get(c.Request.Context(), claim.BookingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				helpers.RespondWithError(c, http.StatusNotFound, services.MsgBookingMissing)
				return
			}
			_ = c.Error(err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to verify ticket.")
			return
		}
		if booking.EventID != claim.EventID || booking.UserID != claim.UserID {
			helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code.")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Ticket is valid.",
			"booking": booking,
		})
	}
}
