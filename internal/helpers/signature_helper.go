package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// TicketSigner produces and checks the signed payload encoded in a
// booking's QR code.
type TicketSigner struct {
	secret []byte
}

func NewTicketSigner(secret string) *TicketSigner {
	return &TicketSigner{secret: []byte(secret)}
}

func (t *TicketSigner) signature(bookingID, eventID, userID uint) string {
	data := fmt.Sprintf("%d:%d:%d", bookingID, eventID, userID)
	h := hmac.New(sha256.New, t.secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func (t *TicketSigner) Payload(bookingID, eventID, userID uint) string {
	return fmt.Sprintf("booking:%d;event:%d;user:%d;signature:%s",
		bookingID, eventID, userID, t.signature(bookingID, eventID, userID))
}

// TicketClaim is what a verified payload asserts.
type TicketClaim struct {
	BookingID uint
	EventID   uint
	UserID    uint
}

func (t *TicketSigner) Verify(payload string) (TicketClaim, error) {
	parts := strings.Split(payload, ";")
	if len(parts) != 4 {
		return TicketClaim{}, fmt.Errorf("invalid ticket format")
	}

	var ids [3]uint
	for i, prefix := range []string{"booking:", "event:", "user:"} {
		if !strings.HasPrefix(parts[i], prefix) {
			return TicketClaim{}, fmt.Errorf("invalid ticket format")
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(parts[i], prefix), 10, 64)
		if err != nil {
			return TicketClaim{}, fmt.Errorf("invalid ticket format")
		}
		ids[i] = uint(n)
	}
	if !strings.HasPrefix(parts[3], "signature:") {
		return TicketClaim{}, fmt.Errorf("invalid ticket format")
	}

	expected := t.signature(ids[0], ids[1], ids[2])
	if !hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(parts[3], "signature:"))) {
		return TicketClaim{}, fmt.Errorf("invalid ticket signature")
	}
	return TicketClaim{BookingID: ids[0], EventID: ids[1], UserID: ids[2]}, nil
}
