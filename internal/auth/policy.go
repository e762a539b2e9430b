// Package auth holds the authorization guards, session tokens and password
// hashing.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/farellandr/eventbook/internal/models"
	"github.com/farellandr/eventbook/internal/store"
)

const (
	LoginPath  = "/v1/login"
	EventsPath = "/v1/events"

	NoticeLoginRequired = "Please log in to continue."
	NoticePromoterOnly  = "Access denied. Promoter privileges required."
)

// Identity is what a request carries about its caller. A zero Identity is
// an anonymous caller.
type Identity struct {
	UserID uint
	Email  string
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// UserIDPtr returns a pointer to the caller's id, or nil when anonymous.
func (i Identity) UserIDPtr() *uint {
	if !i.Authenticated() {
		return nil
	}
	id := i.UserID
	return &id
}

type Outcome int

const (
	Allowed Outcome = iota
	DeniedRedirect
)

// Decision is the result of a guard. When denied, RedirectTo and Notice say
// where to send the caller and what to tell them; nothing has been changed.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
	Notice     string
	Status     int
	User       *models.User
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allowed
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Policy struct {
	users UserLookup
	log   *slog.Logger
}

func NewPolicy(users UserLookup, log *slog.Logger) *Policy {
	if log == nil {
		log = slog.Default()
	}
	return &Policy{users: users, log: log.With("component", "auth")}
}

func (p *Policy) RequireAuthenticated(id Identity) Decision {
	if !id.Authenticated() {
		return Decision{Outcome: DeniedRedirect, RedirectTo: LoginPath, Notice: NoticeLoginRequired, Status: http.StatusUnauthorized}
	}
	return Decision{Outcome: Allowed}
}

// RequirePromoter allows only authenticated promoters. The promoter flag is
// read from storage on every call; a flag carried by the session is never
// trusted.
func (p *Policy) RequirePromoter(ctx context.Context, id Identity) Decision {
	if d := p.RequireAuthenticated(id); !d.Allowed() {
		return d
	}

	user, err := p.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.log.Error("promoter check failed", "user_id", id.UserID, "error", err)
		}
		return Decision{Outcome: DeniedRedirect, RedirectTo: LoginPath, Notice: NoticeLoginRequired, Status: http.StatusUnauthorized}
	}
	if !user.IsPromoter {
		p.log.Info("promoter access denied", "user_id", user.ID)
		return Decision{Outcome: DeniedRedirect, RedirectTo: EventsPath, Notice: NoticePromoterOnly, Status: http.StatusForbidden}
	}

	return Decision{Outcome: Allowed, User: user}
}
