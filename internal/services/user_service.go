package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/farellandr/eventbook/internal/auth"
	"github.com/farellandr/eventbook/internal/models"
	"github.com/farellandr/eventbook/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, isPromoter bool) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type UserService struct {
	users         UserStore
	promoterEmail string
	log           *slog.Logger
}

func NewUserService(users UserStore, promoterEmail string, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{users: users, promoterEmail: promoterEmail, log: log}
}

// Register creates an ordinary user, or a promoter when email is the
// bootstrap promoter address. store.ErrEmailTaken is passed through.
func (us *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, invalid("a valid email is required")
	}
	if err := models.Validate.Var(password, "required,min=6"); err != nil {
		return nil, invalid("password must be at least 6 characters")
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return us.users.CreateUser(ctx, email, hashed, models.IsBootstrapPromoter(email, us.promoterEmail))
}

func (us *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		us.log.Info("login failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
