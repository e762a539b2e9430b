package server

import (
	"log/slog"

	"github.com/farellandr/eventbook/config"
	"github.com/farellandr/eventbook/internal/auth"
	"github.com/farellandr/eventbook/internal/helpers"
	"github.com/farellandr/eventbook/internal/images"
	"github.com/farellandr/eventbook/internal/services"
	"github.com/farellandr/eventbook/internal/store"
	"gorm.io/gorm"
)

// Container holds the wired application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Tokens *auth.TokenIssuer
	Policy *auth.Policy
	Signer *helpers.TicketSigner

	UserService    *services.UserService
	EventService   *services.EventService
	BookingService *services.BookingService
}

func NewContainer(cfg *config.Config, db *gorm.DB, logger *slog.Logger) *Container {
	st := store.New(db, logger)
	imgs := images.NewManager(images.UploadConfig{
		MaxSizeBytes: cfg.MaxUploadMB << 20,
		StaticRoot:   cfg.StaticRoot,
		UploadDir:    cfg.UploadDir,
	}, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Tokens:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Policy:         auth.NewPolicy(st, logger),
		Signer:         helpers.NewTicketSigner(cfg.JWTSecret),
		UserService:    services.NewUserService(st, cfg.PromoterEmail, logger),
		EventService:   services.NewEventService(st, imgs, logger),
		BookingService: services.NewBookingService(st, logger),
	}
}
