package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farellandr/eventbook/config"
	"github.com/farellandr/eventbook/internal/handlers"
	"github.com/farellandr/eventbook/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func Start(cfg *config.Config, logger *slog.Logger) error {
	db, err := config.InitDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := os.MkdirAll(cfg.UploadPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := SetupRoutes(NewContainer(cfg, db, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("Server is shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func SetupRoutes(ct *Container) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = ct.Config.MaxUploadMB << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     ct.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Notice"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(ct.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.Identity(ct.Tokens))

	r.Static("/static", ct.Config.StaticRoot)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "eventbook",
		})
	})

	secure := ct.Config.IsProduction()

	v1 := r.Group("/v1")
	{
		v1.POST("/register", handlers.Register(ct.UserService))
		v1.GET("/login", handlers.LoginPrompt())
		v1.POST("/login", handlers.Login(ct.UserService, ct.Tokens, secure))
		v1.POST("/logout", handlers.Logout(secure))

		events := v1.Group("/events")
		{
			update := handlers.UpdateEvent(ct.Policy, ct.EventService)
			remove := handlers.DeleteEvent(ct.Policy, ct.EventService)

			events.GET("", handlers.ListEvents(ct.EventService))
			events.GET("/:id", handlers.GetEvent(ct.EventService))
			events.POST("", handlers.CreateEvent(ct.Policy, ct.EventService))
			events.PUT("/:id", update)
			events.POST("/:id", update)
			events.POST("/:id/edit", update)
			events.DELETE("/:id", remove)
			events.POST("/:id/delete", remove)
			events.POST("/:id/book", handlers.BookEvent(ct.Policy, ct.BookingService))
		}

		bookings := v1.Group("/bookings")
		{
			bookings.GET("", handlers.ListMyBookings(ct.Policy, ct.BookingService))
			bookings.GET("/:id/qr", handlers.BookingQR(ct.Policy, ct.BookingService, ct.Signer))
			bookings.POST("/verify", handlers.VerifyTicket(ct.Policy, ct.BookingService, ct.Signer))
		}
	}

	return r
}
