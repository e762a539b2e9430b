package handlers

import (
	"errors"
	"net/http"

	"github.com/farellandr/eventbook/internal/auth"
	"github.com/farellandr/eventbook/internal/helpers"
	"github.com/farellandr/eventbook/internal/middleware"
	"github.com/farellandr/eventbook/internal/services"
	"github.com/farellandr/eventbook/internal/store"
	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func Register(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBind(&req); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
			return
		}

		user, err := users.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidInput):
				helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			case errors.Is(err, store.ErrEmailTaken):
				helpers.RespondWithError(c, http.StatusConflict, "Email already registered.")
			default:
				_ = c.Error(err)
				helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration successful! Please log in.",
			"user":    user,
		})
	}
}

// LoginPrompt answers GET on the login path, where denied browsers are sent.
func LoginPrompt() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": auth.NoticeLoginRequired,
			"method":  http.MethodPost,
			"fields":  []string{"email", "password"},
		})
	}
}

func Login(users *services.UserService, tokens *auth.TokenIssuer, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
			return
		}

		user, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
				return
			}
			_ = c.Error(err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Login failed.")
			return
		}

		tokenString, err := tokens.Issue(user.ID, user.Email)
		if err != nil {
			_ = c.Error(err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, tokenString, int(tokens.TTL().Seconds()), "/", "", secureCookie, true)

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged in successfully!",
			"token":   tokenString,
			"user":    user,
		})
	}
}

func Logout(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secureCookie, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
	}
}
