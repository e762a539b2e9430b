package handlers

import (
	"github.com/farellandr/eventbook/internal/auth"
	"github.com/farellandr/eventbook/internal/helpers"
	"github.com/gin-gonic/gin"
)

func deny(c *gin.Context, d auth.Decision) {
	helpers.RespondWithRedirect(c, d.Status, d.RedirectTo, d.Notice)
}
