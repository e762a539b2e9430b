package helpers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithRedirect sends browsers to location with a notice and API
// clients a JSON error that names the same location.
func RespondWithRedirect(c *gin.Context, statusCode int, location, notice string) {
	if WantsHTML(c) {
		c.Header("X-Notice", notice)
		c.Redirect(http.StatusSeeOther, location)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:    HTTPStatusText(statusCode),
		Message:  notice,
		Redirect: location,
	})
}

func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
