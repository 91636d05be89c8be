package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the body of every failed request:
// {"error": {"message": "...", "code": "..."}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func envelope(code, message string) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Message: message, Code: code}}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	c.JSON(status, envelope(code, message))
}

// AbortError writes the envelope and stops the remaining handlers.
func AbortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, envelope(code, message))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
