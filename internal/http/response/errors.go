package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/platform/apierr"
	"github.com/yungbote/brainforge-backend/internal/services"
)

const (
	CodeInvalidArgument    = "invalid_argument"
	CodeNotFound           = "not_found"
	CodeInvalidState       = "invalid_state"
	CodeClickNotRegistered = "click_not_registered"
	CodeGenerationFailed   = "generation_failed"
	CodeUnauthorized       = "unauthorized"
	CodeInternal           = "internal"
)

// StatusFor maps an error from the service layer onto an HTTP status and
// a stable error code.
func StatusFor(err error) (int, string) {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	switch {
	case errors.Is(err, game.ErrInvalidArgument):
		return http.StatusBadRequest, CodeInvalidArgument
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, game.ErrInvalidState):
		return http.StatusConflict, CodeInvalidState
	case errors.Is(err, game.ErrConflict):
		return http.StatusConflict, CodeClickNotRegistered
	case errors.Is(err, game.ErrGenerationFailure):
		return http.StatusBadGateway, CodeGenerationFailed
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// RespondServiceError writes the error envelope for err. Internal failures
// are reported without their message and attached to the gin context.
func RespondServiceError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if status == http.StatusInternalServerError {
			RespondError(c, status, code, errors.New("internal server error"))
			return
		}
	}
	RespondError(c, status, code, err)
}
