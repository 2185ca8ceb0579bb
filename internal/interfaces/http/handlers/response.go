// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// Response is the envelope every endpoint returns
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// respondOK writes a success envelope with data
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondCreated writes a 201 success envelope with data
func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError maps a service error onto the envelope and status code
func respondError(c *gin.Context, err error) {
	status := statusFor(apperrors.KindOf(err))

	message := apperrors.MessageOf(err)
	if status == http.StatusInternalServerError {
		// Internal details never leak to clients
		message = "Internal server error"
		_ = c.Error(err)
	}

	c.JSON(status, Response{
		Success: false,
		Message: message,
	})
}

// respondBadRequest writes a 400 envelope for malformed input
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: message,
	})
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusBadRequest
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
