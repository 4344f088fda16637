package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/repository"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/validator"
)

// Envelope is the uniform JSON wrapper returned by every endpoint.
// Status is always "success" or "error"; data appears only on success
// paths that produce a payload, details only on validation failures.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Success sends a success envelope with the given status code.
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Error sends an error envelope with the given status code.
func Error(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, Envelope{
		Status:  StatusError,
		Message: message,
		Details: details,
	})
}

// AbortError aborts the middleware chain and sends an error envelope.
func AbortError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Envelope{
		Status:  StatusError,
		Message: message,
	})
}

// FromError maps a service error onto HTTP status and envelope:
// validation failures carry the field problem map as details, duplicate
// emails conflict, missing rows are not found, unclassified constraint
// violations stay generic, and everything else is an internal error with
// nothing leaked to the caller.
func FromError(c *gin.Context, err error) {
	var fieldErrs *validator.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		Error(c, http.StatusBadRequest, "Validation error", fieldErrs.Fields)
	case errors.Is(err, repository.ErrDuplicateEmail):
		Error(c, http.StatusConflict, "A student with this email already exists", nil)
	case errors.Is(err, repository.ErrNotFound):
		Error(c, http.StatusNotFound, "Student not found", nil)
	case errors.Is(err, repository.ErrIntegrity):
		Error(c, http.StatusBadRequest, "Request violates a data constraint", nil)
	default:
		Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
