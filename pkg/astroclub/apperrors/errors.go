package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/logger"
	"gorm.io/gorm"
)

// Error kinds. Services return these (usually wrapped in *Error) and
// handlers translate them into HTTP statuses with Respond.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal error")
)

// Error carries a client-facing message alongside one of the kinds above
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return New(ErrValidation, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return New(ErrNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return New(ErrConflict, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return New(ErrForbidden, format, args...)
}

// FromDB translates gorm errors into error kinds. what names the entity
// for the not-found message, e.g. "task". Requires gorm.Config.TranslateError.
func FromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NotFound("referenced record for %s not found", what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// Status maps an error to its HTTP status code
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error body and aborts the request.
// Errors without a known kind are logged and reported as a generic 500.
func Respond(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
