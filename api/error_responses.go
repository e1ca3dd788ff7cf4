package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeCorpusNotFound   ErrorCode = "CORPUS_NOT_FOUND"
	ErrorCodeCorpusExists     ErrorCode = "CORPUS_ALREADY_EXISTS"
	ErrorCodeIndexNotBuilt    ErrorCode = "INDEX_NOT_BUILT"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeAuthorNotFound   ErrorCode = "AUTHOR_NOT_FOUND"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrorCodeNotSupported     ErrorCode = "NOT_SUPPORTED"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexRebuilding    ErrorCode = "INDEX_REBUILDING"
	ErrorCodePersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends every problem of result as one error detail
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendJobExecutionError sends a standardized job start failure
func SendJobExecutionError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeJobExecutionFailed,
		"Failed to start "+operation+" job: "+err.Error())
}

// SendEngineError maps an engine error to its status code and error code.
// operation names the failed action in the fallback message.
func SendEngineError(c *gin.Context, operation string, err error) {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", ErrorDetail{
			Field:   validationErr.Field,
			Message: validationErr.Message,
			Code:    "VALIDATION_ERROR",
		})
	case errors.Is(err, apperrors.ErrCorpusNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeCorpusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrCorpusAlreadyExists):
		SendError(c, http.StatusConflict, ErrorCodeCorpusExists, err.Error())
	case errors.Is(err, apperrors.ErrIndexNotBuilt):
		SendError(c, http.StatusConflict, ErrorCodeIndexNotBuilt, err.Error())
	case errors.Is(err, apperrors.ErrJobNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, err.Error())
	case errors.Is(err, apperrors.ErrShapeMismatch):
		c.Header("Retry-After", "1")
		SendError(c, http.StatusServiceUnavailable, ErrorCodeIndexRebuilding,
			"Index is being rebuilt, retry shortly: "+err.Error())
	case errors.Is(err, apperrors.ErrIncompleteSnapshot), errors.Is(err, apperrors.ErrSnapshotNotFound):
		SendError(c, http.StatusInternalServerError, ErrorCodePersistenceFailed, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Internal error during "+operation+": "+err.Error())
	}
}
