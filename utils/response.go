package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/choretab/choretab/engine"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Stable application error codes carried in the response envelope. HTTP
// statuses may be shared across failures; these never are.
const (
	CodeOK                = 0
	CodeBadRequest        = 40010
	CodeValidation        = 40020
	CodeUnauthorized      = 40110
	CodeNotFound          = 40420
	CodeAlreadyClaimed    = 40920
	CodeConflict          = 40921
	CodeInvalidTransition = 42220
	CodeRateLimited       = 42901
	CodeStorageFailure    = 50020
)

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, CodeOK, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// EngineError maps an engine error onto its HTTP status and stable code.
func EngineError(ctx *gin.Context, err error) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		Error(ctx, http.StatusBadRequest, CodeValidation, ve.Error())
	case errors.Is(err, engine.ErrNotFound):
		Error(ctx, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, engine.ErrAlreadyClaimed):
		Error(ctx, http.StatusConflict, CodeAlreadyClaimed, "task already claimed")
	case errors.Is(err, engine.ErrConflict):
		Error(ctx, http.StatusConflict, CodeConflict, "conflicting update, re-read and retry")
	case errors.Is(err, engine.ErrInvalidTransition):
		Error(ctx, http.StatusUnprocessableEntity, CodeInvalidTransition, "transition not allowed")
	default:
		Error(ctx, http.StatusInternalServerError, CodeStorageFailure, "storage failure")
	}
}
