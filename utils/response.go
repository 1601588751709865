package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

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
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// FieldErrors returns a validation failure with per-field messages so form
// views can re-render with errors attached.
func FieldErrors(ctx *gin.Context, code int, fields map[string]string) {
	Respond(ctx, http.StatusBadRequest, code, "validation failed", gin.H{"errors": fields})
}

// Redirect issues a page-flow redirect and stops further handling.
func Redirect(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusFound, location)
	ctx.Abort()
}
