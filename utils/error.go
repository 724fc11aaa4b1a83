package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message   string `json:"message"`
	Kind      string `json:"kind,omitempty"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	WriteError(c, status, ErrorResponse{Message: message, Details: details})
}

// WriteError logs and sends a fully populated error response.
func WriteError(c *gin.Context, status int, resp ErrorResponse) {
	Logger := GetLogger()
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("details", resp.Details),
		zap.String("path", c.Request.URL.Path),
	}
	if resp.Kind != "" {
		fields = append(fields, zap.String("kind", resp.Kind))
	}
	if status >= http.StatusInternalServerError {
		Logger.Error(resp.Message, fields...)
	} else {
		Logger.Warn(resp.Message, fields...)
	}
	c.AbortWithStatusJSON(status, resp)
}
