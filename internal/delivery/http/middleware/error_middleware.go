package middleware

import (
	"errors"
	"net/http"

	"go-minimalapp/internal/delivery/http/response"
	"go-minimalapp/pkg/apperror"
	"go-minimalapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed", "error", err, "request_id", c.GetString("RequestID"))
			}
			if !c.Writer.Written() {
				response.Error(c, appErr.Code, appErr.Message)
			}
			return
		}

		// Internal details stay in the server log
		logger.Log.Error("Internal Server Error", "error", err, "request_id", c.GetString("RequestID"))
		if !c.Writer.Written() {
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
		}
	}
}
