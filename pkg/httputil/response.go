package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velvetarcana/booking-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError maps domain errors to HTTP statuses and sends the
// structured rejection. Unclassified errors surface as 500s.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok {
		c.JSON(appErr.HTTPStatus(), Response{
			Status:  "error",
			Code:    string(appErr.Code),
			Message: appErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Status:  "error",
		Code:    string(errors.CodeInternal),
		Message: "internal server error",
	})
}
