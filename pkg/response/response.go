package response

import (
	"net/http"

	appErrors "github.com/charlesng35/teamkit/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Response defines the base API payload for read endpoints.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo holds error details to send to clients.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FormState is the payload returned to a form after a mutation. Exactly one of
// Error or Success is set; Fields echoes non-secret inputs back for re-rendering.
type FormState struct {
	Error   string            `json:"error,omitempty"`
	Success string            `json:"success,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// Form writes a form state payload.
func Form(c *gin.Context, statusCode int, state FormState) {
	c.JSON(statusCode, state)
}

// Redirect sends the browser to location after a successful form post.
// The status is flushed immediately since POST redirects carry no body.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
	c.Writer.WriteHeaderNow()
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}
