package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/teamkit/internal/actions"
	"github.com/charlesng35/teamkit/internal/middleware"
	appErrors "github.com/charlesng35/teamkit/pkg/errors"
	"github.com/charlesng35/teamkit/pkg/logger"
	"github.com/charlesng35/teamkit/pkg/metrics"
	"github.com/charlesng35/teamkit/pkg/response"
)

const maxFormMemory = 1 << 20

// FormAction is the signature shared by the methods of actions.Actions.
type FormAction func(ctx context.Context, req actions.Request) (actions.Result, error)

// Form adapts a form action to gin. Redirect results answer 303, error results
// answer their kind's status with the form state, and infrastructure errors
// answer a generic 500.
func Form(name string, action FormAction) gin.HandlerFunc {
	log := logger.WithModule("forms")

	return func(c *gin.Context) {
		if err := parseForm(c.Request); err != nil {
			metrics.ActionResults.WithLabelValues(name, "validation").Inc()
			response.Form(c, http.StatusBadRequest, response.FormState{Error: "Invalid form submission"})
			return
		}

		req := actions.Request{
			Form:     c.Request.PostForm,
			ClientIP: c.ClientIP(),
		}
		if sess := middleware.RequestSession(c); sess != nil {
			req.Session = sess
		}

		res, err := action(requestContext(c), req)
		if err != nil {
			metrics.ActionResults.WithLabelValues(name, "error").Inc()
			log.Error("form action failed", zap.String("action", name), zap.Error(err))
			_ = c.Error(err)
			response.Error(c, appErrors.ErrInternalServer)
			return
		}

		metrics.ActionResults.WithLabelValues(name, res.Outcome()).Inc()
		if res.Redirect != "" {
			response.Redirect(c, res.Redirect)
			return
		}
		response.Form(c, res.Status(), response.FormState{
			Error:   res.Error,
			Success: res.Success,
			Fields:  res.Fields,
		})
	}
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}
