package actions

import (
	"net/http"

	apperrors "github.com/charlesng35/teamkit/pkg/errors"
)

// Result is the uniform outcome of a form action. Exactly one of Error, Success
// or Redirect is set.
type Result struct {
	Error    string
	Success  string
	Redirect string
	Fields   map[string]string
	Kind     apperrors.Kind
}

// Fail builds an error result of the given kind.
func Fail(kind apperrors.Kind, message string) Result {
	return Result{Error: message, Kind: kind}
}

// Succeed builds a success result.
func Succeed(message string) Result {
	return Result{Success: message}
}

// RedirectTo builds a result that sends the client to location.
func RedirectTo(location string) Result {
	return Result{Redirect: location}
}

// WithFields attaches non-secret inputs so the form can be re-rendered.
func (r Result) WithFields(fields map[string]string) Result {
	r.Fields = fields
	return r
}

// Failed reports whether r carries an error message.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Status maps the result onto an HTTP status code.
func (r Result) Status() int {
	switch {
	case r.Redirect != "":
		return http.StatusSeeOther
	case r.Error != "":
		if r.Kind == "" {
			return apperrors.StatusForKind(apperrors.KindValidation)
		}
		return apperrors.StatusForKind(r.Kind)
	default:
		return http.StatusOK
	}
}

// Outcome is a low-cardinality label for metrics.
func (r Result) Outcome() string {
	switch {
	case r.Redirect != "":
		return "redirect"
	case r.Error != "":
		if r.Kind == "" {
			return string(apperrors.KindValidation)
		}
		return string(r.Kind)
	default:
		return "success"
	}
}
