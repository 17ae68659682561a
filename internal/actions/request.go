package actions

import (
	"context"
	"errors"
	"net/url"

	"github.com/charlesng35/teamkit/internal/auth"
	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
	apperrors "github.com/charlesng35/teamkit/pkg/errors"
)

const (
	kindValidation = apperrors.KindValidation
	kindAuth       = apperrors.KindAuth
	kindConflict   = apperrors.KindConflict
	kindState      = apperrors.KindState
	kindNotFound   = apperrors.KindNotFound
)

// Session is the per-request session handle an action may read or mutate.
// *auth.RequestSession implements it.
type Session interface {
	Set(userID string) error
	Get() *auth.SessionPayload
	Clear()
}

// Request carries everything an action needs from the inbound request.
type Request struct {
	Form     url.Values
	ClientIP string
	Session  Session
}

// Handler is an action bound to its schema.
type Handler func(ctx context.Context, req Request) (Result, error)

// UserLookup resolves the user named by a session.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Validated decodes the form into T and validates it. The first validation
// message is returned as an error result and fn is not called.
func Validated[T any](fn func(ctx context.Context, data T, req Request) (Result, error)) Handler {
	return func(ctx context.Context, req Request) (Result, error) {
		var data T
		if res, ok := bindForm(req.Form, &data); !ok {
			return res, nil
		}
		return fn(ctx, data, req)
	}
}

// ValidatedWithUser is Validated for actions that need a signed-in user. A
// missing, invalid or expired session, or a deleted user, yields
// {error: "Unauthorized"} before the form is looked at.
func ValidatedWithUser[T any](users UserLookup, fn func(ctx context.Context, data T, req Request, user *models.User) (Result, error)) Handler {
	return func(ctx context.Context, req Request) (Result, error) {
		user, err := currentUser(ctx, users, req.Session)
		if err != nil {
			return Result{}, err
		}
		if user == nil {
			return Fail(kindAuth, apperrors.ErrUnauthorized.Message), nil
		}

		var data T
		if res, ok := bindForm(req.Form, &data); !ok {
			return res, nil
		}
		return fn(ctx, data, req, user)
	}
}

// currentUser returns nil without error when nobody is signed in.
func currentUser(ctx context.Context, users UserLookup, session Session) (*models.User, error) {
	if session == nil {
		return nil, nil
	}
	payload := session.Get()
	if payload == nil {
		return nil, nil
	}

	user, err := users.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
