package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/teamkit/internal/billing"
	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
	"github.com/charlesng35/teamkit/pkg/metrics"
)

const (
	msgInvalidCredentials = "Invalid email or password. Please try again."
	msgCreateUserFailed   = "Failed to create user. Please try again."
	msgInvalidInvitation  = "Invalid or expired invitation."
)

type signInForm struct {
	Email    string `form:"email" validate:"required,email,min=3,max=255"`
	Password string `form:"password" validate:"required,min=8,max=100"`
}

type signUpForm struct {
	Email    string `form:"email" validate:"required,email,min=3,max=255"`
	Password string `form:"password" validate:"required,min=8,max=100"`
	InviteID string `form:"inviteId"`
}

type signOutForm struct{}

// SignIn authenticates by email and password. Unknown emails and wrong
// passwords produce the same message.
func (a *Actions) SignIn(ctx context.Context, req Request) (Result, error) {
	return Validated(a.signIn)(ctx, req)
}

func (a *Actions) signIn(ctx context.Context, form signInForm, req Request) (Result, error) {
	fields := map[string]string{"email": form.Email}

	found, err := a.store.Users.GetByEmailWithTeam(ctx, form.Email)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return Result{}, err
	}
	if found == nil {
		a.verifyDecoy(ctx, form.Password)
	}
	if found == nil || !a.hasher.Verify(ctx, form.Password, found.User.PasswordHash) {
		metrics.AuthAttempts.WithLabelValues("sign_in", "failure").Inc()
		return Fail(kindAuth, msgInvalidCredentials).WithFields(fields), nil
	}

	if err := req.Session.Set(found.User.ID); err != nil {
		return Result{}, fmt.Errorf("sign in: issue session: %w", err)
	}
	a.recordActivity(ctx, found.TeamID, found.User.ID, models.ActivitySignIn, req, nil)
	metrics.AuthAttempts.WithLabelValues("sign_in", "success").Inc()

	return a.postAuthRedirect(ctx, req, found.User, found.TeamID)
}

var (
	errSignUpEmailTaken = errors.New("sign up: email taken")
	errSignUpInvitation = errors.New("sign up: invalid invitation")
)

// SignUp creates a user and either joins the invited team or founds a new one.
// All writes commit together or not at all.
func (a *Actions) SignUp(ctx context.Context, req Request) (Result, error) {
	return Validated(a.signUp)(ctx, req)
}

func (a *Actions) signUp(ctx context.Context, form signUpForm, req Request) (Result, error) {
	fields := map[string]string{"email": form.Email}

	taken, err := a.store.Users.EmailInUse(ctx, form.Email, "")
	if err != nil {
		return Result{}, err
	}
	if taken {
		metrics.AuthAttempts.WithLabelValues("sign_up", "failure").Inc()
		return Fail(kindConflict, msgCreateUserFailed).WithFields(fields), nil
	}

	hash, invalid, err := a.hashPassword(ctx, form.Password)
	if err != nil {
		return Result{}, fmt.Errorf("sign up: hash password: %w", err)
	}
	if invalid != nil {
		metrics.AuthAttempts.WithLabelValues("sign_up", "failure").Inc()
		return invalid.WithFields(fields), nil
	}

	var (
		user   *models.User
		teamID string
	)
	err = a.store.Transaction(ctx, func(tx *services.Store) error {
		var err error
		user, teamID, err = a.createAccount(ctx, tx, form, hash, req)
		return err
	})
	switch {
	case errors.Is(err, errSignUpEmailTaken):
		metrics.AuthAttempts.WithLabelValues("sign_up", "failure").Inc()
		return Fail(kindConflict, msgCreateUserFailed).WithFields(fields), nil
	case errors.Is(err, errSignUpInvitation):
		metrics.AuthAttempts.WithLabelValues("sign_up", "failure").Inc()
		return Fail(kindState, msgInvalidInvitation).WithFields(fields), nil
	case err != nil:
		return Result{}, err
	}

	if err := req.Session.Set(user.ID); err != nil {
		return Result{}, fmt.Errorf("sign up: issue session: %w", err)
	}
	metrics.AuthAttempts.WithLabelValues("sign_up", "success").Inc()

	return a.postAuthRedirect(ctx, req, user, teamID)
}

// createAccount runs inside the sign-up transaction. It returns the new user
// and the team it joined.
func (a *Actions) createAccount(ctx context.Context, tx *services.Store, form signUpForm, hash string, req Request) (*models.User, string, error) {
	var (
		invitation *models.Invitation
		memberRole = models.RoleOwner
	)
	if inviteID := strings.TrimSpace(form.InviteID); inviteID != "" {
		inv, err := tx.Invitations.FindPending(ctx, inviteID, form.Email)
		if err != nil {
			if errors.Is(err, services.ErrInvitationNotFound) {
				return nil, "", errSignUpInvitation
			}
			return nil, "", err
		}
		invitation = inv
		memberRole = inv.Role
	}

	user := &models.User{Email: form.Email, PasswordHash: hash, Role: models.RoleOwner}
	if err := tx.Users.Create(ctx, user); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return nil, "", errSignUpEmailTaken
		}
		return nil, "", err
	}

	var teamID string
	if invitation != nil {
		if err := tx.Invitations.Accept(ctx, invitation.ID); err != nil {
			if errors.Is(err, services.ErrInvitationStale) {
				return nil, "", errSignUpInvitation
			}
			return nil, "", err
		}
		teamID = invitation.TeamID
		if err := tx.Activity.Log(ctx, activityEntry(teamID, user.ID, models.ActivityAcceptInvitation, req)); err != nil {
			return nil, "", err
		}
	} else {
		team, err := tx.Teams.Create(ctx, teamNameFor(user.Email))
		if err != nil {
			return nil, "", err
		}
		teamID = team.ID
		if err := tx.Activity.Log(ctx, activityEntry(teamID, user.ID, models.ActivityCreateTeam, req)); err != nil {
			return nil, "", err
		}
	}

	if _, err := tx.Teams.AddMember(ctx, teamID, user.ID, memberRole); err != nil {
		return nil, "", err
	}
	if err := tx.Activity.Log(ctx, activityEntry(teamID, user.ID, models.ActivitySignUp, req)); err != nil {
		return nil, "", err
	}
	return user, teamID, nil
}

func teamNameFor(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	return local + "'s Team"
}

// SignOut records the event and clears the session cookie.
func (a *Actions) SignOut(ctx context.Context, req Request) (Result, error) {
	return ValidatedWithUser(a.store.Users, a.signOut)(ctx, req)
}

func (a *Actions) signOut(ctx context.Context, _ signOutForm, req Request, user *models.User) (Result, error) {
	found, err := a.store.Users.GetWithTeam(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	a.recordActivity(ctx, found.TeamID, user.ID, models.ActivitySignOut, req, nil)
	req.Session.Clear()
	return RedirectTo(SignInPath), nil
}

// postAuthRedirect resumes a pending checkout when the form asked for one.
func (a *Actions) postAuthRedirect(ctx context.Context, req Request, user *models.User, teamID string) (Result, error) {
	priceID := strings.TrimSpace(req.Form.Get("priceId"))
	if req.Form.Get("redirect") != "checkout" || priceID == "" {
		return RedirectTo(DashboardPath), nil
	}

	var team *models.Team
	if teamID != "" {
		t, err := a.store.Teams.GetByID(ctx, teamID)
		if err != nil && !errors.Is(err, services.ErrTeamNotFound) {
			return Result{}, err
		}
		team = t
	}

	target, err := a.checkout.CheckoutURL(ctx, billing.CheckoutRequest{User: user, Team: team, PriceID: priceID})
	if err != nil {
		a.log.Error("build checkout url failed", zap.String("user_id", user.ID), zap.Error(err))
		return Result{}, fmt.Errorf("checkout redirect: %w", err)
	}
	return RedirectTo(target), nil
}
