package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
)

const (
	msgCurrentPasswordIncorrect = "Current password is incorrect."
	msgPasswordUnchanged        = "New password must be different from the current password."
	msgPasswordMismatch         = "New password and confirmation password do not match."
	msgPasswordUpdated          = "Password updated successfully."
	msgDeleteWrongPassword      = "Incorrect password. Account deletion failed."
	msgAccountUpdated           = "Account updated successfully."
	msgEmailInUse               = "Email is already in use."
)

type updatePasswordForm struct {
	CurrentPassword string `form:"currentPassword" validate:"required,min=8,max=100"`
	NewPassword     string `form:"newPassword" validate:"required,min=8,max=100"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,min=8,max=100"`
}

type deleteAccountForm struct {
	Password string `form:"password" validate:"required,min=8,max=100"`
}

type updateAccountForm struct {
	Name  string `form:"name" validate:"required,min=1,max=100"`
	Email string `form:"email" validate:"required,email,max=255"`
}

// UpdatePassword replaces the signed-in user's password after re-checking the
// current one.
func (a *Actions) UpdatePassword(ctx context.Context, req Request) (Result, error) {
	return ValidatedWithUser(a.store.Users, a.updatePassword)(ctx, req)
}

func (a *Actions) updatePassword(ctx context.Context, form updatePasswordForm, req Request, user *models.User) (Result, error) {
	if !a.hasher.Verify(ctx, form.CurrentPassword, user.PasswordHash) {
		return Fail(kindValidation, msgCurrentPasswordIncorrect), nil
	}
	if form.CurrentPassword == form.NewPassword {
		return Fail(kindValidation, msgPasswordUnchanged), nil
	}
	if form.ConfirmPassword != form.NewPassword {
		return Fail(kindValidation, msgPasswordMismatch), nil
	}

	hash, invalid, err := a.hashPassword(ctx, form.NewPassword)
	if err != nil {
		return Result{}, fmt.Errorf("update password: hash: %w", err)
	}
	if invalid != nil {
		return *invalid, nil
	}
	if err := a.store.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return Result{}, err
	}

	found, err := a.store.Users.GetWithTeam(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	a.recordActivity(ctx, found.TeamID, user.ID, models.ActivityUpdatePassword, req, nil)

	return Succeed(msgPasswordUpdated), nil
}

// DeleteAccount soft-deletes the signed-in user, drops its team membership and
// signs it out.
func (a *Actions) DeleteAccount(ctx context.Context, req Request) (Result, error) {
	return ValidatedWithUser(a.store.Users, a.deleteAccount)(ctx, req)
}

func (a *Actions) deleteAccount(ctx context.Context, form deleteAccountForm, req Request, user *models.User) (Result, error) {
	if !a.hasher.Verify(ctx, form.Password, user.PasswordHash) {
		return Fail(kindValidation, msgDeleteWrongPassword), nil
	}

	found, err := a.store.Users.GetWithTeam(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}

	err = a.store.Transaction(ctx, func(tx *services.Store) error {
		if err := tx.Activity.Log(ctx, activityEntry(found.TeamID, user.ID, models.ActivityDeleteAccount, req)); err != nil {
			return err
		}
		if err := tx.Users.SoftDelete(ctx, user); err != nil {
			return err
		}
		if found.TeamID != "" {
			return tx.Teams.RemoveUserMemberships(ctx, user.ID, found.TeamID)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	req.Session.Clear()
	return RedirectTo(SignInPath), nil
}

// UpdateAccount changes the signed-in user's name and email.
func (a *Actions) UpdateAccount(ctx context.Context, req Request) (Result, error) {
	return ValidatedWithUser(a.store.Users, a.updateAccount)(ctx, req)
}

func (a *Actions) updateAccount(ctx context.Context, form updateAccountForm, req Request, user *models.User) (Result, error) {
	fields := map[string]string{"name": form.Name, "email": form.Email}

	inUse, err := a.store.Users.EmailInUse(ctx, form.Email, user.ID)
	if err != nil {
		return Result{}, err
	}
	if inUse {
		return Fail(kindConflict, msgEmailInUse).WithFields(fields), nil
	}

	if err := a.store.Users.UpdateAccount(ctx, user.ID, form.Name, form.Email); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return Fail(kindConflict, msgEmailInUse).WithFields(fields), nil
		}
		return Result{}, err
	}

	found, err := a.store.Users.GetWithTeam(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	a.recordActivity(ctx, found.TeamID, user.ID, models.ActivityUpdateAccount, req, nil)

	return Succeed(msgAccountUpdated).WithFields(fields), nil
}
