package actions

import (
	"context"

	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
)

const (
	msgNoTeam            = "User is not part of a team"
	msgMemberNotFound    = "Team member not found"
	msgMemberRemoved     = "Team member removed successfully"
	msgAlreadyMember     = "User is already a member of this team"
	msgAlreadyInvited    = "An invitation has already been sent to this email"
	msgInvitationCreated = "Invitation sent successfully"
)

type removeTeamMemberForm struct {
	MemberID string `form:"memberId" validate:"required,uuid"`
}

type inviteTeamMemberForm struct {
	Email string `form:"email" validate:"required,email,max=255"`
	Role  string `form:"role" validate:"required,oneof=member admin owner"`
}

// RemoveTeamMember deletes a membership of the caller's team. Memberships of
// other teams are reported as not found.
func (a *Actions) RemoveTeamMember(ctx context.Context, req Request) (Result, error) {
	return ValidatedWithUser(a.store.Users, a.removeTeamMember)(ctx, req)
}

func (a *Actions) removeTeamMember(ctx context.Context, form removeTeamMemberForm, req Request, user *models.User) (Result, error) {
	found, err := a.store.Users.GetWithTeam(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	if found.TeamID == "" {
		return Fail(kindValidation, msgNoTeam), nil
	}

	removed, err := a.store.Teams.RemoveMember(ctx, found.TeamID, form.MemberID)
	if err != nil {
		return Result{}, err
	}
	if !removed {
		return Fail(kindNotFound, msgMemberNotFound), nil
	}

	a.recordActivity(ctx, found.TeamID, user.ID, models.ActivityRemoveMember, req, map[string]any{
		"member_id": form.MemberID,
	})
	return Succeed(msgMemberRemoved), nil
}

// InviteTeamMember records a pending invitation to the caller's team.
func (a *Actions) InviteTeamMember(ctx context.Context, req Request) (Result, error) {
	return ValidatedWithUser(a.store.Users, a.inviteTeamMember)(ctx, req)
}

func (a *Actions) inviteTeamMember(ctx context.Context, form inviteTeamMemberForm, req Request, user *models.User) (Result, error) {
	fields := map[string]string{"email": form.Email, "role": form.Role}

	found, err := a.store.Users.GetWithTeam(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	if found.TeamID == "" {
		return Fail(kindValidation, msgNoTeam).WithFields(fields), nil
	}

	member, err := a.store.Teams.IsMemberByEmail(ctx, found.TeamID, form.Email)
	if err != nil {
		return Result{}, err
	}
	if member {
		return Fail(kindConflict, msgAlreadyMember).WithFields(fields), nil
	}

	pending, err := a.store.Invitations.HasPending(ctx, found.TeamID, form.Email)
	if err != nil {
		return Result{}, err
	}
	if pending {
		return Fail(kindConflict, msgAlreadyInvited).WithFields(fields), nil
	}

	role := models.Role(form.Role)
	err = a.store.Transaction(ctx, func(tx *services.Store) error {
		inv, err := tx.Invitations.Create(ctx, found.TeamID, form.Email, role, user.ID)
		if err != nil {
			return err
		}
		entry := activityEntry(found.TeamID, user.ID, models.ActivityInviteMember, req)
		entry.Metadata = map[string]any{"invitation_id": inv.ID, "email": inv.Email, "role": string(inv.Role)}
		return tx.Activity.Log(ctx, entry)
	})
	if err != nil {
		return Result{}, err
	}

	return Succeed(msgInvitationCreated), nil
}
