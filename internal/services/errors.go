package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/teamkit/pkg/errors"
)

var (
	// ErrUserNotFound indicates no active user matches the lookup.
	ErrUserNotFound = apperrors.NewNotFound("User not found")
	// ErrEmailTaken signals an active user already owns the address.
	ErrEmailTaken = apperrors.NewConflict("Email is already in use.")
	// ErrTeamNotFound indicates the user has no team membership or the team is gone.
	ErrTeamNotFound = apperrors.NewNotFound("Team not found")
	// ErrAlreadyMember signals a duplicate (user, team) membership.
	ErrAlreadyMember = apperrors.NewConflict("User is already a member of this team")
	// ErrInvitationNotFound indicates no pending invitation matches id and email.
	ErrInvitationNotFound = apperrors.NewState("Invalid or expired invitation.")
	// ErrInvitationStale is returned when an invitation was already accepted.
	ErrInvitationStale = apperrors.NewState("Invalid or expired invitation.")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
