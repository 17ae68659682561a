package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/pkg/crypto"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateAndSeedData(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrateAndSeed(db))

	var user models.User
	require.NoError(t, db.Where("email = ?", SeedEmail).Take(&user).Error)
	require.True(t, crypto.VerifyPassword(user.PasswordHash, SeedPassword))
	require.Equal(t, models.RoleOwner, user.Role)

	var member models.TeamMember
	require.NoError(t, db.Preload("Team").Where("user_id = ?", user.ID).Take(&member).Error)
	require.Equal(t, models.RoleOwner, member.Role)
	require.Equal(t, "Test Team", member.Team.Name)

	// Seeding twice must not duplicate rows.
	result, err := SeedData(db)
	require.NoError(t, err)
	require.False(t, result.Created)

	var teams int64
	require.NoError(t, db.Model(&models.Team{}).Count(&teams).Error)
	require.Equal(t, int64(1), teams)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared&_foreign_keys=1"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	return db
}
