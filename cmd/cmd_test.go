package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command against a throwaway sqlite file
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", "sqlite://"+dbPath)

	originalDB, originalCfg := config.GetDB(), config.GetConfig()
	t.Cleanup(func() {
		config.SetDB(originalDB)
		config.SetConfig(originalCfg)
		services.SetAuditService(nil)
		services.SetCacheService(nil)
		services.SetEmailService(nil)
		services.SetEventPublisher(nil)
		services.SetImageService(nil)
	})

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "shahzaib-autos dev")
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "autos.db")

	out, err := run(t, dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	db, err := config.OpenDatabase("sqlite://"+dbPath, true)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&models.Order{}))
	assert.True(t, db.Migrator().HasTable(&models.AuditLog{}))
}

func TestAdminCreateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "autos.db")

	out, err := run(t, dbPath, "admin", "create",
		"--email", "Owner@ShahzaibAutos.pk",
		"--name", "Shahzaib",
		"--password", "correct-horse-battery",
	)
	require.NoError(t, err)
	assert.Contains(t, out, `created OWNER admin "owner@shahzaibautos.pk"`)

	db, err := config.OpenDatabase("sqlite://"+dbPath, true)
	require.NoError(t, err)
	var admin models.Admin
	require.NoError(t, db.Where("email = ?", "owner@shahzaibautos.pk").First(&admin).Error)
	assert.Equal(t, models.RoleOwner, admin.Role)
	assert.True(t, admin.Active)

	_, err = run(t, dbPath, "admin", "create",
		"--email", "owner@shahzaibautos.pk",
		"--name", "Again",
		"--password", "correct-horse-battery",
	)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestAdminCreateCommand_InvalidRole(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "autos.db")

	_, err := run(t, dbPath, "admin", "create",
		"--email", "clerk@shahzaibautos.pk",
		"--name", "Clerk",
		"--password", "correct-horse-battery",
		"--role", "CLERK",
	)
	assert.ErrorIs(t, err, services.ErrInvalidRole)
}

func TestSweepCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "autos.db")
	_, err := run(t, dbPath, "migrate")
	require.NoError(t, err)

	out, err := run(t, dbPath, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "marked 0 order(s) stale")
}
