package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorwatch/internal/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db)
}

func TestRegisterAndResolveToken(t *testing.T) {
	svc := newTestService(t)

	user, token, err := svc.Register("a@example.com", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotEmpty(t, token)
	assert.Equal(t, "a@example.com", user.Email)

	resolved, err := svc.UserFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Register("", "hunter2")
	require.Error(t, err)

	_, _, err = svc.Register("a@example.com", "")
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Register("a@example.com", "hunter2")
	require.NoError(t, err)

	_, _, err = svc.Register("a@example.com", "different")
	require.ErrorIs(t, err, database.ErrDuplicate)
}

func TestPasswordIsHashed(t *testing.T) {
	svc := newTestService(t)

	user, _, err := svc.Register("a@example.com", "hunter2")
	require.NoError(t, err)

	stored, err := svc.db.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter2", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.Register("a@example.com", "hunter2")
	require.NoError(t, err)

	user, token, err := svc.Login("a@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.Register("a@example.com", "hunter2")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login("a@example.com", "nope")
	require.ErrorIs(t, wrongPassword, ErrAuth)

	_, _, unknownEmail := svc.Login("nobody@example.com", "hunter2")
	require.ErrorIs(t, unknownEmail, ErrAuth)

	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newTestService(t)
	_, token, err := svc.Register("a@example.com", "hunter2")
	require.NoError(t, err)

	svc.Logout(token)

	_, err = svc.UserFromToken(token)
	require.ErrorIs(t, err, ErrAuth)

	// Logging out again is harmless.
	svc.Logout(token)
}

func TestUserFromUnknownToken(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.UserFromToken("not-a-token")
	require.ErrorIs(t, err, ErrAuth)
}
