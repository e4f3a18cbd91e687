package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/backend/internal/model"
	jwtpkg "github.com/taskflow/backend/pkg/jwt"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret, 1)

	user, token, _, err := svc.Register("alice@example.com", "s3cret-pass", "Alice", "Smith", "")
	require.NoError(t, err)
	require.Equal(t, model.RoleEmployee, user.Role)
	require.NotEqual(t, "s3cret-pass", user.Password)

	claims, err := jwtpkg.ParseToken(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, model.RoleEmployee, claims.Role)

	logged, _, _, err := svc.Login("alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret, 1)

	_, _, _, err := svc.Register("alice@example.com", "s3cret-pass", "", "", "")
	require.NoError(t, err)

	_, _, _, err = svc.Register("alice@example.com", "other-pass", "", "", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40005")
}

func TestRegisterInvalidRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret, 1)

	_, _, _, err := svc.Register("alice@example.com", "s3cret-pass", "", "", "admin")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40001")
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret, 1)

	_, _, _, err := svc.Register("alice@example.com", "s3cret-pass", "", "", "")
	require.NoError(t, err)

	_, _, _, err = svc.Login("alice@example.com", "wrong")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40006")

	_, _, _, err = svc.Login("nobody@example.com", "s3cret-pass")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40006")
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret, 1)

	user, _, _, err := svc.Register("alice@example.com", "s3cret-pass", "", "", "")
	require.NoError(t, err)

	err = svc.ChangePassword(user.ID, "wrong", "new-password")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40007")

	require.NoError(t, svc.ChangePassword(user.ID, "s3cret-pass", "new-password"))

	_, _, _, err = svc.Login("alice@example.com", "new-password")
	require.NoError(t, err)
}

func TestListEmployeesExcludesScrumMasters(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret, 1)

	createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	createUser(t, db, "alice@example.com", model.RoleEmployee)
	createUser(t, db, "bob@example.com", model.RoleEmployee)

	employees, err := svc.ListEmployees()
	require.NoError(t, err)
	require.Len(t, employees, 2)
	for _, u := range employees {
		require.Equal(t, model.RoleEmployee, u.Role)
	}
}
