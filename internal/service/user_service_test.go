package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/security"
	"github.com/condocore/condo-manager/internal/service"
	"github.com/condocore/condo-manager/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const usersSchemaForService = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	full_name TEXT NOT NULL,
	condo_unit TEXT,
	phone TEXT,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	last_login TIMESTAMP
);`

func newUserServiceTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(usersSchemaForService)
	require.NoError(t, err)
	return db
}

func TestUserService_Authenticate_Success(t *testing.T) {
	db := newUserServiceTestDB(t, "svc-user-1")
	repo := store.NewUserRepository(db)
	svc := service.NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	hash, err := security.Hash("correct-horse")
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.UserDraft{
		Username: "maria", Email: "maria@example.com", PasswordHash: hash,
		Role: domain.RoleResident, FullName: "Maria", IsActive: true,
	})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "maria", "correct-horse")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotNil(t, u.LastLogin)
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	db := newUserServiceTestDB(t, "svc-user-2")
	repo := store.NewUserRepository(db)
	svc := service.NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	hash, err := security.Hash("correct-horse")
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.UserDraft{
		Username: "maria", Email: "maria@example.com", PasswordHash: hash,
		Role: domain.RoleResident, FullName: "Maria", IsActive: true,
	})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "maria", "wrong")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestUserService_Authenticate_UnknownUser(t *testing.T) {
	db := newUserServiceTestDB(t, "svc-user-3")
	repo := store.NewUserRepository(db)
	svc := service.NewUserService(repo, zerolog.Nop())

	u, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestUserService_Authenticate_InactiveUser(t *testing.T) {
	db := newUserServiceTestDB(t, "svc-user-4")
	repo := store.NewUserRepository(db)
	svc := service.NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	hash, err := security.Hash("pw")
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.UserDraft{
		Username: "inactive", Email: "inactive@example.com", PasswordHash: hash,
		Role: domain.RoleGuest, FullName: "Ian Active", IsActive: false,
	})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "inactive", "pw")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestGetUserDetailsForAPI_OmitsHashAndDerivesPermissions(t *testing.T) {
	admin := &domain.User{ID: 1, Username: "root", PasswordHash: "secret-hash", Role: domain.RoleAdmin}
	details := service.GetUserDetailsForAPI(admin)
	require.True(t, details.CanManageUsers)
	require.True(t, details.CanAccessFinances)

	resident := &domain.User{ID: 2, Username: "res", PasswordHash: "secret-hash", Role: domain.RoleResident}
	rDetails := service.GetUserDetailsForAPI(resident)
	require.False(t, rDetails.CanManageUsers)
	require.False(t, rDetails.CanAccessFinances)
}
