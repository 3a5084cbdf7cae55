package service

import (
	"context"
	"time"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/security"
	"github.com/condocore/condo-manager/internal/store"
	"github.com/rs/zerolog"
)

type UserService struct {
	Users *store.UserRepository
	Log   zerolog.Logger
}

func NewUserService(users *store.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{Users: users, Log: log}
}

// Authenticate verifies username/password, updates last_login on success,
// and returns the user. A missing user or bad password both return
// (nil, nil) — authentication failure is not itself an error condition.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if domain.IsKind(err, domain.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !security.Verify(password, u.PasswordHash) {
		return nil, nil
	}

	now := time.Now().UTC()
	if err := s.Users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		// Per contract, a last_login write failure never fails authentication.
		s.Log.Error().Err(err).Int64("user_id", u.ID).Msg("failed to record last login")
	} else {
		u.LastLogin = &now
	}
	return u, nil
}

// DisplayUser is the projection GetUsersForDisplay returns: enough to
// render a list view, nothing sensitive.
type DisplayUser struct {
	ID        int64
	Username  string
	FullName  string
	Role      domain.Role
	CondoUnit *string
	IsActive  bool
}

func (s *UserService) GetUsersForDisplay(ctx context.Context) ([]DisplayUser, error) {
	users, err := s.Users.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DisplayUser, len(users))
	for i, u := range users {
		out[i] = DisplayUser{
			ID:        u.ID,
			Username:  u.Username,
			FullName:  u.FullName,
			Role:      u.Role,
			CondoUnit: u.CondoUnit,
			IsActive:  u.IsActive,
		}
	}
	return out, nil
}

// APIUserDetails is the shape GetUserDetailsForAPI returns: the password
// hash is never included, and role is expanded into the two permission
// booleans the HTTP collaborator gates on.
type APIUserDetails struct {
	ID               int64
	Username         string
	Email            string
	FullName         string
	Role             domain.Role
	CondoUnit        *string
	Phone            *string
	IsActive         bool
	CanManageUsers   bool
	CanAccessFinances bool
}

func GetUserDetailsForAPI(u *domain.User) APIUserDetails {
	return APIUserDetails{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FullName:          u.FullName,
		Role:              u.Role,
		CondoUnit:         u.CondoUnit,
		Phone:             u.Phone,
		IsActive:          u.IsActive,
		CanManageUsers:    u.Role == domain.RoleAdmin,
		CanAccessFinances: u.Role == domain.RoleAdmin,
	}
}
