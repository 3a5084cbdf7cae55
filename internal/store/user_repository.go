package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/condocore/condo-manager/internal/domain"
)

// UserRepository is the persistence boundary for domain.User, grounded on
// the CRUD shape of the retrieval pack's sqlstore repositories: one query
// per operation, domain.Error returned instead of a bare *sql.DB error.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new user, normalizing Role to its canonical lowercase
// form. A username/email collision is reported as domain.KindDuplicate.
func (r *UserRepository) Create(ctx context.Context, draft domain.UserDraft) (*domain.User, error) {
	role := normalizeRole(draft.Role)
	if !validRole(role) {
		return nil, domain.New(domain.KindValidation, "role must be admin, resident, or guest")
	}
	if len(strings.TrimSpace(draft.Username)) < 3 {
		return nil, domain.New(domain.KindValidation, "username must be at least 3 characters")
	}
	if !strings.Contains(draft.Email, "@") {
		return nil, domain.New(domain.KindValidation, "email must contain '@'")
	}
	if len(strings.TrimSpace(draft.FullName)) < 2 {
		return nil, domain.New(domain.KindValidation, "full_name must be at least 2 characters")
	}

	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, full_name, condo_unit, phone, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Username, draft.Email, draft.PasswordHash, string(role), draft.FullName,
		draft.CondoUnit, draft.Phone, draft.IsActive, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Wrap(domain.KindDuplicate, "username or email already exists", err)
		}
		if isBusy(err) {
			return nil, domain.Wrap(domain.KindDbBusy, "database busy", err)
		}
		return nil, domain.Wrap(domain.KindDB, "create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, domain.Wrap(domain.KindDB, "create user: last insert id", err)
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.QueryRowContext(ctx, selectUserColumns+` WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.DB.QueryRowContext(ctx, selectUserColumns+` WHERE username = ?`, username)
	return scanUser(row)
}

func (r *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, selectUserColumns+` ORDER BY username`)
	if err != nil {
		return nil, domain.Wrap(domain.KindDB, "list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, domain.Wrap(domain.KindDB, "scan user", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update merges the non-nil fields of patch into the stored row. Role is
// re-normalized to its canonical lowercase value when present.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	sets := []string{}
	args := []any{}

	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *patch.PasswordHash)
	}
	if patch.Role != nil {
		role := normalizeRole(*patch.Role)
		if !validRole(role) {
			return nil, domain.New(domain.KindValidation, "role must be admin, resident, or guest")
		}
		sets = append(sets, "role = ?")
		args = append(args, string(role))
	}
	if patch.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *patch.FullName)
	}
	if patch.CondoUnit != nil {
		sets = append(sets, "condo_unit = ?")
		args = append(args, *patch.CondoUnit)
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *patch.Phone)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Wrap(domain.KindDuplicate, "email already exists", err)
		}
		return nil, domain.Wrap(domain.KindDB, "update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.New(domain.KindNotFound, "user not found")
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return domain.Wrap(domain.KindDB, "update last login", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.New(domain.KindNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.Wrap(domain.KindDB, "delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.New(domain.KindNotFound, "user not found")
	}
	return nil
}

const selectUserColumns = `
	SELECT id, username, email, password_hash, role, full_name, condo_unit, phone, is_active, created_at, last_login
	FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*domain.User, error) {
	u, err := scanUserRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.New(domain.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindDB, "scan user", err)
	}
	return u, nil
}

func scanUserRows(s rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	var condoUnit, phone sql.NullString
	var lastLogin sql.NullTime

	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.FullName,
		&condoUnit, &phone, &u.IsActive, &u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if condoUnit.Valid {
		u.CondoUnit = &condoUnit.String
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

// normalizeRole lowercases and trims a role value; the historical bug this
// fixes is the store comparing a mixed-case role string against a canonical
// constant and silently treating every resident as a guest.
func normalizeRole(r domain.Role) domain.Role {
	return domain.Role(strings.ToLower(strings.TrimSpace(string(r))))
}

func validRole(r domain.Role) bool {
	switch r {
	case domain.RoleAdmin, domain.RoleResident, domain.RoleGuest:
		return true
	default:
		return false
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
