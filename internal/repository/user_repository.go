package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/utils"
)

const userColumns = "id,first_name,last_name,email,password_hash,role,provider,profile_image,confirmed_at,change_credentials_time,slug,version,updated_by,freezed_at,restored_at,created_at,updated_at"

// UserRepo persists identity records. All reads are paranoid by default:
// a frozen user is invisible, which is what makes token verification fail
// for deleted accounts.
type UserRepo struct {
	FreezableStore
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{FreezableStore{DB: db, Table: "users"}}
}

// Create inserts a password-holding (SYSTEM provider) user and returns its
// ID. The plaintext password is hashed here and never stored.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int, confirmed bool) (uint64, error) {
	firstName, lastName := splitUsername(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashCredential(password, cost)
	if err != nil {
		return 0, err
	}
	query := "INSERT INTO users (first_name, last_name, email, password_hash, role, provider, slug) VALUES (?,?,?,?,?,?,?)"
	if confirmed {
		// dev environments auto-confirm on signup
		query = "INSERT INTO users (first_name, last_name, email, password_hash, role, provider, slug, confirmed_at) VALUES (?,?,?,?,?,?,?,UTC_TIMESTAMP())"
	}
	args := []any{firstName, lastName, email, hash, model.RoleUser, model.ProviderSystem,
		utils.Slugify(firstName + " " + lastName)}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateExternal inserts a user authenticated by an external provider.
// External identities carry no password hash and arrive pre-confirmed;
// exactly one of {password present, provider external} ever holds.
func (r *UserRepo) CreateExternal(ctx context.Context, username, email, provider string, profileImage *string) (uint64, error) {
	firstName, lastName := splitUsername(username)
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, role, provider, profile_image, slug, confirmed_at) VALUES (?,?,?,?,?,?,?,UTC_TIMESTAMP())",
		firstName, lastName, email, model.RoleUser, provider, profileImage,
		utils.Slugify(firstName+" "+lastName))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a live user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+scopeLive("email=?")+" LIMIT 1", email)
	return scanUser(row)
}

// GetLiveByID fetches a live user by primary key. Token verification
// depends on this read being paranoid: a frozen account has no live row
// and its tokens stop verifying immediately.
func (r *UserRepo) GetLiveByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+scopeLive("id=?")+" LIMIT 1", id)
	return scanUser(row)
}

// Confirm marks an email-confirmation as complete. Confirming an already
// confirmed or missing account reports ErrNotFound.
func (r *UserRepo) Confirm(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET confirmed_at=UTC_TIMESTAMP(), version=version+1 WHERE "+scopeLive("id=? AND confirmed_at IS NULL"), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserPatch carries the optional profile fields an update may touch.
type UserPatch struct {
	Username     *string // split into first/last; slug re-derived
	ProfileImage *string
}

// UpdateProfile applies a profile patch to a live user. The slug and
// version columns are maintained by the shared freezable layer.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, actor uint64, patch UserPatch) error {
	var b setBuilder
	if patch.Username != nil {
		first, last := splitUsername(*patch.Username)
		b.SetSplitName(first, last)
	}
	if patch.ProfileImage != nil {
		b.Set("profile_image", *patch.ProfileImage)
	}
	if b.Empty() {
		return nil
	}
	b.Set("updated_by", actor)
	set, args := b.Clause()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+set+" WHERE "+scopeLive("id=?"), append(args, id)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword stores a new bcrypt password hash and stamps
// change_credentials_time, which invalidates every token issued before
// this instant.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, change_credentials_time=UTC_TIMESTAMP(), version=version+1 WHERE "+scopeLive("id=?"), hash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func splitUsername(username string) (first, last string) {
	parts := strings.Fields(username)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &u.Provider, &u.ProfileImage, &u.ConfirmedAt, &u.ChangeCredentialsTime,
		&u.Slug, &u.Version, &u.UpdatedBy, &u.FreezedAt, &u.RestoredAt,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}
