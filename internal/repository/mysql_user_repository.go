package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/tiered-catalog/internal/model"
)

const userColumns = `id,username,email,password_hash,tier,is_admin,verified,
	verification_token,verification_token_expires_at,reset_password_token,reset_password_expires_at,
	created_at,updated_at`

// UserRepo is the MySQL credential store backed by the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// isDuplicate reports a MySQL unique-key violation (error 1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// Create inserts u and assigns a fresh UUID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,username,email,password_hash,tier,is_admin,verified,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.PasswordHash, u.Tier, u.IsAdmin, u.Verified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Update writes the mutable profile fields of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, password_hash=?, tier=?, is_admin=?, verified=?, updated_at=? WHERE id=?",
		u.Username, u.Email, u.PasswordHash, u.Tier, u.IsAdmin, u.Verified, u.UpdatedAt, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows for a no-op update, so confirm existence.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepo) scanOne(row rowScanner) (*model.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u                   model.User
		verifyTok, resetTok sql.NullString
		verifyExp, resetExp sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Tier, &u.IsAdmin, &u.Verified,
		&verifyTok, &verifyExp, &resetTok, &resetExp, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.VerificationToken = verifyTok.String
	u.ResetPasswordToken = resetTok.String
	if verifyExp.Valid {
		u.VerificationTokenExpiresAt = &verifyExp.Time
	}
	if resetExp.Valid {
		u.ResetPasswordExpiresAt = &resetExp.Time
	}
	return &u, nil
}
