package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/repository"
	"github.com/iliyamo/tiered-catalog/internal/tier"
	"github.com/iliyamo/tiered-catalog/internal/utils"
)

// Accounts implements registration, login and profile management on top
// of the credential store.
type Accounts struct {
	users      UserStore
	bcryptCost int
	log        *zap.Logger
}

func NewAccounts(users UserStore, bcryptCost int, log *zap.Logger) *Accounts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accounts{users: users, bcryptCost: bcryptCost, log: log}
}

// Registration is the sign-up form. Every field is required.
type Registration struct {
	Username string
	Email    string
	Password string
	Tier     string
}

// ProfileUpdate holds the editable profile fields. Nil or empty values keep
// the stored value.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// Register creates a non-admin user with a hashed password.
func (s *Accounts) Register(ctx context.Context, in Registration) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" || strings.TrimSpace(in.Tier) == "" {
		return nil, invalid("please fill all the fields")
	}
	t, err := tier.Parse(in.Tier)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Tier:         string(t),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("tier", u.Tier))
	return u, nil
}

// Login checks the credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Accounts) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Profile returns the requester's own record.
func (s *Accounts) Profile(ctx context.Context, r Requester) (*model.User, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, r.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// UpdateProfile changes the requester's username, email or password.
func (s *Accounts) UpdateProfile(ctx context.Context, r Requester, up ProfileUpdate) (*model.User, error) {
	u, err := s.Profile(ctx, r)
	if err != nil {
		return nil, err
	}
	if up.Username != nil {
		if v := strings.TrimSpace(*up.Username); v != "" {
			u.Username = v
		}
	}
	if up.Email != nil {
		if v := strings.ToLower(strings.TrimSpace(*up.Email)); v != "" {
			u.Email = v
		}
	}
	if up.Password != nil && *up.Password != "" {
		hash, err := s.hash(*up.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// ListUsers returns every account. Admin only.
func (s *Accounts) ListUsers(ctx context.Context, r Requester) ([]model.User, error) {
	if err := requireAdmin(r); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Resolve loads the user a session token was issued for. A token whose
// user no longer exists is treated as unauthenticated.
func (s *Accounts) Resolve(ctx context.Context, userID string) (Requester, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Requester{}, ErrUnauthenticated
		}
		return Requester{}, err
	}
	return Requester{ID: u.ID, Username: u.Username, Tier: tier.Tier(u.Tier), IsAdmin: u.IsAdmin}, nil
}

func (s *Accounts) hash(plain string) (string, error) {
	h, err := utils.HashPassword(plain, s.bcryptCost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", invalid("%v", err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}
