package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/tiered-catalog/internal/repository"
	"github.com/iliyamo/tiered-catalog/internal/tier"
	"github.com/iliyamo/tiered-catalog/internal/utils"
)

func newAccounts() *Accounts {
	return NewAccounts(repository.NewMemoryStore().Users(), bcrypt.MinCost, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newAccounts()
	ctx := context.Background()

	u, err := s.Register(ctx, Registration{Username: "neo", Email: " Neo@Matrix.io ", Password: "trinity", Tier: "Gold"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "neo@matrix.io", u.Email)
	assert.Equal(t, "gold", u.Tier)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "trinity", u.PasswordHash)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "trinity"))

	got, err := s.Login(ctx, "NEO@matrix.io", "trinity")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Login(ctx, "neo@matrix.io", "smith")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@matrix.io", "trinity")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterRejections(t *testing.T) {
	s := newAccounts()
	ctx := context.Background()
	_, err := s.Register(ctx, Registration{Username: "a", Email: "a@x.io", Password: "p", Tier: "silver"})
	require.NoError(t, err)

	cases := map[string]struct {
		in   Registration
		want error
	}{
		"missing username": {Registration{Email: "b@x.io", Password: "p", Tier: "silver"}, ErrValidation},
		"missing tier":     {Registration{Username: "b", Email: "b@x.io", Password: "p"}, ErrValidation},
		"unknown tier":     {Registration{Username: "b", Email: "b@x.io", Password: "p", Tier: "bronze"}, ErrInvalidTier},
		"duplicate email":  {Registration{Username: "b", Email: "A@X.io", Password: "p", Tier: "gold"}, ErrEmailExists},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProfileUpdate(t *testing.T) {
	s := newAccounts()
	ctx := context.Background()
	u, err := s.Register(ctx, Registration{Username: "neo", Email: "neo@x.io", Password: "old", Tier: "silver"})
	require.NoError(t, err)
	other, err := s.Register(ctx, Registration{Username: "tri", Email: "tri@x.io", Password: "pw", Tier: "silver"})
	require.NoError(t, err)
	r := Requester{ID: u.ID, Username: u.Username, Tier: tier.Silver}

	empty, newName, newPass := "", "thomas", "new"
	got, err := s.UpdateProfile(ctx, r, ProfileUpdate{Username: &newName, Email: &empty, Password: &newPass})
	require.NoError(t, err)
	assert.Equal(t, "thomas", got.Username)
	assert.Equal(t, "neo@x.io", got.Email)

	_, err = s.Login(ctx, "neo@x.io", "new")
	require.NoError(t, err)
	_, err = s.Login(ctx, "neo@x.io", "old")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	taken := other.Email
	_, err = s.UpdateProfile(ctx, r, ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailExists)

	p, err := s.Profile(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "thomas", p.Username)

	_, err = s.Profile(ctx, Requester{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = s.Profile(ctx, Requester{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAndListUsers(t *testing.T) {
	store := repository.NewMemoryStore().Users()
	s := NewAccounts(store, bcrypt.MinCost, nil)
	ctx := context.Background()
	u, err := s.Register(ctx, Registration{Username: "neo", Email: "neo@x.io", Password: "pw", Tier: "platinum"})
	require.NoError(t, err)

	r, err := s.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, Requester{ID: u.ID, Username: "neo", Tier: tier.Platinum}, r)

	_, err = s.Resolve(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.ListUsers(ctx, r)
	assert.ErrorIs(t, err, ErrForbidden)

	u.IsAdmin = true
	require.NoError(t, store.Update(ctx, u))
	r, err = s.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, r.IsAdmin)

	users, err := s.ListUsers(ctx, r)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestOverlongPasswordIsValidationError(t *testing.T) {
	s := newAccounts()
	_, err := s.Register(context.Background(), Registration{
		Username: "neo", Email: "neo@matrix.io", Password: strings.Repeat("x", 100), Tier: "gold",
	})
	assert.ErrorIs(t, err, ErrValidation)
}
