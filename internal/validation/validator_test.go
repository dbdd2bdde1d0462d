package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Tier     string `json:"tier" validate:"omitempty,oneof=silver gold platinum"`
}

func TestValidatePasses(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&signup{Email: "a@b.io", Password: "secret1"}))
}

func TestValidateReportsJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(&signup{Email: "nope", Password: "abc", Tier: "bronze"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"email", "password", "tier"}, verr.Fields)
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "password must be at least 6 characters")
	assert.Contains(t, err.Error(), "tier must be one of: silver gold platinum")
}

func TestValidateRequired(t *testing.T) {
	err := New().Validate(&signup{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}
