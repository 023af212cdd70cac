package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProviderError(t *testing.T) {
	cases := []struct {
		raw  string
		want error
	}{
		{`response status code 400: {"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`, ErrBadCredentials},
		{`response status code 422: {"msg":"User already registered"}`, ErrDuplicateRegistration},
		{`response status code 422: {"msg":"Password should be at least 6 characters."}`, ErrWeakCredential},
	}

	for _, tc := range cases {
		assert.ErrorIs(t, mapProviderError(errors.New(tc.raw)), tc.want, tc.raw)
	}

	other := mapProviderError(errors.New("response status code 500"))
	assert.NotErrorIs(t, other, ErrBadCredentials)
	assert.Contains(t, other.Error(), "identity provider error")
}

func TestAvatarFor(t *testing.T) {
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=asha%40example.com", avatarFor(RolePlayer, "Asha", "asha@example.com"))
	assert.Equal(t, "https://api.dicebear.com/7.x/initials/svg?seed=Ravi+Kumar", avatarFor(RoleOwner, "Ravi Kumar", "ravi@example.com"))
}
