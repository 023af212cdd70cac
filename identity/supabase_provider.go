package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// SupabaseProvider keeps credentials in Supabase Auth. Admin operations use
// the service role key.
type SupabaseProvider struct {
	auth       gotrue.Client
	serviceKey string
}

func NewSupabaseProvider(client *supabase.Client, serviceKey string) *SupabaseProvider {
	return &SupabaseProvider{auth: client.Auth, serviceKey: serviceKey}
}

func (p *SupabaseProvider) SignUp(ctx context.Context, email, password string) (Credential, error) {
	res, err := p.auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return Credential{}, mapProviderError(err)
	}

	userID := res.ID
	if userID == uuid.Nil {
		userID = res.Session.User.ID
	}
	if userID == uuid.Nil {
		return Credential{}, errors.New("identity provider returned no user id")
	}

	return Credential{
		UserID:       userID.String(),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
	}, nil
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (Credential, error) {
	res, err := p.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return Credential{}, mapProviderError(err)
	}

	return Credential{
		UserID:       res.User.ID.String(),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
	}, nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, accessToken string) error {
	if err := p.auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (p *SupabaseProvider) Verify(ctx context.Context, accessToken string) (string, error) {
	res, err := p.auth.WithToken(accessToken).GetUser()
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}
	return res.ID.String(), nil
}

func (p *SupabaseProvider) DeleteUser(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	if err := p.auth.WithToken(p.serviceKey).AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// mapProviderError turns provider responses into the package's sentinel
// errors so raw provider messages never reach clients.
func mapProviderError(err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "invalid login credentials"), strings.Contains(msg, "invalid_credentials"):
		return ErrBadCredentials
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "user_already_exists"):
		return ErrDuplicateRegistration
	case strings.Contains(msg, "password should be"), strings.Contains(msg, "weak_password"):
		return ErrWeakCredential
	}

	return fmt.Errorf("identity provider error: %w", err)
}
