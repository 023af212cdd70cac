package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/patrickmn/go-cache"
)

type Provider interface {
	SignUp(ctx context.Context, email, password string) (Credential, error)
	SignIn(ctx context.Context, email, password string) (Credential, error)
	SignOut(ctx context.Context, accessToken string) error
	Verify(ctx context.Context, accessToken string) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

type ProfileRepository interface {
	Create(ctx context.Context, p Principal) error
	Get(ctx context.Context, id string) (Principal, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (Principal, error)
	Delete(ctx context.Context, id string) error
}

type VenueCascader interface {
	DeleteVenuesByOwner(ctx context.Context, ownerID string) (store.Result[int], error)
}

type Service struct {
	provider Provider
	profiles ProfileRepository
	venues   VenueCascader
	validate *validator.Validate
	sessions *cache.Cache
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(provider Provider, profiles ProfileRepository, venues VenueCascader) *Service {
	return &Service{
		provider: provider,
		profiles: profiles,
		venues:   venues,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		sessions: cache.New(1*time.Minute, 5*time.Minute),
		logger:   slog.Default().With("component", "identity"),
		now:      time.Now,
	}
}

// Register validates the registration before contacting the provider, then
// creates the credential and the profile. A failed profile write removes the
// credential again.
func (s *Service) Register(ctx context.Context, reg Registration) (Session, error) {
	reg.Email = strings.TrimSpace(strings.ToLower(reg.Email))
	reg.Name = strings.TrimSpace(reg.Name)

	if err := s.validate.Struct(reg); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
	}

	cred, err := s.provider.SignUp(ctx, reg.Email, reg.Password)
	if err != nil {
		return Session{}, err
	}

	principal := Principal{
		ID:        cred.UserID,
		Name:      reg.Name,
		Email:     reg.Email,
		Mobile:    reg.Mobile,
		Role:      reg.Role,
		Avatar:    avatarFor(reg.Role, reg.Name, reg.Email),
		CreatedAt: s.now().UTC(),
	}
	if reg.Role == RoleOwner {
		principal.LicenseID = reg.LicenseID
	}

	if err := s.profiles.Create(ctx, principal); err != nil {
		if delErr := s.provider.DeleteUser(ctx, cred.UserID); delErr != nil {
			s.logger.Error("failed to remove credential after profile write failure", "user_id", cred.UserID, "err", delErr)
		}
		return Session{}, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("account registered", "user_id", principal.ID, "role", principal.Role)

	return s.session(cred, principal), nil
}

func (s *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	cred, err := s.provider.SignIn(ctx, strings.TrimSpace(strings.ToLower(creds.Email)), creds.Password)
	if err != nil {
		return Session{}, err
	}

	principal, err := s.profiles.Get(ctx, cred.UserID)
	if err != nil {
		return Session{}, err
	}

	if creds.Role != "" && creds.Role != principal.Role {
		if err := s.provider.SignOut(ctx, cred.AccessToken); err != nil {
			s.logger.Warn("failed to sign out after role mismatch", "user_id", principal.ID, "err", err)
		}
		return Session{}, fmt.Errorf("%w: registered as %s", ErrRoleMismatch, principal.Role)
	}

	return s.session(cred, principal), nil
}

func (s *Service) session(cred Credential, principal Principal) Session {
	if cred.AccessToken != "" {
		s.sessions.Set(cred.AccessToken, principal, cache.DefaultExpiration)
	}

	return Session{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresIn:    cred.ExpiresIn,
		Principal:    principal,
	}
}

func (s *Service) Logout(ctx context.Context, accessToken string) error {
	s.sessions.Delete(accessToken)
	return s.provider.SignOut(ctx, accessToken)
}

// Authenticate resolves a bearer token to its principal.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Principal, error) {
	if cached, found := s.sessions.Get(accessToken); found {
		return cached.(Principal), nil
	}

	userID, err := s.provider.Verify(ctx, accessToken)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	principal, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return Principal{}, err
	}

	s.sessions.Set(accessToken, principal, cache.DefaultExpiration)

	return principal, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (Principal, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Principal{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidRegistration)
		}
		patch.Name = &name
	}

	principal, err := s.profiles.Update(ctx, id, patch)
	if err != nil {
		return Principal{}, err
	}

	s.evict(id)

	return principal, nil
}

// DeleteAccount removes an owner's venues first, then the profile, then the
// credential. Bookings are left in place.
func (s *Service) DeleteAccount(ctx context.Context, id, accessToken string) error {
	principal, err := s.profiles.Get(ctx, id)
	if err != nil {
		return err
	}

	switch principal.Role {
	case RoleOwner:
		res, err := s.venues.DeleteVenuesByOwner(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete owner venues: %w", err)
		}
		s.logger.Info("deleted owner venues", "user_id", id, "count", res.Value, "source", res.Source)
	case RolePlayer:
	default:
		return fmt.Errorf("unknown role %q", principal.Role)
	}

	if err := s.profiles.Delete(ctx, id); err != nil && !errors.Is(err, ErrProfileNotFound) {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if err := s.provider.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	s.sessions.Delete(accessToken)
	s.evict(id)

	s.logger.Info("account deleted", "user_id", id, "role", principal.Role)

	return nil
}

func (s *Service) evict(userID string) {
	for token, item := range s.sessions.Items() {
		if p, ok := item.Object.(Principal); ok && p.ID == userID {
			s.sessions.Delete(token)
		}
	}
}
