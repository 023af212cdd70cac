package identity_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/identity"
	mock_identity "github.com/hanksha/turf-booking-backend/identity/mocks"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	player = identity.Principal{
		ID:     "11111111-1111-1111-1111-111111111111",
		Name:   "Asha",
		Email:  "asha@example.com",
		Role:   identity.RolePlayer,
		Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=asha%40example.com",
	}
	owner = identity.Principal{
		ID:        "22222222-2222-2222-2222-222222222222",
		Name:      "Ravi",
		Email:     "ravi@example.com",
		Mobile:    "9876543210",
		Role:      identity.RoleOwner,
		LicenseID: "LIC-42",
	}
	playerCred = identity.Credential{UserID: player.ID, AccessToken: "token-asha", RefreshToken: "refresh-asha", ExpiresIn: 3600}
	ownerCred  = identity.Credential{UserID: owner.ID, AccessToken: "token-ravi"}
)

type testDeps struct {
	provider *mock_identity.MockProvider
	profiles *mock_identity.MockProfileRepository
	venues   *mock_identity.MockVenueCascader
	service  *identity.Service
	ctx      context.Context
}

func newTestDeps(t *testing.T) (*gomock.Controller, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	provider := mock_identity.NewMockProvider(ctrl)
	profiles := mock_identity.NewMockProfileRepository(ctrl)
	venues := mock_identity.NewMockVenueCascader(ctrl)

	return ctrl, testDeps{
		provider: provider,
		profiles: profiles,
		venues:   venues,
		service:  identity.NewService(provider, profiles, venues),
		ctx:      context.Background(),
	}
}

func TestRegister(t *testing.T) {
	playerReg := identity.Registration{Email: " Asha@Example.com ", Password: "secret1", Name: "Asha", Role: identity.RolePlayer}
	ownerReg := identity.Registration{Email: "ravi@example.com", Password: "secret1", Name: "Ravi", Mobile: "9876543210", Role: identity.RoleOwner, LicenseID: "LIC-42"}

	t.Run("player", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignUp(deps.ctx, "asha@example.com", "secret1").Return(playerCred, nil).Times(1)
		deps.profiles.EXPECT().Create(deps.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, p identity.Principal) error {
			assert.Equal(t, player.ID, p.ID)
			assert.Equal(t, identity.RolePlayer, p.Role)
			assert.Equal(t, player.Avatar, p.Avatar)
			assert.Empty(t, p.LicenseID)
			return nil
		}).Times(1)

		session, err := deps.service.Register(deps.ctx, playerReg)

		require.NoError(t, err)
		assert.Equal(t, "token-asha", session.AccessToken)
		assert.Equal(t, "asha@example.com", session.Principal.Email)
	})

	t.Run("owner", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignUp(deps.ctx, "ravi@example.com", "secret1").Return(ownerCred, nil).Times(1)
		deps.profiles.EXPECT().Create(deps.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, p identity.Principal) error {
			assert.Equal(t, "LIC-42", p.LicenseID)
			assert.Equal(t, "https://api.dicebear.com/7.x/initials/svg?seed=Ravi", p.Avatar)
			return nil
		}).Times(1)

		session, err := deps.service.Register(deps.ctx, ownerReg)

		require.NoError(t, err)
		assert.Equal(t, identity.RoleOwner, session.Principal.Role)
	})

	t.Run("owner without license never reaches the provider", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		deps.profiles.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		reg := ownerReg
		reg.LicenseID = ""
		_, err := deps.service.Register(deps.ctx, reg)
		require.ErrorIs(t, err, identity.ErrInvalidRegistration)

		reg = ownerReg
		reg.Mobile = ""
		_, err = deps.service.Register(deps.ctx, reg)
		require.ErrorIs(t, err, identity.ErrInvalidRegistration)
	})

	t.Run("invalid fields", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		for _, reg := range []identity.Registration{
			{Email: "not-an-email", Password: "secret1", Name: "Asha", Role: identity.RolePlayer},
			{Email: "asha@example.com", Password: "secret1", Name: "Asha", Role: "admin"},
			{Email: "asha@example.com", Password: "secret1", Name: "  ", Role: identity.RolePlayer},
			{Email: "asha@example.com", Name: "Asha", Role: identity.RolePlayer},
		} {
			_, err := deps.service.Register(deps.ctx, reg)
			assert.ErrorIs(t, err, identity.ErrInvalidRegistration)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any()).Return(identity.Credential{}, identity.ErrDuplicateRegistration).Times(1)
		deps.profiles.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.Register(deps.ctx, playerReg)

		require.ErrorIs(t, err, identity.ErrDuplicateRegistration)
	})

	t.Run("profile failure removes the credential", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any()).Return(playerCred, nil).Times(1)
		deps.profiles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down")).Times(1)
		deps.provider.EXPECT().DeleteUser(deps.ctx, player.ID).Return(nil).Times(1)

		_, err := deps.service.Register(deps.ctx, playerReg)

		require.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignIn(deps.ctx, "asha@example.com", "secret1").Return(playerCred, nil).Times(1)
		deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(player, nil).Times(1)

		session, err := deps.service.Login(deps.ctx, identity.Credentials{Email: "asha@example.com", Password: "secret1", Role: identity.RolePlayer})

		require.NoError(t, err)
		assert.Equal(t, player, session.Principal)
		assert.Equal(t, "refresh-asha", session.RefreshToken)
	})

	t.Run("bad credentials", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(identity.Credential{}, identity.ErrBadCredentials).Times(1)
		deps.profiles.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.Login(deps.ctx, identity.Credentials{Email: "asha@example.com", Password: "nope"})

		require.ErrorIs(t, err, identity.ErrBadCredentials)
	})

	t.Run("missing profile is not a credential error", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(playerCred, nil).Times(1)
		deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(identity.Principal{}, identity.ErrProfileNotFound).Times(1)

		_, err := deps.service.Login(deps.ctx, identity.Credentials{Email: "asha@example.com", Password: "secret1"})

		require.ErrorIs(t, err, identity.ErrProfileNotFound)
		assert.NotErrorIs(t, err, identity.ErrBadCredentials)
	})

	t.Run("role mismatch signs out", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(playerCred, nil).Times(1)
		deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(player, nil).Times(1)
		deps.provider.EXPECT().SignOut(deps.ctx, "token-asha").Return(nil).Times(1)

		_, err := deps.service.Login(deps.ctx, identity.Credentials{Email: "asha@example.com", Password: "secret1", Role: identity.RoleOwner})

		require.ErrorIs(t, err, identity.ErrRoleMismatch)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Run("uses the session cache after login", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(playerCred, nil).Times(1)
		deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(player, nil).Times(1)
		deps.provider.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.Login(deps.ctx, identity.Credentials{Email: "asha@example.com", Password: "secret1"})
		require.NoError(t, err)

		got, err := deps.service.Authenticate(deps.ctx, "token-asha")
		require.NoError(t, err)
		assert.Equal(t, player, got)
	})

	t.Run("verifies unknown tokens", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().Verify(deps.ctx, "token-asha").Return(player.ID, nil).Times(1)
		deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(player, nil).Times(1)

		for range 2 {
			got, err := deps.service.Authenticate(deps.ctx, "token-asha")
			require.NoError(t, err)
			assert.Equal(t, player.ID, got.ID)
		}
	})

	t.Run("rejects invalid tokens", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().Verify(deps.ctx, "bogus").Return("", errors.New("401")).Times(1)

		_, err := deps.service.Authenticate(deps.ctx, "bogus")

		require.ErrorIs(t, err, identity.ErrUnauthenticated)
	})

	t.Run("logout evicts the session", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.provider.EXPECT().Verify(deps.ctx, "token-asha").Return(player.ID, nil).Times(1)
		deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(player, nil).Times(1)
		deps.provider.EXPECT().SignOut(deps.ctx, "token-asha").Return(nil).Times(1)

		_, err := deps.service.Authenticate(deps.ctx, "token-asha")
		require.NoError(t, err)
		require.NoError(t, deps.service.Logout(deps.ctx, "token-asha"))

		deps.provider.EXPECT().Verify(deps.ctx, "token-asha").Return("", errors.New("session revoked")).Times(1)
		_, err = deps.service.Authenticate(deps.ctx, "token-asha")
		require.ErrorIs(t, err, identity.ErrUnauthenticated)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("rejects empty name", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.profiles.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		blank := "  "
		_, err := deps.service.UpdateProfile(deps.ctx, player.ID, identity.ProfilePatch{Name: &blank})

		require.ErrorIs(t, err, identity.ErrInvalidRegistration)
	})

	t.Run("updates and refreshes cached sessions", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		renamed := player
		renamed.Name = "Asha R"
		name := " Asha R "

		deps.provider.EXPECT().Verify(deps.ctx, "token-asha").Return(player.ID, nil).Times(2)
		gomock.InOrder(
			deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(player, nil),
			deps.profiles.EXPECT().Update(deps.ctx, player.ID, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p identity.ProfilePatch) (identity.Principal, error) {
				assert.Equal(t, "Asha R", *p.Name)
				return renamed, nil
			}),
			deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(renamed, nil),
		)

		_, err := deps.service.Authenticate(deps.ctx, "token-asha")
		require.NoError(t, err)

		got, err := deps.service.UpdateProfile(deps.ctx, player.ID, identity.ProfilePatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Asha R", got.Name)

		again, err := deps.service.Authenticate(deps.ctx, "token-asha")
		require.NoError(t, err)
		assert.Equal(t, "Asha R", again.Name)
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("owner cascades venues first", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		gomock.InOrder(
			deps.profiles.EXPECT().Get(deps.ctx, owner.ID).Return(owner, nil),
			deps.venues.EXPECT().DeleteVenuesByOwner(deps.ctx, owner.ID).Return(store.Result[int]{Value: 2, Source: store.SourceRemote}, nil),
			deps.profiles.EXPECT().Delete(deps.ctx, owner.ID).Return(nil),
			deps.provider.EXPECT().DeleteUser(deps.ctx, owner.ID).Return(nil),
		)

		require.NoError(t, deps.service.DeleteAccount(deps.ctx, owner.ID, "token-ravi"))
	})

	t.Run("player skips the cascade", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.profiles.EXPECT().Get(deps.ctx, player.ID).Return(player, nil).Times(1)
		deps.venues.EXPECT().DeleteVenuesByOwner(gomock.Any(), gomock.Any()).Times(0)
		deps.profiles.EXPECT().Delete(deps.ctx, player.ID).Return(nil).Times(1)
		deps.provider.EXPECT().DeleteUser(deps.ctx, player.ID).Return(nil).Times(1)

		require.NoError(t, deps.service.DeleteAccount(deps.ctx, player.ID, "token-asha"))
	})

	t.Run("cascade failure keeps the account", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.profiles.EXPECT().Get(deps.ctx, owner.ID).Return(owner, nil).Times(1)
		deps.venues.EXPECT().DeleteVenuesByOwner(deps.ctx, owner.ID).Return(store.Result[int]{}, errors.New("both stores down")).Times(1)
		deps.profiles.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
		deps.provider.EXPECT().DeleteUser(gomock.Any(), gomock.Any()).Times(0)

		require.Error(t, deps.service.DeleteAccount(deps.ctx, owner.ID, "token-ravi"))
	})
}

func TestOwnerDeletionLeavesBookings(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote, err := store.OpenLocal(filepath.Join(t.TempDir(), "remote.db"))
	require.NoError(t, err)
	defer remote.Close()
	fallback, err := store.OpenLocal(filepath.Join(t.TempDir(), "fallback.db"))
	require.NoError(t, err)
	defer fallback.Close()
	gateway := store.NewGateway(remote, fallback)

	owned, err := gateway.CreateVenue(ctx, venue.Venue{Name: "Ravi Turf", OwnerID: owner.ID})
	require.NoError(t, err)
	_, err = gateway.CreateVenue(ctx, venue.Venue{Name: "Ravi Court", OwnerID: owner.ID})
	require.NoError(t, err)
	other, err := gateway.CreateVenue(ctx, venue.Venue{Name: "Someone Else", OwnerID: "other-owner"})
	require.NoError(t, err)
	booked, err := gateway.CreateBooking(ctx, bk.Booking{VenueID: owned.Value.ID, UserID: player.ID, Date: "2025-06-10", TimeSlot: "07:00 AM", Status: bk.StatusUpcoming})
	require.NoError(t, err)

	provider := mock_identity.NewMockProvider(ctrl)
	profiles := mock_identity.NewMockProfileRepository(ctrl)
	service := identity.NewService(provider, profiles, gateway)

	profiles.EXPECT().Get(ctx, owner.ID).Return(owner, nil).Times(1)
	profiles.EXPECT().Delete(ctx, owner.ID).Return(nil).Times(1)
	provider.EXPECT().DeleteUser(ctx, owner.ID).Return(nil).Times(1)

	require.NoError(t, service.DeleteAccount(ctx, owner.ID, "token-ravi"))

	venues, err := gateway.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, venues.Value, 1)
	assert.Equal(t, other.Value.ID, venues.Value[0].ID)

	_, err = gateway.GetVenue(ctx, owned.Value.ID)
	assert.ErrorIs(t, err, venue.ErrVenueNotFound)

	b, err := gateway.GetBooking(ctx, booked.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, owned.Value.ID, b.Value.VenueID)
}
