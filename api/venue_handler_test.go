package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/api"
	mock_api "github.com/hanksha/turf-booking-backend/api/mocks"
	"github.com/hanksha/turf-booking-backend/availability"
	"github.com/hanksha/turf-booking-backend/identity"
	"github.com/hanksha/turf-booking-backend/reservation"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/venue"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type venueMocks struct {
	venues *mock_api.MockVenueService
	slots  *mock_api.MockAvailabilityService
}

func setupVenueRouter(t *testing.T, user identity.Principal) (*gin.Engine, *gomock.Controller, venueMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	router := newRouter()
	mocks := venueMocks{
		venues: mock_api.NewMockVenueService(ctrl),
		slots:  mock_api.NewMockAvailabilityService(ctrl),
	}
	handler := api.NewVenueHandler(mocks.venues, mocks.slots)
	rg := router.Group("/api/v1/venues")
	rg.Use(setUserInContext(user))
	handler.Register(rg)

	return router, ctrl, mocks
}

var arena = venue.Venue{
	ID:           "v1",
	Name:         "Green Arena",
	Location:     "Kochi",
	Rating:       5,
	PricePerHour: 1000,
	Sports:       []string{"Football"},
	Amenities:    venue.DefaultAmenities,
	OwnerID:      owner.ID,
}

func TestSearchVenues(t *testing.T) {
	t.Run("query and sport", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, player)
		defer ctrl.Finish()

		venues := []venue.Venue{arena}
		venuesJson, _ := json.MarshalIndent(venues, "", "    ")
		mocks.venues.EXPECT().Search(gomock.Any(), venue.Filter{Query: "green", Sport: "Football"}).
			Return(store.Result[[]venue.Venue]{Value: venues, Source: store.SourceRemote}, nil).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/venues?query=green&sport=Football", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, string(venuesJson), w.Body.String())
		assert.Empty(t, w.Header().Get(api.SourceHeader))
	})

	t.Run("owner scope", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, owner)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Search(gomock.Any(), venue.Filter{OwnerID: owner.ID}).
			Return(store.Result[[]venue.Venue]{Value: []venue.Venue{}, Source: store.SourceFallback}, nil).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/venues?mine=true", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		assert.Equal(t, "fallback", w.Header().Get(api.SourceHeader))
	})

	t.Run("error", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, player)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Search(gomock.Any(), gomock.Any()).Return(store.Result[[]venue.Venue]{}, assert.AnError).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/venues", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 500, w.Code)
		assert.JSONEq(t, `{"error":"failed to retrieve venues"}`, w.Body.String())
	})
}

func TestGetVenue(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, player)
		defer ctrl.Finish()

		arenaJson, _ := json.MarshalIndent(arena, "", "    ")
		mocks.venues.EXPECT().Get(gomock.Any(), "v1").Return(store.Result[venue.Venue]{Value: arena, Source: store.SourceRemote}, nil).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/venues/v1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, string(arenaJson), w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, player)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Get(gomock.Any(), "v9").Return(store.Result[venue.Venue]{}, venue.ErrVenueNotFound).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/venues/v9", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 404, w.Code)
		assert.JSONEq(t, `{"error":"venue not found"}`, w.Body.String())
	})
}

func TestVenueAvailability(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, player)
		defer ctrl.Finish()

		slots := []availability.SlotState{{TimeSlot: "06:00 AM", Available: true}, {TimeSlot: "07:00 AM", Available: false}}
		mocks.slots.EXPECT().Availability(gomock.Any(), "v1", "2025-06-12").
			Return(store.Result[[]availability.SlotState]{Value: slots, Source: store.SourceRemote}, nil).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/venues/v1/availability?date=2025-06-12", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `[{"timeSlot":"06:00 AM","available":true},{"timeSlot":"07:00 AM","available":false}]`, w.Body.String())
	})

	t.Run("bad date", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, player)
		defer ctrl.Finish()

		mocks.slots.EXPECT().Availability(gomock.Any(), "v1", "tomorrow").
			Return(store.Result[[]availability.SlotState]{}, reservation.ErrInvalidDate).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/venues/v1/availability?date=tomorrow", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 400, w.Code)
	})
}

func TestAddVenue(t *testing.T) {
	body, _ := json.Marshal(venue.Venue{Name: "Green Arena", Location: "Kochi", PricePerHour: 1000, Sports: []string{"Football"}})

	t.Run("success", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, owner)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Add(gomock.Any(), owner.ID, gomock.Any()).DoAndReturn(
			func(_ context.Context, ownerID string, v venue.Venue) (store.Result[venue.Venue], error) {
				assert.Equal(t, "Green Arena", v.Name)
				return store.Result[venue.Venue]{Value: arena, Source: store.SourceRemote}, nil
			}).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/venues", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, 201, w.Code)
	})

	t.Run("players are refused", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, player)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Add(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/venues", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, 403, w.Code)
	})

	t.Run("invalid venue", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, owner)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Add(gomock.Any(), owner.ID, gomock.Any()).Return(store.Result[venue.Venue]{}, venue.ErrInvalidVenue).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/venues", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, 400, w.Code)
		assert.JSONEq(t, `{"error":"invalid venue"}`, w.Body.String())
	})
}

func TestEditAndRemoveVenue(t *testing.T) {
	t.Run("edit", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, owner)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Edit(gomock.Any(), owner.ID, "v1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _ string, patch venue.Patch) (store.Result[venue.Venue], error) {
				assert.Equal(t, 1500.0, *patch.PricePerHour)
				assert.Nil(t, patch.Name)
				return store.Result[venue.Venue]{Value: arena, Source: store.SourceFallback}, nil
			}).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/v1/venues/v1", bytes.NewBufferString(`{"pricePerHour":1500}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.Equal(t, "fallback", w.Header().Get(api.SourceHeader))
	})

	errorCases := []struct {
		name string
		err  error
		code int
	}{
		{"not owner", venue.ErrNotOwner, 403},
		{"not found", venue.ErrVenueNotFound, 404},
		{"internal", assert.AnError, 500},
	}

	for _, tc := range errorCases {
		t.Run("remove "+tc.name, func(t *testing.T) {
			router, ctrl, mocks := setupVenueRouter(t, owner)
			defer ctrl.Finish()

			mocks.venues.EXPECT().Remove(gomock.Any(), owner.ID, "v1").Return(store.Source(""), tc.err).Times(1)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("DELETE", "/api/v1/venues/v1", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
		})
	}

	t.Run("remove", func(t *testing.T) {
		router, ctrl, mocks := setupVenueRouter(t, owner)
		defer ctrl.Finish()

		mocks.venues.EXPECT().Remove(gomock.Any(), owner.ID, "v1").Return(store.SourceRemote, nil).Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/venues/v1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `{"message":"venue removed"}`, w.Body.String())
	})
}
