package api_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/api"
	mock_api "github.com/hanksha/turf-booking-backend/api/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupAssistRouter(t *testing.T) (*gin.Engine, *gomock.Controller, *mock_api.MockAssistant) {
	t.Helper()
	ctrl := gomock.NewController(t)

	router := newRouter()
	mockAssistant := mock_api.NewMockAssistant(ctrl)
	rg := router.Group("/api/v1")
	rg.Use(setUserInContext(player))
	api.NewAssistHandler(mockAssistant).Register(rg)

	return router, ctrl, mockAssistant
}

func TestTips(t *testing.T) {
	t.Run("sport", func(t *testing.T) {
		router, ctrl, mockAssistant := setupAssistRouter(t)
		defer ctrl.Finish()

		mockAssistant.EXPECT().Recommendation(gomock.Any(), "Cricket").Return("Play cricket at dawn.").Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/tips?sport=Cricket", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `{"tip":"Play cricket at dawn."}`, w.Body.String())
	})

	t.Run("all sports", func(t *testing.T) {
		router, ctrl, mockAssistant := setupAssistRouter(t)
		defer ctrl.Finish()

		mockAssistant.EXPECT().Recommendation(gomock.Any(), "sports").Return("Get moving!").Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/tips?sport=All", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
	})
}

func TestSupport(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		router, ctrl, mockAssistant := setupAssistRouter(t)
		defer ctrl.Finish()

		mockAssistant.EXPECT().SupportReply(gomock.Any(), "how do I cancel?").Return("Open your dashboard.").Times(1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/support", bytes.NewBufferString(`{"query":" how do I cancel? "}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `{"reply":"Open your dashboard."}`, w.Body.String())
	})

	t.Run("empty query", func(t *testing.T) {
		router, ctrl, mockAssistant := setupAssistRouter(t)
		defer ctrl.Finish()

		mockAssistant.EXPECT().SupportReply(gomock.Any(), gomock.Any()).Times(0)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/support", bytes.NewBufferString(`{"query":"   "}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, 400, w.Code)
		assert.JSONEq(t, `{"error":"query cannot be empty"}`, w.Body.String())
	})
}
