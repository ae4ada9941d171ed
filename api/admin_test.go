package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rimjeddah/consulate-api/internal/auth"
	"github.com/rimjeddah/consulate-api/internal/domain"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rimjeddah/consulate-api/internal/service/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBroadcastStore struct {
	mock.Mock
}

func (m *MockBroadcastStore) GetBroadcast(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBroadcastStore) SetBroadcast(ctx context.Context, msg string) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func testManager() auth.Manager {
	return auth.Manager{Secret: []byte("test-secret"), TTL: time.Minute, Issuer: "consulate-api"}
}

func newAdminHandler(trackingSvc *MockTrackingUseCase, broadcast *MockBroadcastStore) *AdminHandler {
	return NewAdminHandler(trackingSvc, &MockAllocationUseCase{}, broadcast, testManager(), "rim-admin-2024", 7)
}

func TestAdminHandler_login(t *testing.T) {
	handler := newAdminHandler(&MockTrackingUseCase{}, &MockBroadcastStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]string{"password": "rim-admin-2024"})
	c.Request = httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)

	subject, err := testManager().Verify(response.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestAdminHandler_login_WrongPassword(t *testing.T) {
	handler := newAdminHandler(&MockTrackingUseCase{}, &MockBroadcastStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]string{"password": "guess"})
	c.Request = httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_login_NotConfigured(t *testing.T) {
	handler := NewAdminHandler(&MockTrackingUseCase{}, &MockAllocationUseCase{}, &MockBroadcastStore{}, testManager(), "", 7)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]string{"password": "anything"})
	c.Request = httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.login(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminHandler_updateStatus(t *testing.T) {
	mockTracking := &MockTrackingUseCase{}
	handler := newAdminHandler(mockTracking, &MockBroadcastStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "ref", Value: "RIM-ABC123"}}
	body, _ := json.Marshal(map[string]string{"status": "confirmed"})
	c.Request = httptest.NewRequest("PUT", "/api/admin/appointments/RIM-ABC123/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	appt := &domain.Appointment{ID: "RIM-ABC123", Status: domain.StatusConfirmed, CreatedAt: time.Now()}
	mockTracking.On("UpdateStatus", c.Request.Context(), "RIM-ABC123", domain.StatusConfirmed).Return(appt, nil)

	handler.updateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response appointmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "confirmed", response.Status)

	mockTracking.AssertExpectations(t)
}

func TestAdminHandler_updateStatus_Invalid(t *testing.T) {
	mockTracking := &MockTrackingUseCase{}
	handler := newAdminHandler(mockTracking, &MockBroadcastStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "ref", Value: "RIM-ABC123"}}
	body, _ := json.Marshal(map[string]string{"status": "cancelled"})
	c.Request = httptest.NewRequest("PUT", "/api/admin/appointments/RIM-ABC123/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockTracking.On("UpdateStatus", c.Request.Context(), "RIM-ABC123", domain.Status("cancelled")).Return(nil, tracking.ErrInvalidStatus)

	handler.updateStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_updateStatus_NotFound(t *testing.T) {
	mockTracking := &MockTrackingUseCase{}
	handler := newAdminHandler(mockTracking, &MockBroadcastStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "ref", Value: "RIM-MISSING"}}
	body, _ := json.Marshal(map[string]string{"status": "confirmed"})
	c.Request = httptest.NewRequest("PUT", "/api/admin/appointments/RIM-MISSING/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockTracking.On("UpdateStatus", c.Request.Context(), "RIM-MISSING", domain.StatusConfirmed).Return(nil, repository.ErrNotFound)

	handler.updateStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_setTicker(t *testing.T) {
	mockBroadcast := &MockBroadcastStore{}
	handler := newAdminHandler(&MockTrackingUseCase{}, mockBroadcast)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]string{"message": "تم تمديد ساعات العمل هذا الأسبوع"})
	c.Request = httptest.NewRequest("PUT", "/api/admin/ticker", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockBroadcast.On("SetBroadcast", c.Request.Context(), "تم تمديد ساعات العمل هذا الأسبوع").Return(nil)

	handler.setTicker(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockBroadcast.AssertExpectations(t)
}

func TestRequireAdmin(t *testing.T) {
	manager := testManager()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/gated", RequireAdmin(manager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("Missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/gated", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Bad token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/gated", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := manager.NewToken("admin")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
