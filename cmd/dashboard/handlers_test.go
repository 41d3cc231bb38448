package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alphasignal-dashboard-go/internal/config"
	"alphasignal-dashboard-go/internal/models"
	"alphasignal-dashboard-go/internal/profiles"
	"alphasignal-dashboard-go/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockClient is a mock implementation of the backend.ClientInterface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	args := m.Called()
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockClient) CreateProfile(ctx context.Context, platform models.Platform, username string) (string, error) {
	args := m.Called(platform, username)
	return args.String(0), args.Error(1)
}

func (m *MockClient) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) error {
	args := m.Called(id, patch)
	return args.Error(0)
}

func (m *MockClient) ActivateProfile(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockClient) DeactivateProfile(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockClient) DeleteProfile(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockClient) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	args := m.Called(status)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockClient) CancelOrder(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockClient) WalletValue(ctx context.Context) (*models.WalletValue, error) {
	args := m.Called()
	return args.Get(0).(*models.WalletValue), args.Error(1)
}

func setupAPI(t *testing.T) (*http.ServeMux, *MockClient) {
	t.Helper()
	client := new(MockClient)
	manager := profiles.NewManager(client, nil, nil, zap.NewNop())
	poller := wallet.NewPoller(client, time.Second, zap.NewNop())

	mux := http.NewServeMux()
	NewAPIHandler(zap.NewNop(), manager, poller, nil, config.Defaults{}).Register(mux)
	return mux, client
}

func TestRefreshEndpointFetchesCanonicalList(t *testing.T) {
	mux, client := setupAPI(t)
	client.On("ListProfiles").Return([]models.Profile{
		{ID: "p1", Platform: models.PlatformTwitter, Username: "alpha"},
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/profiles/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var views []profiles.ProfileView
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 1)
	assert.Equal(t, "p1", views[0].ID)
	client.AssertExpectations(t)
}

func TestRefreshEndpointFailureKeepsCachedListServable(t *testing.T) {
	mux, client := setupAPI(t)
	client.On("ListProfiles").Return([]models.Profile(nil), errors.New("backend down"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/profiles/refresh", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// The cached list endpoint still answers with the last known state.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
