package public

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/vpn-store/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Public(ctx context.Context) (*models.PublicSettings, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.(*models.PublicSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPublicHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	s := models.DefaultSettings()
	s.MaintenanceMode = true
	s.PaymentMethods = []models.PaymentMethod{{ID: "kbz", Name: "KBZPay", AccountNumber: "0991234567", IsActive: true}}
	pub := s.Public()

	svc := new(MockService)
	svc.On("Public", mock.Anything).Return(&pub, nil).Once()

	w := httptest.NewRecorder()
	New(logger, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"maintenanceMode":true`)
	assert.NotContains(t, w.Body.String(), "0991234567")
}
