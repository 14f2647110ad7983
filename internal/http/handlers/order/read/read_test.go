package read

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/services/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, actorID string, isAdmin bool, orderID string) (*models.OrderDetails, error) {
	args := m.Called(ctx, actorID, isAdmin, orderID)
	if res := args.Get(0); res != nil {
		return res.(*models.OrderDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		identity       *auth.Identity
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name:     "свой заказ",
			identity: &auth.Identity{UserID: "u1", Role: models.RoleUser},
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "u1", false, "o1").
					Return(&models.OrderDetails{Order: &models.Order{ID: "o1", UserID: "u1"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "чужой заказ не найден",
			identity: &auth.Identity{UserID: "u2", Role: models.RoleUser},
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "u2", false, "o1").Return(nil, apperr.NotFound("order not found")).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:     "админ читает любой заказ",
			identity: &auth.Identity{UserID: "a1", Role: models.RoleAdmin},
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "a1", true, "o1").
					Return(&models.OrderDetails{Order: &models.Order{ID: "o1", UserID: "u1"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "o1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithIdentity(ctx, tt.identity, "tok"))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
