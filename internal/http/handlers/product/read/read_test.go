package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id string, includeInactive bool) (*models.Product, error) {
	args := m.Called(ctx, id, includeInactive)
	if res := args.Get(0); res != nil {
		return res.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		admin          bool
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение товара",
			id:   "p1",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "p1", false).
					Return(&models.Product{ID: "p1", Name: "NordVPN 1 Month", Price: 15000, IsActive: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"NordVPN 1 Month"`,
		},
		{
			name: "неактивный товар публично не найден",
			id:   "p2",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "p2", false).Return(nil, apperr.NotFound("product not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"kind":"NotFound"`,
		},
		{
			name:  "админ видит неактивный товар",
			admin: true,
			id:    "p2",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "p2", true).Return(&models.Product{ID: "p2", IsActive: false}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"isActive":false`,
		},
		{
			name: "ошибка сервиса",
			id:   "p3",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "p3", false).Return(nil, apperr.Internal(errors.New("db error")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","kind":"Internal","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)
			if tt.admin {
				handler = NewAdmin(logger, mockService)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
