package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
)

type maintenanceStub struct {
	on    bool
	err   error
	calls int
}

func (s *maintenanceStub) MaintenanceMode(context.Context) (bool, error) {
	s.calls++
	return s.on, s.err
}

func TestMaintenanceGate(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		on           bool
		err          error
		wantStatus   int
		wantLocation string
	}{
		{name: "off", path: "/products", wantStatus: http.StatusOK},
		{name: "on redirects pages", path: "/products", on: true, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/maintenance"},
		{name: "on root", path: "/", on: true, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/maintenance"},
		{name: "api exempt", path: "/api/products", on: true, wantStatus: http.StatusOK},
		{name: "admin exempt", path: "/admin/orders", on: true, wantStatus: http.StatusOK},
		{name: "admin root exempt", path: "/admin", on: true, wantStatus: http.StatusOK},
		{name: "admin lookalike redirects", path: "/administrator", on: true, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/maintenance"},
		{name: "health lookalike redirects", path: "/healthy-deals", on: true, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/maintenance"},
		{name: "api root exempt", path: "/api", on: true, wantStatus: http.StatusOK},
		{name: "maintenance page exempt", path: "/maintenance", on: true, wantStatus: http.StatusOK},
		{name: "health exempt", path: "/health", on: true, wantStatus: http.StatusOK},
		{name: "asset exempt", path: "/logo.png", on: true, wantStatus: http.StatusOK},
		{name: "static dir exempt", path: "/static/app", on: true, wantStatus: http.StatusOK},
		{name: "settings failure fails open", path: "/products", err: errors.New("db down"), wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &maintenanceStub{on: tt.on, err: tt.err}
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			middlewarectx.MaintenanceGate(newNoopLogger(), stub)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}
