package store

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/vpn-store/internal/http/cookies"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/auth/password"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/dashboard"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/health"
	ordercreate "github.com/magabrotheeeer/vpn-store/internal/http/handlers/order/create"
	orderdeliver "github.com/magabrotheeeer/vpn-store/internal/http/handlers/order/deliver"
	orderlist "github.com/magabrotheeeer/vpn-store/internal/http/handlers/order/list"
	orderread "github.com/magabrotheeeer/vpn-store/internal/http/handlers/order/read"
	orderremove "github.com/magabrotheeeer/vpn-store/internal/http/handlers/order/remove"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/order/review"
	orderstatus "github.com/magabrotheeeer/vpn-store/internal/http/handlers/order/status"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/payment/methods"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/payment/submit"
	productlist "github.com/magabrotheeeer/vpn-store/internal/http/handlers/product/list"
	productread "github.com/magabrotheeeer/vpn-store/internal/http/handlers/product/read"
	productremove "github.com/magabrotheeeer/vpn-store/internal/http/handlers/product/remove"
	productsave "github.com/magabrotheeeer/vpn-store/internal/http/handlers/product/save"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/settings/manage"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/settings/public"
	userlist "github.com/magabrotheeeer/vpn-store/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/vpn-store/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/vpn-store/internal/http/handlers/user/remove"
	userupdate "github.com/magabrotheeeer/vpn-store/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/lib/metrics"
)

// RouteOptions зависимости маршрутов.
type RouteOptions struct {
	Services   Services
	Metrics    *metrics.Metrics
	Limiter    *middlewarectx.IPLimiter
	Cookies    cookies.Options
	StaticDir  string
	HealthDeps map[string]health.Check
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, opts RouteOptions) {
	svc := opts.Services

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		opts.Metrics.Middleware,
		middlewarectx.MaintenanceGate(logger, svc.Settings),
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, opts.Limiter))

		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth, opts.Cookies).ServeHTTP)
		r.Post("/auth/admin-login", login.NewAdmin(logger, svc.Auth, opts.Cookies).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, svc.Auth, opts.Cookies).ServeHTTP)
		r.Post("/auth/admin-logout", logout.NewAdmin(logger, svc.Auth, opts.Cookies).ServeHTTP)
		r.Get("/products", productlist.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/products/{id}", productread.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/settings", public.New(logger, svc.Settings).ServeHTTP)

		// Покупатель
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(logger, svc.Auth))
			r.Get("/auth/me", me.New(logger, svc.Auth).ServeHTTP)
			r.Put("/auth/password", password.New(logger, svc.Auth).ServeHTTP)
			r.Post("/orders", ordercreate.New(logger, svc.Orders).ServeHTTP)
			r.Get("/orders", orderlist.New(logger, svc.Orders).ServeHTTP)
			r.Get("/orders/{id}", orderread.New(logger, svc.Orders).ServeHTTP)
			r.Post("/payment/submit", submit.New(logger, svc.Orders).ServeHTTP)
			r.Get("/payment-methods", methods.New(logger, svc.Settings).ServeHTTP)
		})

		// Администратор
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.RequireAdmin(logger, svc.Auth))
			r.Get("/dashboard", dashboard.New(logger, svc.Dashboard).ServeHTTP)

			r.Get("/orders", orderlist.NewAdmin(logger, svc.Orders).ServeHTTP)
			r.Get("/orders/{id}", orderread.New(logger, svc.Orders).ServeHTTP)
			r.Delete("/orders/{id}", orderremove.New(logger, svc.Orders).ServeHTTP)
			r.Put("/orders/{id}/accept-payment", review.NewAccept(logger, svc.Orders).ServeHTTP)
			r.Put("/orders/{id}/reject-payment", review.NewReject(logger, svc.Orders).ServeHTTP)
			r.Put("/orders/{id}/deliver", orderdeliver.New(logger, svc.Orders).ServeHTTP)
			r.Put("/orders/{id}/status", orderstatus.New(logger, svc.Orders).ServeHTTP)

			r.Get("/products", productlist.NewAdmin(logger, svc.Catalog).ServeHTTP)
			r.Get("/products/{id}", productread.NewAdmin(logger, svc.Catalog).ServeHTTP)
			r.Post("/products", productsave.New(logger, svc.Catalog).ServeHTTP)
			r.Put("/products/{id}", productsave.New(logger, svc.Catalog).ServeHTTP)
			r.Delete("/products/{id}", productremove.New(logger, svc.Catalog).ServeHTTP)

			r.Get("/users", userlist.New(logger, svc.Users).ServeHTTP)
			r.Get("/users/{id}", userread.New(logger, svc.Users).ServeHTTP)
			r.Put("/users/{id}", userupdate.New(logger, svc.Users).ServeHTTP)
			r.Delete("/users/{id}", userremove.New(logger, svc.Users).ServeHTTP)

			settingsHandler := manage.New(logger, svc.Settings)
			r.Get("/settings", settingsHandler.ServeHTTP)
			r.Put("/settings", settingsHandler.ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, opts.HealthDeps).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	registerStatic(r, opts.StaticDir)
}

// registerStatic отдаёт собранный интерфейс магазина и страницу обслуживания.
func registerStatic(r chi.Router, dir string) {
	if dir == "" {
		return
	}
	maintenancePage := filepath.Join(dir, "maintenance.html")
	r.Get(middlewarectx.MaintenancePath, func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, maintenancePage)
	})
	r.NotFound(http.FileServer(http.Dir(dir)).ServeHTTP)
}
