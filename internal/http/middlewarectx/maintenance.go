package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
)

// MaintenancePath страница, на которую отправляются посетители во время обслуживания.
const MaintenancePath = "/maintenance"

// MaintenanceChecker сообщает, включён ли режим обслуживания.
type MaintenanceChecker interface {
	MaintenanceMode(ctx context.Context) (bool, error)
}

// exemptRoots сравниваются по целому сегменту: /admin пропускает /admin/orders, но не /administrator.
var exemptRoots = []string{"/api", "/admin", MaintenancePath, "/metrics", "/docs", "/health", "/static", "/assets"}

// MaintenanceGate перенаправляет страницы сайта на MaintenancePath, пока включён
// режим обслуживания. API, админка и статические файлы остаются доступны.
// Если настройки прочитать не удалось, запрос пропускается.
func MaintenanceGate(log *slog.Logger, checker MaintenanceChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			on, err := checker.MaintenanceMode(r.Context())
			if err != nil {
				log.Warn("maintenance check failed", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if on {
				http.Redirect(w, r, MaintenancePath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func exempt(p string) bool {
	for _, root := range exemptRoots {
		if p == root || strings.HasPrefix(p, root+"/") {
			return true
		}
	}
	return path.Ext(p) != ""
}
