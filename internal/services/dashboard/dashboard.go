// Package dashboard сводка для главной страницы админки.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// RecentOrdersLimit сколько последних заказов показывать.
const RecentOrdersLimit = 5

// Repository источники счётчиков.
type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
	CountPaymentsByStatus(ctx context.Context, status models.PaymentStatus) (int, error)
	SumRevenue(ctx context.Context) (int64, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error)
}

// Service собирает сводку.
type Service struct {
	log  *slog.Logger
	repo Repository
}

// NewService создаёт Service.
func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

// Stats возвращает счётчики пользователей, товаров, заказов и выручку.
// Выручка считается по заказам в verified и completed.
func (s *Service) Stats(ctx context.Context) (*models.DashboardStats, error) {
	const op = "dashboard.Stats"
	wrap := func(err error) error {
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	var stats models.DashboardStats
	var err error
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, wrap(err)
	}
	if stats.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, wrap(err)
	}
	byStatus, err := s.repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, wrap(err)
	}
	stats.OrdersByStatus = make(map[models.OrderStatus]int, 5)
	for _, status := range []models.OrderStatus{
		models.OrderPendingPayment,
		models.OrderPaymentSubmitted,
		models.OrderVerified,
		models.OrderCompleted,
		models.OrderCancelled,
	} {
		stats.OrdersByStatus[status] = byStatus[status]
	}
	for _, n := range byStatus {
		stats.TotalOrders += n
	}
	if stats.PendingPayments, err = s.repo.CountPaymentsByStatus(ctx, models.PaymentPendingVerification); err != nil {
		return nil, wrap(err)
	}
	if stats.Revenue, err = s.repo.SumRevenue(ctx); err != nil {
		return nil, wrap(err)
	}
	if stats.RecentOrders, _, err = s.repo.ListOrders(ctx, models.OrderFilter{Limit: RecentOrdersLimit}); err != nil {
		return nil, wrap(err)
	}
	if stats.RecentOrders == nil {
		stats.RecentOrders = []*models.Order{}
	}
	s.log.Debug("dashboard stats collected", slog.String("op", op), slog.Int("orders", stats.TotalOrders))
	return &stats, nil
}
