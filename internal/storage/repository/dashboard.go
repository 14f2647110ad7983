package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// CountOrdersByStatus возвращает количество заказов в каждом статусе.
func (s *Storage) CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	const op = "storage.CountOrdersByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[models.OrderStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[models.OrderStatus(status)] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SumRevenue суммирует заказы с подтверждённой оплатой.
func (s *Storage) SumRevenue(ctx context.Context) (int64, error) {
	const op = "storage.SumRevenue"
	var total int64
	err := s.DB.QueryRowContext(ctx, `SELECT COALESCE(SUM(total), 0)::bigint FROM orders WHERE status IN ($1, $2)`,
		string(models.OrderVerified), string(models.OrderCompleted)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
