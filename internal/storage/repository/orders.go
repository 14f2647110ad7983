package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

const orderColumns = `id, user_id, items, total, status, payment_id, order_date,
	completed_at, vpn_credentials, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var (
		items       []byte
		status      string
		paymentID   sql.NullString
		completedAt sql.NullTime
		credentials []byte
	)
	if err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &status, &paymentID,
		&o.OrderDate, &completedAt, &credentials, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	o.PaymentID = paymentID.String
	if completedAt.Valid {
		o.CompletedAt = &completedAt.Time
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if len(credentials) > 0 {
		o.VPNCredentials = &models.VPNCredentials{}
		if err := json.Unmarshal(credentials, o.VPNCredentials); err != nil {
			return nil, fmt.Errorf("decode vpn credentials: %w", err)
		}
	}
	return o, nil
}

// CreateOrder сохраняет новый заказ в статусе pending_payment.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO orders (user_id, items, total, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + orderColumns
	created, err := scanOrder(s.DB.QueryRowContext(ctx, query,
		order.UserID, items, order.Total, string(models.OrderPendingPayment)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetOrder возвращает заказ по ID.
func (s *Storage) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	const op = "storage.GetOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	o, err := scanOrder(s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return o, nil
}

// ListOrders возвращает страницу заказов, новые сначала, и общее количество.
func (s *Storage) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error) {
	const op = "storage.ListOrders"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := ` WHERE ($1 = '' OR user_id::text = $1) AND ($2 = '' OR status = $2)`
	args := []any{filter.UserID, string(filter.Status)}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY order_date DESC, id LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// DeliverOrder выдаёт доступ и закрывает заказ. Переход возможен только из verified,
// иначе возвращается storage.ErrConflict и заказ не меняется.
func (s *Storage) DeliverOrder(ctx context.Context, id string, creds models.VPNCredentials, at time.Time) (*models.Order, error) {
	const op = "storage.DeliverOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE orders
			  SET status = $1, vpn_credentials = $2, completed_at = $3, updated_at = $3
			  WHERE id = $4 AND status = $5
			  RETURNING ` + orderColumns
	o, err := scanOrder(s.DB.QueryRowContext(ctx, query,
		string(models.OrderCompleted), data, at, id, string(models.OrderVerified)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, conflictOnNoRows(err))
	}
	return o, nil
}

// SetOrderStatus безусловно выставляет статус заказа.
func (s *Storage) SetOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	const op = "storage.SetOrderStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders SET status = $1, updated_at = NOW()
			  WHERE id = $2
			  RETURNING ` + orderColumns
	o, err := scanOrder(s.DB.QueryRowContext(ctx, query, string(status), id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return o, nil
}

// DeleteOrder удаляет заказ вместе с его платежом.
func (s *Storage) DeleteOrder(ctx context.Context, id string) error {
	const op = "storage.DeleteOrder"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE order_id = $1`, id); err != nil {
			return mapError(err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return mapError(err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
