package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

const paymentColumns = `id, order_id, user_id, payment_method, transaction_id, sender_name,
	sender_phone, amount, proof_image, status, submitted_at, verified_at, verified_by,
	rejection_reason, notes`

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	var (
		status     string
		verifiedAt sql.NullTime
		verifiedBy sql.NullString
	)
	if err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.PaymentMethod, &p.TransactionID,
		&p.SenderName, &p.SenderPhone, &p.Amount, &p.ProofImage, &status, &p.SubmittedAt,
		&verifiedAt, &verifiedBy, &p.RejectionReason, &p.Notes); err != nil {
		return nil, err
	}
	p.Status = models.PaymentStatus(status)
	if verifiedAt.Valid {
		p.VerifiedAt = &verifiedAt.Time
	}
	p.VerifiedBy = verifiedBy.String
	return p, nil
}

// CreatePayment сохраняет платёж и привязывает его к заказу в одной транзакции.
// Уникальные индексы на transaction_id и order_id защищают от гонок,
// а обновление заказа выполняется только из pending_payment без платежа.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (*models.Payment, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var created *models.Payment
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO payments (order_id, user_id, payment_method, transaction_id,
					  sender_name, sender_phone, amount, proof_image, status)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				  RETURNING ` + paymentColumns
		var err error
		created, err = scanPayment(tx.QueryRowContext(ctx, query,
			p.OrderID, p.UserID, p.PaymentMethod, p.TransactionID, p.SenderName,
			p.SenderPhone, p.Amount, p.ProofImage, string(models.PaymentPendingVerification)))
		if err != nil {
			return mapError(err)
		}

		result, err := tx.ExecContext(ctx, `UPDATE orders
				SET payment_id = $1, status = $2, updated_at = NOW()
				WHERE id = $3 AND payment_id IS NULL AND status = $4`,
			created.ID, string(models.OrderPaymentSubmitted), p.OrderID, string(models.OrderPendingPayment))
		if err != nil {
			return mapError(err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetPayment возвращает платёж по ID.
func (s *Storage) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPayment(s.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// TransactionExists проверяет, использован ли уже номер транзакции.
func (s *Storage) TransactionExists(ctx context.Context, transactionID string) (bool, error) {
	const op = "storage.TransactionExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE transaction_id = $1)`, transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// DecidePayment фиксирует решение администратора по платежу: меняет статус
// заказа и платежа и проставляет время и автора проверки. Заказ должен быть в
// payment_submitted, а платёж в pending_verification, иначе storage.ErrConflict.
func (s *Storage) DecidePayment(ctx context.Context, d models.PaymentDecision) (*models.Order, *models.Payment, error) {
	const op = "storage.DecidePayment"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		order   *models.Order
		payment *models.Payment
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRowContext(ctx, `UPDATE orders
				SET status = $1, updated_at = $2
				WHERE id = $3 AND payment_id = $4 AND status = $5
				RETURNING `+orderColumns,
			string(d.OrderStatus), d.At, d.OrderID, d.PaymentID, string(models.OrderPaymentSubmitted)))
		if err != nil {
			return conflictOnNoRows(err)
		}

		payment, err = scanPayment(tx.QueryRowContext(ctx, `UPDATE payments
				SET status = $1, verified_at = $2, verified_by = $3,
				    rejection_reason = $4, notes = $5
				WHERE id = $6 AND status = $7
				RETURNING `+paymentColumns,
			string(d.PaymentStatus), d.At, nullString(d.AdminID), d.Reason, d.Notes,
			d.PaymentID, string(models.PaymentPendingVerification)))
		if err != nil {
			return conflictOnNoRows(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, payment, nil
}

// CountPaymentsByStatus возвращает количество платежей в статусе.
func (s *Storage) CountPaymentsByStatus(ctx context.Context, status models.PaymentStatus) (int, error) {
	const op = "storage.CountPaymentsByStatus"
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE status = $1`,
		string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func conflictOnNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrConflict
	}
	return mapError(err)
}
