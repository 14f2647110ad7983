package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

// Имена ограничений уникальности из миграций.
const (
	constraintPaymentTxID    = "payments_transaction_id_key"
	constraintPaymentOrder   = "payments_order_id_key"
	constraintOrderPaymentID = "orders_payment_id_key"
)

// mapError переводит ошибки драйвера в ошибки пакета storage.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case constraintPaymentTxID:
				return storage.ErrDuplicateTransaction
			case constraintPaymentOrder, constraintOrderPaymentID:
				return storage.ErrPaymentExists
			default:
				return storage.ErrAlreadyExists
			}
		case pgerrcode.InvalidTextRepresentation:
			// Строка, не являющаяся UUID, не может совпасть ни с одной записью.
			return storage.ErrNotFound
		}
	}
	return err
}
