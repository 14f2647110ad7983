package storage

import "errors"

// Ошибки хранилища, не зависящие от конкретной СУБД.
var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrConflict             = errors.New("state conflict")
	ErrDuplicateTransaction = errors.New("transaction id already used")
	ErrPaymentExists        = errors.New("payment already exists for order")
)
