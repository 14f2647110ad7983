package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("bad"), want: http.StatusBadRequest},
		{name: "auth required", err: AuthRequired("no token"), want: http.StatusUnauthorized},
		{name: "admin required", err: AdminRequired(), want: http.StatusForbidden},
		{name: "forbidden", err: Forbidden("not yours"), want: http.StatusForbidden},
		{name: "not found", err: NotFound("order not found"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("duplicate"), want: http.StatusConflict},
		{name: "precondition", err: PreconditionFailed("not verified"), want: http.StatusBadRequest},
		{name: "rate limited", err: RateLimited(10), want: http.StatusTooManyRequests},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped kind", err: fmt.Errorf("op: %w", NotFound("x")), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage_HidesInternalCause(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"))
	assert.Equal(t, "internal error", PublicMessage(err))
	assert.Equal(t, "internal error", PublicMessage(errors.New("raw")))
	assert.Equal(t, "order not found", PublicMessage(NotFound("order not found")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(KindConflict, "duplicate", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(nil, KindConflict))
}

func TestDuplicateTransaction(t *testing.T) {
	err := fmt.Errorf("submit: %w", DuplicateTransaction())
	assert.True(t, Is(err, KindConflict))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, CodeDuplicateTransaction, e.Code)
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("payment already submitted")))
}
