package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_PublicHidesAccountDetails(t *testing.T) {
	s := DefaultSettings()
	s.MaintenanceMode = true
	s.PaymentMethods = []PaymentMethod{
		{ID: "kbz", Name: "KBZPay", AccountNumber: "0912345678", AccountName: "U Aung", Phone: "0912345678", IsActive: true},
		{ID: "wave", Name: "WavePay", AccountNumber: "0998765432", IsActive: false},
	}

	pub := s.Public()

	assert.True(t, pub.MaintenanceMode)
	assert.Equal(t, []PublicPaymentMethod{
		{ID: "kbz", Name: "KBZPay", IsActive: true},
		{ID: "wave", Name: "WavePay", IsActive: false},
	}, pub.PaymentMethods)
}

func TestSettings_ActivePaymentMethods(t *testing.T) {
	s := Settings{PaymentMethods: []PaymentMethod{
		{ID: "kbz", IsActive: true},
		{ID: "wave", IsActive: false},
		{ID: "aya", IsActive: true},
	}}

	active := s.ActivePaymentMethods()

	assert.Len(t, active, 2)
	assert.Equal(t, "kbz", active[0].ID)
	assert.Equal(t, "aya", active[1].ID)
}

func TestComputeTotal(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Price: 15000, Quantity: 1},
		{ProductID: "p2", Price: 5000, Quantity: 3},
	}
	assert.Equal(t, int64(30000), ComputeTotal(items))
	assert.Equal(t, int64(0), ComputeTotal(nil))
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderVerified.Valid())
	assert.False(t, OrderStatus("approved").Valid())
	assert.True(t, OrderCompleted.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.False(t, OrderVerified.Terminal())
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		in         Pagination
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", in: Pagination{}, wantPage: 1, wantLimit: DefaultPageSize, wantOffset: 0},
		{name: "third page", in: Pagination{Page: 3, Limit: 10}, wantPage: 3, wantLimit: 10, wantOffset: 20},
		{name: "limit capped", in: Pagination{Page: 1, Limit: 1000}, wantPage: 1, wantLimit: MaxPageSize, wantOffset: 0},
		{name: "negative page", in: Pagination{Page: -2, Limit: 5}, wantPage: 1, wantLimit: 5, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}

	p := Pagination{Page: 1, Limit: 12}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(12))
	assert.Equal(t, 2, p.TotalPages(13))
}
