package order_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

// memRepo хранит заказы и платежи в памяти и повторяет условные переходы
// postgres-хранилища: переход из неожиданного статуса даёт storage.ErrConflict.
type memRepo struct {
	mu       sync.Mutex
	seq      int
	orders   map[string]*models.Order
	payments map[string]*models.Payment
	failNext error
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:   make(map[string]*models.Order),
		payments: make(map[string]*models.Payment),
	}
}

func (r *memRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *memRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	if o.VPNCredentials != nil {
		creds := *o.VPNCredentials
		c.VPNCredentials = &creds
	}
	return &c
}

func clonePayment(p *models.Payment) *models.Payment {
	c := *p
	return &c
}

func (r *memRepo) CreateOrder(_ context.Context, o models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	o.ID = r.nextID("order")
	o.Status = models.OrderPendingPayment
	o.OrderDate = time.Now().UTC()
	o.UpdatedAt = o.OrderDate
	r.orders[o.ID] = cloneOrder(&o)
	return cloneOrder(&o), nil
}

func (r *memRepo) GetOrder(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *memRepo) ListOrders(_ context.Context, f models.OrderFilter) ([]*models.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Order
	for _, o := range r.orders {
		if (f.UserID == "" || o.UserID == f.UserID) && (f.Status == "" || o.Status == f.Status) {
			all = append(all, cloneOrder(o))
		}
	}
	total := len(all)
	if f.Offset >= len(all) {
		return []*models.Order{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], total, nil
}

func (r *memRepo) DeliverOrder(_ context.Context, id string, creds models.VPNCredentials, at time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != models.OrderVerified {
		return nil, storage.ErrConflict
	}
	o.Status = models.OrderCompleted
	o.VPNCredentials = &creds
	o.CompletedAt = &at
	o.UpdatedAt = at
	return cloneOrder(o), nil
}

func (r *memRepo) SetOrderStatus(_ context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	o.Status = status
	return cloneOrder(o), nil
}

func (r *memRepo) DeleteOrder(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return storage.ErrNotFound
	}
	for pid, p := range r.payments {
		if p.OrderID == id {
			delete(r.payments, pid)
		}
	}
	delete(r.orders, id)
	return nil
}

func (r *memRepo) CreatePayment(_ context.Context, p models.Payment) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.TransactionID == p.TransactionID {
			return nil, storage.ErrDuplicateTransaction
		}
		if existing.OrderID == p.OrderID {
			return nil, storage.ErrPaymentExists
		}
	}
	o, ok := r.orders[p.OrderID]
	if !ok || o.PaymentID != "" || o.Status != models.OrderPendingPayment {
		return nil, storage.ErrConflict
	}
	p.ID = r.nextID("payment")
	p.Status = models.PaymentPendingVerification
	p.SubmittedAt = time.Now().UTC()
	r.payments[p.ID] = clonePayment(&p)
	o.PaymentID = p.ID
	o.Status = models.OrderPaymentSubmitted
	return clonePayment(&p), nil
}

func (r *memRepo) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clonePayment(p), nil
}

func (r *memRepo) TransactionExists(_ context.Context, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) DecidePayment(_ context.Context, d models.PaymentDecision) (*models.Order, *models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[d.OrderID]
	if !ok || o.PaymentID != d.PaymentID || o.Status != models.OrderPaymentSubmitted {
		return nil, nil, storage.ErrConflict
	}
	p, ok := r.payments[d.PaymentID]
	if !ok || p.Status != models.PaymentPendingVerification {
		return nil, nil, storage.ErrConflict
	}
	o.Status = d.OrderStatus
	o.UpdatedAt = d.At
	at := d.At
	p.Status = d.PaymentStatus
	p.VerifiedAt = &at
	p.VerifiedBy = d.AdminID
	p.RejectionReason = d.Reason
	p.Notes = d.Notes
	return cloneOrder(o), clonePayment(p), nil
}

// stubCatalog отдаёт товары из карты.
type stubCatalog map[string]*models.Product

func (c stubCatalog) Get(_ context.Context, id string, includeInactive bool) (*models.Product, error) {
	p, ok := c[id]
	if !ok || (!p.IsActive && !includeInactive) {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

type UserReaderMock struct {
	mock.Mock
}

func (m *UserReaderMock) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) NotifyDelivered(ctx context.Context, n models.DeliveryNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}
