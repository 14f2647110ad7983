// Package order жизненный цикл заказа и платежа.
//
// Заказ проходит pending_payment -> payment_submitted -> verified -> completed,
// либо payment_submitted -> cancelled при отклонении платежа. Подтверждение оплаты
// и выдача доступа — два отдельных шага администратора: выдать доступ можно только
// по подтверждённому заказу. Каждый переход в хранилище выполняется условным
// UPDATE, поэтому проверка в этом пакете лишь даёт понятную ошибку заранее.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/lib/metrics"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

// notifyTimeout ограничивает публикацию уведомления после выдачи доступа.
const notifyTimeout = 5 * time.Second

// Repository хранилище заказов и платежей.
type Repository interface {
	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error)
	DeliverOrder(ctx context.Context, id string, creds models.VPNCredentials, at time.Time) (*models.Order, error)
	SetOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error

	CreatePayment(ctx context.Context, p models.Payment) (*models.Payment, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	TransactionExists(ctx context.Context, transactionID string) (bool, error)
	DecidePayment(ctx context.Context, d models.PaymentDecision) (*models.Order, *models.Payment, error)
}

// Catalog источник актуальных цен при оформлении.
type Catalog interface {
	Get(ctx context.Context, id string, includeInactive bool) (*models.Product, error)
}

// UserReader нужен, чтобы узнать адрес покупателя для уведомления.
type UserReader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Notifier сообщает покупателю о выданном доступе.
type Notifier interface {
	NotifyDelivered(ctx context.Context, n models.DeliveryNotification) error
}

// CreateRequest данные нового заказа.
type CreateRequest struct {
	UserID string             `json:"userId"`
	Items  []models.OrderItem `json:"items" validate:"required,min=1,dive"`
	Total  int64              `json:"total" validate:"gte=0"`
}

// DeliverRequest данные доступа, которые выдаёт администратор.
type DeliverRequest struct {
	Username   string     `json:"username" validate:"required,max=200"`
	Password   string     `json:"password" validate:"required,max=200"`
	ServerInfo string     `json:"serverInfo,omitempty" validate:"max=500"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// Query параметры выборки заказов.
type Query struct {
	UserID string
	Status models.OrderStatus
	models.Pagination
}

// Service переходы заказа и платежа.
type Service struct {
	log      *slog.Logger
	repo     Repository
	catalog  Catalog
	users    UserReader
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time

	notifications sync.WaitGroup
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт Service.
func NewService(
	log *slog.Logger,
	repo Repository,
	catalog Catalog,
	users UserReader,
	notifier Notifier,
	m *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		log:      log,
		repo:     repo,
		catalog:  catalog,
		users:    users,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create оформляет заказ от имени actorID. Строки заказа берут название, цену
// и срок из каталога, присланная сумма должна совпасть с вычисленной.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*models.Order, error) {
	const op = "order.Create"

	if req.UserID == "" {
		req.UserID = actorID
	}
	if req.UserID != actorID {
		return nil, apperr.Forbidden("cannot create an order for another user")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, apperr.Validation("item quantity must be at least 1")
		}
		product, err := s.catalog.Get(ctx, item.ProductID, false)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, apperr.NotFound(fmt.Sprintf("product %s is not available", item.ProductID))
			}
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Duration:  product.Duration,
			Quantity:  item.Quantity,
		})
	}
	total := models.ComputeTotal(items)
	if req.Total != total {
		return nil, apperr.Validation(fmt.Sprintf("order total %d does not match item prices (%d)", req.Total, total))
	}

	created, err := s.repo.CreateOrder(ctx, models.Order{
		UserID: actorID,
		Items:  items,
		Total:  total,
		Status: models.OrderPendingPayment,
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.metrics.Transition("none", string(models.OrderPendingPayment))
	s.log.Info("order created",
		slog.String("op", op),
		slog.String("order_id", created.ID),
		slog.String("user_id", actorID),
		slog.Int64("total", total),
	)
	return created, nil
}

// SubmitPayment регистрирует заявку об оплате по заказу владельца.
// Номер транзакции проверяется до записи; уникальные ограничения базы
// остаются окончательной защитой от параллельных отправок.
func (s *Service) SubmitPayment(ctx context.Context, actorID string, sub models.PaymentSubmission) (*models.Payment, error) {
	const op = "order.SubmitPayment"
	log := s.log.With(slog.String("op", op), slog.String("order_id", sub.OrderID))

	sub.TransactionID = strings.TrimSpace(sub.TransactionID)
	sub.PaymentMethod = strings.TrimSpace(sub.PaymentMethod)
	sub.SenderName = strings.TrimSpace(sub.SenderName)
	sub.SenderPhone = strings.TrimSpace(sub.SenderPhone)
	if sub.OrderID == "" || sub.TransactionID == "" || sub.PaymentMethod == "" ||
		sub.SenderName == "" || sub.SenderPhone == "" {
		return nil, apperr.Validation("orderId, paymentMethod, transactionId, senderName and senderPhone are required")
	}
	if sub.Amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}

	order, err := s.getOrder(ctx, op, sub.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actorID {
		log.Warn("payment for another user's order rejected", slog.String("actor_id", actorID))
		return nil, apperr.NotFound("order not found")
	}
	if order.HasPayment() {
		return nil, apperr.Conflict("payment already submitted for this order")
	}
	if order.Status != models.OrderPendingPayment {
		return nil, apperr.PreconditionFailed(fmt.Sprintf("order is %s, payment cannot be submitted", order.Status))
	}

	taken, err := s.repo.TransactionExists(ctx, sub.TransactionID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if taken {
		log.Info("duplicate transaction id rejected")
		return nil, apperr.DuplicateTransaction()
	}
	if sub.Amount != order.Total {
		log.Info("payment amount differs from order total",
			slog.Int64("amount", sub.Amount), slog.Int64("total", order.Total))
	}

	payment, err := s.repo.CreatePayment(ctx, models.Payment{
		OrderID:       order.ID,
		UserID:        actorID,
		PaymentMethod: sub.PaymentMethod,
		TransactionID: sub.TransactionID,
		SenderName:    sub.SenderName,
		SenderPhone:   sub.SenderPhone,
		Amount:        sub.Amount,
		ProofImage:    sub.ProofImage,
	})
	switch {
	case errors.Is(err, storage.ErrDuplicateTransaction):
		return nil, apperr.DuplicateTransaction()
	case errors.Is(err, storage.ErrPaymentExists), errors.Is(err, storage.ErrConflict):
		return nil, apperr.Conflict("payment already submitted for this order")
	case err != nil:
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Transition(string(models.OrderPendingPayment), string(models.OrderPaymentSubmitted))
	log.Info("payment submitted", slog.String("payment_id", payment.ID))
	return payment, nil
}

// AcceptPayment подтверждает оплату: заказ и платёж становятся verified.
func (s *Service) AcceptPayment(ctx context.Context, adminID, orderID, notes string) (*models.OrderDetails, error) {
	return s.decide(ctx, "order.AcceptPayment", models.PaymentDecision{
		OrderID:       orderID,
		OrderStatus:   models.OrderVerified,
		PaymentStatus: models.PaymentVerified,
		AdminID:       adminID,
		Notes:         notes,
	})
}

// RejectPayment отклоняет оплату: заказ отменяется, платёж rejected.
func (s *Service) RejectPayment(ctx context.Context, adminID, orderID, reason string) (*models.OrderDetails, error) {
	return s.decide(ctx, "order.RejectPayment", models.PaymentDecision{
		OrderID:       orderID,
		OrderStatus:   models.OrderCancelled,
		PaymentStatus: models.PaymentRejected,
		AdminID:       adminID,
		Reason:        strings.TrimSpace(reason),
	})
}

func (s *Service) decide(ctx context.Context, op string, d models.PaymentDecision) (*models.OrderDetails, error) {
	log := s.log.With(slog.String("op", op), slog.String("order_id", d.OrderID), slog.String("admin_id", d.AdminID))

	order, err := s.getOrder(ctx, op, d.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.HasPayment() {
		return nil, apperr.PreconditionFailed("order has no payment to review")
	}
	if order.Status != models.OrderPaymentSubmitted {
		return nil, apperr.PreconditionFailed(fmt.Sprintf("order is %s, payment cannot be reviewed", order.Status))
	}

	d.PaymentID = order.PaymentID
	d.At = s.now().UTC()
	updated, payment, err := s.repo.DecidePayment(ctx, d)
	if errors.Is(err, storage.ErrConflict) {
		return nil, apperr.PreconditionFailed("order is no longer awaiting payment review")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Transition(string(order.Status), string(updated.Status))
	log.Info("payment reviewed",
		slog.String("payment_id", payment.ID),
		slog.String("order_status", string(updated.Status)),
		slog.String("payment_status", string(payment.Status)),
	)
	return &models.OrderDetails{Order: updated, Payment: payment}, nil
}

// Deliver выдаёт VPN-доступ по подтверждённому заказу и закрывает его.
// Уведомление отправляется в фоне, его ошибка только логируется.
func (s *Service) Deliver(ctx context.Context, adminID, orderID string, req DeliverRequest) (*models.Order, error) {
	const op = "order.Deliver"
	log := s.log.With(slog.String("op", op), slog.String("order_id", orderID), slog.String("admin_id", adminID))

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	order, err := s.getOrder(ctx, op, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderVerified {
		return nil, apperr.PreconditionFailed(fmt.Sprintf("order is %s, only verified orders can be delivered", order.Status))
	}

	at := s.now().UTC()
	delivered, err := s.repo.DeliverOrder(ctx, orderID, models.VPNCredentials{
		Username:    req.Username,
		Password:    req.Password,
		ServerInfo:  strings.TrimSpace(req.ServerInfo),
		ExpiryDate:  req.ExpiryDate,
		DeliveredAt: at,
		DeliveredBy: adminID,
	}, at)
	if errors.Is(err, storage.ErrConflict) {
		return nil, apperr.PreconditionFailed("order is no longer verified")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Transition(string(models.OrderVerified), string(models.OrderCompleted))
	log.Info("vpn credentials delivered")

	s.notifyDelivered(ctx, log, delivered)
	return delivered, nil
}

// Wait ждёт завершения фоновых уведомлений.
func (s *Service) Wait() {
	s.notifications.Wait()
}

func (s *Service) notifyDelivered(ctx context.Context, log *slog.Logger, order *models.Order) {
	if s.notifier == nil || order.VPNCredentials == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		s.publishDelivered(ctx, log, order)
	}()
}

func (s *Service) publishDelivered(ctx context.Context, log *slog.Logger, order *models.Order) {
	n := models.DeliveryNotification{
		OrderID:    order.ID,
		Username:   order.VPNCredentials.Username,
		Password:   order.VPNCredentials.Password,
		ServerInfo: order.VPNCredentials.ServerInfo,
		ExpiryDate: order.VPNCredentials.ExpiryDate,
		Items:      make([]string, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		n.Items = append(n.Items, fmt.Sprintf("%s (%s) x%d", item.Name, item.Duration, item.Quantity))
	}

	user, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		s.metrics.Notification("failed")
		log.Error("delivery notification skipped: customer lookup failed", sl.Err(err))
		return
	}
	n.Email = user.Email
	n.Name = user.Name

	if err := s.notifier.NotifyDelivered(ctx, n); err != nil {
		s.metrics.Notification("failed")
		log.Error("delivery notification failed", sl.Err(err))
		return
	}
	s.metrics.Notification("published")
}

// OverrideStatus ручная правка статуса администратором без проверки перехода.
func (s *Service) OverrideStatus(ctx context.Context, adminID, orderID string, status models.OrderStatus) (*models.Order, error) {
	const op = "order.OverrideStatus"

	if !status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown order status %q", status))
	}
	before, err := s.getOrder(ctx, op, orderID)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.SetOrderStatus(ctx, orderID, status)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Transition(string(before.Status), string(status))
	s.log.Warn("order status overridden",
		slog.String("op", op),
		slog.String("order_id", orderID),
		slog.String("admin_id", adminID),
		slog.String("from", string(before.Status)),
		slog.String("to", string(status)),
	)
	return updated, nil
}

// List возвращает страницу заказов. Пустой UserID — все заказы (админка).
func (s *Service) List(ctx context.Context, q Query) (*models.OrderPage, error) {
	const op = "order.List"

	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown order status %q", q.Status))
	}
	p := q.Pagination.Normalize()
	orders, total, err := s.repo.ListOrders(ctx, models.OrderFilter{
		UserID: q.UserID,
		Status: q.Status,
		Limit:  p.Limit,
		Offset: p.Offset(),
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return &models.OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       p.Page,
		TotalPages: p.TotalPages(total),
	}, nil
}

// Get возвращает заказ с платежом. Покупатель видит только свои заказы,
// чужой заказ для него не существует.
func (s *Service) Get(ctx context.Context, actorID string, isAdmin bool, orderID string) (*models.OrderDetails, error) {
	const op = "order.Get"

	order, err := s.getOrder(ctx, op, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != actorID {
		return nil, apperr.NotFound("order not found")
	}

	details := &models.OrderDetails{Order: order}
	if order.HasPayment() {
		payment, err := s.repo.GetPayment(ctx, order.PaymentID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
		default:
			details.Payment = payment
		}
	}
	return details, nil
}

// Delete удаляет заказ вместе с платежом.
func (s *Service) Delete(ctx context.Context, adminID, orderID string) error {
	const op = "order.Delete"

	err := s.repo.DeleteOrder(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("order not found")
	}
	if err != nil {
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("order deleted",
		slog.String("op", op), slog.String("order_id", orderID), slog.String("admin_id", adminID))
	return nil
}

func (s *Service) getOrder(ctx context.Context, op, id string) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return order, nil
}
