// Package payment создаёт заказы в платёжном шлюзе и активирует подписку
// после проверки подписи платежа.
package payment

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bookease/bookease-backend/internal/lib/apperr"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/metrics"
	"github.com/bookease/bookease-backend/internal/models"
	"github.com/bookease/bookease-backend/internal/paymentprovider"
	"github.com/bookease/bookease-backend/internal/storage"
)

// Сообщения об ошибках, которые видит клиент.
const (
	MsgInvalidPlan        = "Invalid plan or billing cycle"
	MsgMissingFields      = "orderId and signature are required"
	MsgOrderFailed        = "Failed to create payment order"
	MsgVerificationFailed = "Payment verification failed"
	MsgUserNotFound       = "User not found"
	MsgActivated          = "Payment verified and subscription activated"
	msgInternal           = "internal server error"
)

// Gateway платёжный шлюз.
type Gateway interface {
	CreateOrder(ctx context.Context, req paymentprovider.OrderRequest) (*paymentprovider.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// AccountRepository атомарное обновление аккаунта.
type AccountRepository interface {
	UpdateAccount(ctx context.Context, accountID string, fn storage.UpdateFunc) (*models.Account, error)
}

// EventPublisher публикует события подписки.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// PaymentService создание заказов и активация подписок.
type PaymentService struct {
	log       *slog.Logger
	gateway   Gateway
	accounts  AccountRepository
	publisher EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option настраивает PaymentService.
type Option func(*PaymentService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *PaymentService) { s.now = now }
}

// New создаёт PaymentService. m может быть nil.
func New(log *slog.Logger, gateway Gateway, accounts AccountRepository, publisher EventPublisher, m *metrics.Metrics, opts ...Option) *PaymentService {
	s := &PaymentService{
		log:       log,
		gateway:   gateway,
		accounts:  accounts,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Order созданный заказ в виде, нужном клиентскому checkout.
type Order struct {
	OrderID      string
	Amount       int64
	Currency     string
	KeyID        string
	PackageType  models.PackageType
	BillingCycle models.BillingCycle
}

// CreateOrder создаёт заказ на сумму из серверной таблицы цен.
// Ничего не сохраняет: подписка появляется только после Verify.
func (s *PaymentService) CreateOrder(ctx context.Context, accountID string, p models.PackageType, c models.BillingCycle) (*Order, error) {
	const op = "services.PaymentService.CreateOrder"
	log := s.log.With(slog.String("op", op), slog.String("account_id", accountID))

	price, ok := models.Price(p, c)
	if !ok {
		return nil, apperr.Validation(MsgInvalidPlan)
	}
	amount := models.MinorUnits(price)

	order, err := s.gateway.CreateOrder(ctx, paymentprovider.OrderRequest{
		Amount:   amount,
		Currency: models.Currency,
		Receipt:  receipt(accountID, s.now()),
		Notes: map[string]string{
			"accountId":    accountID,
			"packageType":  string(p),
			"billingCycle": string(c),
		},
	})
	if err != nil {
		log.Error("failed to create order", sl.Err(err))
		s.metrics.PaymentOrder("failed")
		return nil, apperr.Upstream(MsgOrderFailed, err)
	}
	s.metrics.PaymentOrder("ok")

	return &Order{
		OrderID:      order.ID,
		Amount:       amount,
		Currency:     models.Currency,
		KeyID:        s.gateway.KeyID(),
		PackageType:  p,
		BillingCycle: c,
	}, nil
}

// receipt rcpt_<последние 6 символов ID>_<последние 8 цифр unix-времени в мс>.
func receipt(accountID string, now time.Time) string {
	if len(accountID) > 6 {
		accountID = accountID[len(accountID)-6:]
	}
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "rcpt_" + accountID + "_" + ms
}

// VerifyInput данные, которые клиент получил от шлюза после оплаты.
type VerifyInput struct {
	AccountID    string
	OrderID      string
	PaymentID    string
	Signature    string
	PackageType  models.PackageType
	BillingCycle models.BillingCycle
}

// Activation результат проверки платежа.
type Activation struct {
	Subscription models.Subscription
	Account      models.AccountSummary
	// Replayed true, если подписка по этому платежу уже была создана раньше.
	Replayed bool
}

// Verify проверяет HMAC-подпись платежа и добавляет активную подписку.
// Повторный вызов с той же парой orderID/paymentID возвращает уже созданную подписку.
func (s *PaymentService) Verify(ctx context.Context, in VerifyInput) (*Activation, error) {
	const op = "services.PaymentService.Verify"
	log := s.log.With(slog.String("op", op), slog.String("account_id", in.AccountID))

	if strings.TrimSpace(in.OrderID) == "" || strings.TrimSpace(in.Signature) == "" {
		return nil, apperr.Validation(MsgMissingFields)
	}
	if _, ok := models.Price(in.PackageType, in.BillingCycle); !ok {
		return nil, apperr.Validation(MsgInvalidPlan)
	}
	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		log.Warn("payment signature mismatch", slog.String("order_id", in.OrderID))
		s.metrics.PaymentVerification("rejected")
		return nil, apperr.Verification(MsgVerificationFailed)
	}

	var (
		result   models.Subscription
		replayed bool
	)
	activate := func(a *models.Account) (bool, error) {
		if existing := a.FindPayment(in.OrderID, in.PaymentID); existing != nil {
			result, replayed = *existing, true
			return false, nil
		}
		sub, _ := models.NewSubscription(in.PackageType, in.BillingCycle, in.OrderID, in.PaymentID, s.now())
		a.AddSubscription(sub)
		a.RecomputeSubscribed()
		return true, nil
	}

	account, err := s.accounts.UpdateAccount(ctx, in.AccountID, activate)
	if errors.Is(err, storage.ErrSubscriptionExists) {
		// параллельный запрос успел записать этот платёж
		account, err = s.accounts.UpdateAccount(ctx, in.AccountID, activate)
	}
	if errors.Is(err, storage.ErrAccountNotFound) {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		log.Error("failed to activate subscription", sl.Err(err))
		return nil, apperr.Internal(msgInternal, err)
	}

	if replayed {
		log.Info("payment already applied", slog.String("order_id", in.OrderID))
		s.metrics.PaymentVerification("replay")
		return &Activation{Subscription: result, Account: account.Summary(), Replayed: true}, nil
	}

	result = account.Subscriptions[len(account.Subscriptions)-1]
	s.metrics.PaymentVerification("ok")
	s.metrics.SubscriptionActivated(string(result.PackageType), string(result.BillingCycle))
	log.Info("subscription activated",
		slog.Int64("subscription_id", result.ID),
		slog.String("package_type", string(result.PackageType)),
		slog.String("billing_cycle", string(result.BillingCycle)),
	)

	event := models.NewSubscriptionEvent(account, result)
	if err := s.publisher.Publish(ctx, models.EventSubscriptionActivated, event); err != nil {
		log.Error("failed to publish activation event", sl.Err(err))
	}

	return &Activation{Subscription: result, Account: account.Summary()}, nil
}
