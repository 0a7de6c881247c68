package models

import "time"

// Ключи маршрутизации событий подписки.
const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionExpired   = "subscription.expired"
)

// SubscriptionEvent публикуется при активации и истечении подписки.
type SubscriptionEvent struct {
	AccountID    string       `json:"account_id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PackageType  PackageType  `json:"package_type"`
	BillingCycle BillingCycle `json:"billing_cycle"`
	PackagePrice int64        `json:"package_price"`
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	OrderID      string       `json:"order_id"`
	PaymentID    string       `json:"payment_id"`
}

// NewSubscriptionEvent собирает событие по аккаунту и подписке.
func NewSubscriptionEvent(a *Account, s Subscription) SubscriptionEvent {
	return SubscriptionEvent{
		AccountID:    a.ID,
		Email:        a.Email,
		Name:         a.Name,
		PackageType:  s.PackageType,
		BillingCycle: s.BillingCycle,
		PackagePrice: s.PackagePrice,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		OrderID:      s.OrderID,
		PaymentID:    s.PaymentID,
	}
}
