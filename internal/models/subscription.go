// Package models содержит доменные структуры BookEase: аккаунт, историю подписок,
// тарифную сетку и события жизненного цикла подписки.
package models

import "time"

// SubscriptionStatus статус записи о подписке.
type SubscriptionStatus string

const (
	StatusActive  SubscriptionStatus = "active"
	StatusExpired SubscriptionStatus = "expired"
)

const day = 24 * time.Hour

// Subscription одна оплаченная подписка. Записи только добавляются,
// меняться может лишь Status (active -> expired).
type Subscription struct {
	ID           int64              `json:"id"`
	AccountID    string             `json:"-"`
	PackageType  PackageType        `json:"packageType"`
	PackagePrice int64              `json:"packagePrice"`
	BillingCycle BillingCycle       `json:"billingCycle"`
	DurationDays int                `json:"durationDays"`
	StartDate    time.Time          `json:"startDate"`
	EndDate      time.Time          `json:"endDate"`
	OrderID      string             `json:"razorpayOrderId"`
	PaymentID    string             `json:"razorpayPaymentId"`
	Status       SubscriptionStatus `json:"status"`
	CreatedAt    time.Time          `json:"-"`
}

// NewSubscription создаёт активную подписку, начинающуюся в момент now.
// Цена берётся из таблицы Plans; второе значение false, если план неизвестен.
func NewSubscription(p PackageType, c BillingCycle, orderID, paymentID string, now time.Time) (Subscription, bool) {
	price, ok := Price(p, c)
	if !ok {
		return Subscription{}, false
	}
	start := now.UTC().Truncate(time.Microsecond)
	days := c.DurationDays()
	return Subscription{
		PackageType:  p,
		PackagePrice: price,
		BillingCycle: c,
		DurationDays: days,
		StartDate:    start,
		EndDate:      start.Add(time.Duration(days) * day),
		OrderID:      orderID,
		PaymentID:    paymentID,
		Status:       StatusActive,
	}, true
}

// Overdue сообщает, что активная подписка уже закончилась.
func (s Subscription) Overdue(now time.Time) bool {
	return s.Status == StatusActive && s.EndDate.Before(now)
}

// DaysLeft возвращает ceil((EndDate-now)/24h).
func (s Subscription) DaysLeft(now time.Time) int {
	d := s.EndDate.Sub(now)
	n := d / day
	if d%day > 0 {
		n++
	}
	return int(n)
}

// ActivePlan описывает текущий план для ответа о статусе.
type ActivePlan struct {
	PackageType  PackageType  `json:"packageType"`
	BillingCycle BillingCycle `json:"billingCycle"`
	EndDate      time.Time    `json:"endDate"`
	DaysLeft     int          `json:"daysLeft"`
}
