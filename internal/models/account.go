package models

import "time"

// Account зарегистрированный пользователь BookEase.
type Account struct {
	ID               string
	Name             string
	PhoneCountryCode string
	PhoneNumber      string
	Email            string
	PasswordHash     string
	OrganisationName string
	Location         string
	Subscribed       bool
	Subscriptions    []Subscription
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultPhoneCountryCode используется, если код страны не передан.
const DefaultPhoneCountryCode = "+91"

// AccountSummary публичное представление аккаунта.
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary возвращает публичное представление аккаунта.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}

// AddSubscription добавляет подписку в конец истории.
func (a *Account) AddSubscription(s Subscription) {
	s.AccountID = a.ID
	a.Subscriptions = append(a.Subscriptions, s)
}

// ExpireOverdue переводит просроченные активные подписки в expired
// и возвращает изменённые записи.
func (a *Account) ExpireOverdue(now time.Time) []Subscription {
	var expired []Subscription
	for i := range a.Subscriptions {
		if a.Subscriptions[i].Overdue(now) {
			a.Subscriptions[i].Status = StatusExpired
			expired = append(expired, a.Subscriptions[i])
		}
	}
	return expired
}

// RecomputeSubscribed пересчитывает флаг Subscribed по истории.
// Возвращает true, если значение изменилось.
func (a *Account) RecomputeSubscribed() bool {
	subscribed := false
	for _, s := range a.Subscriptions {
		if s.Status == StatusActive {
			subscribed = true
			break
		}
	}
	changed := subscribed != a.Subscribed
	a.Subscribed = subscribed
	return changed
}

// CurrentSubscription возвращает последнюю добавленную активную подписку или nil.
func (a *Account) CurrentSubscription() *Subscription {
	for i := len(a.Subscriptions) - 1; i >= 0; i-- {
		if a.Subscriptions[i].Status == StatusActive {
			return &a.Subscriptions[i]
		}
	}
	return nil
}

// FindPayment ищет подписку, созданную по паре orderID/paymentID.
func (a *Account) FindPayment(orderID, paymentID string) *Subscription {
	for i := range a.Subscriptions {
		s := &a.Subscriptions[i]
		if s.OrderID == orderID && s.PaymentID == paymentID {
			return s
		}
	}
	return nil
}
