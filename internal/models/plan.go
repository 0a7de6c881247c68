package models

import "strings"

// PackageType тарифный план.
type PackageType string

// BillingCycle период оплаты.
type BillingCycle string

const (
	PackageStarter PackageType = "Starter"
	PackageGrowth  PackageType = "Growth"
	PackageScale   PackageType = "Scale"

	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Currency валюта всех заказов.
const Currency = "INR"

// Plans серверная таблица цен в рупиях (основные единицы).
// Клиентские суммы никогда не используются.
var Plans = map[PackageType]map[BillingCycle]int64{
	PackageStarter: {BillingMonthly: 299, BillingYearly: 2990},
	PackageGrowth:  {BillingMonthly: 799, BillingYearly: 7990},
	PackageScale:   {BillingMonthly: 1999, BillingYearly: 19990},
}

// Price возвращает цену плана и признак того, что пара план/период существует.
func Price(p PackageType, c BillingCycle) (int64, bool) {
	cycles, ok := Plans[p]
	if !ok {
		return 0, false
	}
	price, ok := cycles[c]
	return price, ok
}

// MinorUnits переводит рупии в пайсы.
func MinorUnits(major int64) int64 {
	return major * 100
}

// DurationDays длительность подписки для периода оплаты.
func (c BillingCycle) DurationDays() int {
	if c == BillingYearly {
		return 365
	}
	return 30
}

// Valid сообщает, известен ли период оплаты.
func (c BillingCycle) Valid() bool {
	return c == BillingMonthly || c == BillingYearly
}

// Valid сообщает, известен ли тарифный план.
func (p PackageType) Valid() bool {
	_, ok := Plans[p]
	return ok
}

// NormalizeEmail приводит e-mail к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
