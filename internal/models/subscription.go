package models

import "time"

// SubscriptionStatusActive статус действующей подписки.
const SubscriptionStatusActive = "active"

// Subscription период доступа, оплаченный платежом по тарифу.
type Subscription struct {
	ID            string
	UserID        string
	PlanID        string
	LastPaymentID string
	Status        string
	StartDate     time.Time
	EndDate       time.Time
	RenewalCount  int
}

// SubscriptionInfo сводка подписки для профиля пользователя.
type SubscriptionInfo struct {
	PlanID     string    `json:"plan_id"`
	PlanName   string    `json:"plan_name"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	MonthsLeft int       `json:"months_left"`
}
