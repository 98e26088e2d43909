package models

import "time"

// Статусы платежа и заявки на него.
const (
	PaymentStatusPaid = "paid"

	ClaimStatusClaimed        = "claimed"
	ClaimStatusCompleted      = "completed"
	ClaimStatusManualFollowup = "manual_followup"
)

// Payment подтверждённый платёж, на основе которого создан аккаунт.
type Payment struct {
	ID                string
	UserID            string
	PlanID            string
	ExternalReference string // уникален: один платёж: один аккаунт
	Amount            int64
	Currency          string
	Status            string
	PlanName          string // снимок названия тарифа на момент оплаты
	BuyerEmail        string // снимок покупателя
	BuyerName         string
	CreatedAt         time.Time
}

// PaymentClaim заявка на использование платежа при регистрации.
// Вставляется до обращения к голосовой платформе и не удаляется.
type PaymentClaim struct {
	Reference string
	Email     string
	Status    string
	Reason    string
	ClaimedAt time.Time
	UpdatedAt time.Time
}

// GatewayPayment платёж в представлении платёжного шлюза.
type GatewayPayment struct {
	Reference  string
	Status     string
	Amount     int64
	Currency   string
	SourceInfo string // описание источника оплаты (карта, плательщик)
}
