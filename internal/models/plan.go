package models

import "github.com/magabrotheeeer/callassist/internal/lib/period"

// Plan тариф каталога.
type Plan struct {
	ID               string        `json:"id"`
	Code             string        `json:"code"`
	Slug             string        `json:"slug"`
	Name             string        `json:"name"`
	Price            int64         `json:"price"` // в минимальных единицах валюты
	Currency         string        `json:"currency"`
	BillingPeriod    period.Period `json:"billing_period"`
	ProvisioningCode string        `json:"provisioning_code,omitempty"` // код тарифа на голосовой платформе
	IsActive         bool          `json:"is_active"`
}
