package models

// Account набор записей, создаваемых регистрацией в одной транзакции.
// Payment и Subscription пусты для регистрации без оплаты.
type Account struct {
	User         User
	Payment      *Payment
	Subscription *Subscription
}
