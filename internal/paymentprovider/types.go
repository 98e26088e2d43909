package paymentprovider

// Статусы платежа на стороне шлюза.
const (
	statusCaptured = "captured"
	statusPaid     = "paid"
)

// paymentResponse ответ шлюза на запрос платежа.
type paymentResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Card     *struct {
		Network string `json:"network"`
		Last4   string `json:"last4"`
	} `json:"card,omitempty"`
}

// errorResponse тело ошибки шлюза.
type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}
