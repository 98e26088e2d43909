// Package apperr описывает классы ошибок бизнес-уровня.
//
// Каждая ошибка несёт Kind, стабильное сообщение для пользователя и,
// опционально, внутреннюю причину. Причина никогда не попадает в ответ
// клиенту в боевом окружении.
package apperr

import (
	"errors"
)

// Kind класс ошибки.
type Kind string

const (
	// Validation некорректные или отсутствующие входные данные. Побочных эффектов не было.
	Validation Kind = "validation"
	// Conflict повтор email или ссылки на платёж.
	Conflict Kind = "conflict"
	// UpstreamVerification платёж не в конечном статусе или шлюз недоступен.
	UpstreamVerification Kind = "upstream_verification"
	// Provisioning внешняя платформа не создала аккаунт. Платёж уже списан.
	Provisioning Kind = "provisioning"
	// ProvisioningTimeout внешняя платформа не ответила вовремя. Платёж уже списан.
	ProvisioningTimeout Kind = "provisioning_timeout"
	// Auth неверные учётные данные, неактивный аккаунт, негодный токен.
	Auth Kind = "auth"
	// NotFound запрошенная сущность отсутствует.
	NotFound Kind = "not_found"
	// Internal всё остальное.
	Internal Kind = "internal"
)

// Error ошибка бизнес-уровня.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку без внутренней причины.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap создаёт ошибку с внутренней причиной.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf возвращает класс ошибки; для посторонних ошибок: Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf возвращает пользовательское сообщение ошибки.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Is сообщает, относится ли ошибка к одному из классов.
func Is(err error, kinds ...Kind) bool {
	k := KindOf(err)
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// IsProvisioning сообщает, что ошибка возникла после списания платежа
// и требует ручной активации аккаунта.
func IsProvisioning(err error) bool {
	return Is(err, Provisioning, ProvisioningTimeout)
}
