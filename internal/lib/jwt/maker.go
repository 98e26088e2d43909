// Package jwt реализует выпуск и проверку токенов сессии.
//
// Токен доступа живёт минуты и предъявляется на каждом защищённом запросе.
// Токен обновления живёт дни и принимается только эндпоинтом обновления.
// Оба подписываются HS256 общим секретом; состояние на сервере не хранится.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для выпуска и проверки токенов сессии.
type Maker interface {
	// IssuePair выпускает токены доступа и обновления для пользователя.
	IssuePair(userID string) (Pair, error)
	// IssuePairSince выпускает пару с iat не раньше смены пароля (tokenVersion, мс).
	IssuePairSince(userID string, tokenVersion int64) (Pair, error)
	// IssueAccess выпускает только токен доступа.
	IssueAccess(userID string) (string, error)
	// VerifyAccess проверяет подпись, срок и тип токена доступа.
	VerifyAccess(token string) (*Claims, error)
	// VerifyRefresh проверяет подпись, срок и тип токена обновления.
	VerifyRefresh(token string) (*Claims, error)
	// Inspect проверяет только подпись и возвращает claims даже у просроченного токена.
	Inspect(token string) (*Claims, error)
}

// Pair пара токенов, выдаваемая при регистрации и входе.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов (TTL).
type MakerImpl struct {
	secretKey  string           // Секретный ключ для подписи токенов.
	accessTTL  time.Duration    // Время жизни токена доступа.
	refreshTTL time.Duration    // Время жизни токена обновления.
	issuer     string           // Значение iss.
	now        func() time.Time // Часы; подменяются в тестах.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration, issuer string) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		now:        time.Now,
	}
}

// WithClock подменяет источник времени.
func (j *MakerImpl) WithClock(now func() time.Time) *MakerImpl {
	j.now = now
	return j
}

// RefreshTTL время жизни токена обновления.
func (j *MakerImpl) RefreshTTL() time.Duration {
	return j.refreshTTL
}
