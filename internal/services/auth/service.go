// Package services содержит регистрацию аккаунтов и операции сессии:
// вход, обновление токена, выход и смену пароля.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/callassist/internal/lib/jwt"
	"github.com/magabrotheeeer/callassist/internal/models"
	"github.com/magabrotheeeer/callassist/internal/provisioning"
)

// AccountRepository описывает контракт хранилища пользователей и платежей.
type AccountRepository interface {
	// EmailExists проверяет, занят ли email без учёта регистра.
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// CreateAccount атомарно сохраняет пользователя, платёж и подписку.
	CreateAccount(ctx context.Context, acc *models.Account) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash, plaintext string, tokenVersion int64) error
	// ClaimPaymentReference атомарно резервирует ссылку на платёж.
	ClaimPaymentReference(ctx context.Context, reference, email string) error
	MarkClaim(ctx context.Context, reference, status, reason string) error
	GetActiveSubscription(ctx context.Context, userID string) (*models.SubscriptionInfo, error)
}

// PlanStore источник тарифов.
type PlanStore interface {
	GetPlanByID(ctx context.Context, id string) (*models.Plan, error)
	GetPlanByCode(ctx context.Context, code string) (*models.Plan, error)
	GetPlanBySlug(ctx context.Context, slug string) (*models.Plan, error)
}

// PlanCache кэш тарифов. Может отсутствовать.
type PlanCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// PaymentGateway клиент платёжного шлюза.
type PaymentGateway interface {
	FetchPayment(ctx context.Context, reference string) (*models.GatewayPayment, error)
}

// Provisioner клиент голосовой платформы.
type Provisioner interface {
	Provision(ctx context.Context, r provisioning.Request) (*provisioning.Account, error)
}

// RevocationStore список отозванных токенов обновления.
type RevocationStore interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token, userID, reason string, expiresAt time.Time) error
}

// PasswordHasher хэширует и проверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Notifier отправляет приветствие новому пользователю. Ошибки не возвращает.
type Notifier interface {
	Welcome(ctx context.Context, user *models.User, planName string)
}

// Options настройки сервиса.
type Options struct {
	RetainPlaintext bool          // хранить исходный пароль для админского просмотра
	DefaultPlanCode string        // код тарифа платформы для регистрации без оплаты
	PlanCacheTTL    time.Duration // время жизни тарифа в кэше
	RefreshTTL      time.Duration // срок записи об отзыве, если из токена его не достать
}

// Deps зависимости сервиса.
type Deps struct {
	Accounts    AccountRepository
	Plans       PlanStore
	Cache       PlanCache
	Gateway     PaymentGateway
	Provisioner Provisioner
	Revocations RevocationStore
	Tokens      jwt.Maker
	Hasher      PasswordHasher
	Notifier    Notifier
}

// AuthService отвечает за регистрацию и сессии пользователей.
type AuthService struct {
	accounts    AccountRepository
	plans       PlanStore
	cache       PlanCache
	gateway     PaymentGateway
	provisioner Provisioner
	revocations RevocationStore
	tokens      jwt.Maker
	hasher      PasswordHasher
	notifier    Notifier
	opts        Options
	log         *slog.Logger
	now         func() time.Time
	dummyHash   string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(deps Deps, opts Options, log *slog.Logger) *AuthService {
	if opts.DefaultPlanCode == "" {
		opts.DefaultPlanCode = defaultProvisioningCode
	}
	if opts.PlanCacheTTL <= 0 {
		opts.PlanCacheTTL = 10 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	s := &AuthService{
		accounts:    deps.Accounts,
		plans:       deps.Plans,
		cache:       deps.Cache,
		gateway:     deps.Gateway,
		provisioner: deps.Provisioner,
		revocations: deps.Revocations,
		tokens:      deps.Tokens,
		hasher:      deps.Hasher,
		notifier:    deps.Notifier,
		opts:        opts,
		log:         log,
		now:         time.Now,
	}
	// Хэш для сравнения, когда email не найден: время ответа входа не выдаёт наличие аккаунта.
	if h, err := s.hasher.Hash("callassist-timing-equalizer"); err == nil {
		s.dummyHash = h
	}
	return s
}

// WithClock подменяет источник времени.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Result итог регистрации или входа.
type Result struct {
	User   models.PublicUser `json:"user"`
	Tokens jwt.Pair          `json:"tokens"`
}
