package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/callassist/internal/lib/jwt"
	"github.com/magabrotheeeer/callassist/internal/lib/password"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
	"github.com/magabrotheeeer/callassist/internal/provisioning"
	services "github.com/magabrotheeeer/callassist/internal/services/auth"
	"github.com/magabrotheeeer/callassist/internal/storage/repository"
)

const testSecret = "test_secret_key_1234567890"

// Мок для AccountRepository
type AccountRepoMock struct {
	mock.Mock
}

func (m *AccountRepoMock) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *AccountRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *AccountRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *AccountRepoMock) CreateAccount(ctx context.Context, acc *models.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *AccountRepoMock) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *AccountRepoMock) UpdatePassword(ctx context.Context, id, passwordHash, plaintext string, tokenVersion int64) error {
	args := m.Called(ctx, id, passwordHash, plaintext, tokenVersion)
	return args.Error(0)
}

func (m *AccountRepoMock) ClaimPaymentReference(ctx context.Context, reference, email string) error {
	args := m.Called(ctx, reference, email)
	return args.Error(0)
}

func (m *AccountRepoMock) MarkClaim(ctx context.Context, reference, status, reason string) error {
	args := m.Called(ctx, reference, status, reason)
	return args.Error(0)
}

func (m *AccountRepoMock) GetActiveSubscription(ctx context.Context, userID string) (*models.SubscriptionInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionInfo), args.Error(1)
}

// Мок для PlanStore
type PlanStoreMock struct {
	mock.Mock
}

func (m *PlanStoreMock) get(method, value string) (*models.Plan, error) {
	args := m.MethodCalled(method, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *PlanStoreMock) GetPlanByID(_ context.Context, id string) (*models.Plan, error) {
	return m.get("GetPlanByID", id)
}

func (m *PlanStoreMock) GetPlanByCode(_ context.Context, code string) (*models.Plan, error) {
	return m.get("GetPlanByCode", code)
}

func (m *PlanStoreMock) GetPlanBySlug(_ context.Context, slug string) (*models.Plan, error) {
	return m.get("GetPlanBySlug", slug)
}

// Мок для PlanCache
type PlanCacheMock struct {
	mock.Mock
}

func (m *PlanCacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	if fill, ok := args.Get(2).(*models.Plan); ok && fill != nil {
		*(result.(*models.Plan)) = *fill
	}
	return args.Bool(0), args.Error(1)
}

func (m *PlanCacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

// Мок для PaymentGateway
type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) FetchPayment(ctx context.Context, reference string) (*models.GatewayPayment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatewayPayment), args.Error(1)
}

// Мок для Provisioner
type ProvisionerMock struct {
	mock.Mock
}

func (m *ProvisionerMock) Provision(ctx context.Context, r provisioning.Request) (*provisioning.Account, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provisioning.Account), args.Error(1)
}

// Мок для RevocationStore
type RevocationMock struct {
	mock.Mock
}

func (m *RevocationMock) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *RevocationMock) Revoke(ctx context.Context, token, userID, reason string, expiresAt time.Time) error {
	args := m.Called(ctx, token, userID, reason, expiresAt)
	return args.Error(0)
}

// fakeNotifier запоминает приветствия.
type fakeNotifier struct {
	mu    sync.Mutex
	users []string
	plans []string
}

func (n *fakeNotifier) Welcome(_ context.Context, user *models.User, planName string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, user.Email)
	n.plans = append(n.plans, planName)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.users)
}

// memRevocations список отзыва в памяти.
type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]string
}

func newMemRevocations() *memRevocations {
	return &memRevocations{revoked: make(map[string]string)}
}

func (r *memRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[token]
	return ok, nil
}

func (r *memRevocations) Revoke(_ context.Context, token, userID, _ string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.revoked[token]; !ok {
		r.revoked[token] = userID
	}
	return nil
}

// memAccounts хранилище аккаунтов и тарифов в памяти.
type memAccounts struct {
	mu       sync.Mutex
	users    map[string]*models.User
	claims   map[string]string
	plans    []*models.Plan
	accounts []*models.Account
}

func newMemAccounts(plans ...*models.Plan) *memAccounts {
	return &memAccounts{
		users:  make(map[string]*models.User),
		claims: make(map[string]string),
		plans:  plans,
	}
}

func (m *memAccounts) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memAccounts) CreateAccount(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, acc.User.Email) {
			return repository.ErrUserExists
		}
	}
	acc.User.ID = uuid.NewString()
	acc.User.CreatedAt = time.Now().UTC()
	u := acc.User
	m.users[u.ID] = &u
	if acc.Payment != nil {
		acc.Payment.ID = uuid.NewString()
		acc.Payment.UserID = u.ID
		m.claims[acc.Payment.ExternalReference] = models.ClaimStatusCompleted
	}
	m.accounts = append(m.accounts, acc)
	return nil
}

func (m *memAccounts) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *memAccounts) UpdatePassword(_ context.Context, id, passwordHash, plaintext string, tokenVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.PlaintextPassword = plaintext
	if tokenVersion > u.TokenVersion {
		u.TokenVersion = tokenVersion
	}
	return nil
}

func (m *memAccounts) ClaimPaymentReference(_ context.Context, reference, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[reference]; ok {
		return repository.ErrPaymentReferenceClaimed
	}
	m.claims[reference] = models.ClaimStatusClaimed
	return nil
}

func (m *memAccounts) MarkClaim(_ context.Context, reference, status, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[reference] = status
	return nil
}

func (m *memAccounts) GetActiveSubscription(_ context.Context, _ string) (*models.SubscriptionInfo, error) {
	return nil, repository.ErrNotFound
}

func (m *memAccounts) findPlan(match func(*models.Plan) bool) (*models.Plan, error) {
	for _, p := range m.plans {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) GetPlanByID(_ context.Context, id string) (*models.Plan, error) {
	return m.findPlan(func(p *models.Plan) bool { return p.ID == id })
}

func (m *memAccounts) GetPlanByCode(_ context.Context, code string) (*models.Plan, error) {
	return m.findPlan(func(p *models.Plan) bool { return p.Code == code })
}

func (m *memAccounts) GetPlanBySlug(_ context.Context, slug string) (*models.Plan, error) {
	return m.findPlan(func(p *models.Plan) bool { return p.Slug == slug })
}

// failingTokens не может подписать пару.
type failingTokens struct {
	jwt.Maker
}

func (failingTokens) IssuePair(string) (jwt.Pair, error) {
	return jwt.Pair{}, errors.New("signing key unavailable")
}

// testClock управляемые часы.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var testHasher = password.NewHasher(4)

type env struct {
	svc   *services.AuthService
	maker *jwt.MakerImpl
	clock *testClock
}

func newEnv(t *testing.T, deps services.Deps, opts services.Options) *env {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	maker := jwt.NewJWTMaker(testSecret, 15*time.Minute, 7*24*time.Hour, "callassist").WithClock(clock.Now)
	if deps.Tokens == nil {
		deps.Tokens = maker
	}
	if deps.Hasher == nil {
		deps.Hasher = testHasher
	}
	svc := services.NewAuthService(deps, opts, sl.NewDiscardLogger()).WithClock(clock.Now)
	return &env{svc: svc, maker: maker, clock: clock}
}

func goldPlan() *models.Plan {
	return &models.Plan{
		ID:            "6f1c3f1e-4c55-4b8e-9d62-0b1f1d7c2a01",
		Code:          "GOLD-Y",
		Slug:          "gold",
		Name:          "Gold",
		Price:         99900,
		Currency:      "INR",
		BillingPeriod: "yearly",
		IsActive:      true,
	}
}

func paidPayment(ref string) *models.GatewayPayment {
	return &models.GatewayPayment{Reference: ref, Status: models.PaymentStatusPaid, Amount: 99900, Currency: "INR"}
}
