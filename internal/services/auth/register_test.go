package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/callassist/internal/lib/apperr"
	"github.com/magabrotheeeer/callassist/internal/lib/metrics"
	"github.com/magabrotheeeer/callassist/internal/models"
	"github.com/magabrotheeeer/callassist/internal/paymentprovider"
	"github.com/magabrotheeeer/callassist/internal/provisioning"
	services "github.com/magabrotheeeer/callassist/internal/services/auth"
	"github.com/magabrotheeeer/callassist/internal/storage/repository"
)

func paidInput() services.PaidRegistration {
	return services.PaidRegistration{
		Profile: services.Profile{
			Name:     "Asha Rao",
			Email:    " Asha@Example.com ",
			Password: "password123",
			Timezone: "Asia/Kolkata",
		},
		Plan:             "gold",
		PaymentReference: "pay_123",
	}
}

func TestAuthService_RegisterPaid_Success(t *testing.T) {
	plan := goldPlan()
	repo := newMemAccounts(plan)
	gateway := new(GatewayMock)
	gateway.On("FetchPayment", mock.Anything, "pay_123").Return(paidPayment("pay_123"), nil).Once()
	prov := new(ProvisionerMock)
	prov.On("Provision", mock.Anything, mock.MatchedBy(func(r provisioning.Request) bool {
		return r.Email == "asha@example.com" &&
			r.Name == "Asha Rao" &&
			r.Password == "password123" &&
			r.Timezone == "Asia/Kolkata" &&
			r.PlanCode == "premium"
	})).Return(&provisioning.Account{APIKey: "sk_live_abcdef123456"}, nil).Once()
	notifier := &fakeNotifier{}

	e := newEnv(t, services.Deps{
		Accounts: repo, Plans: repo, Gateway: gateway, Provisioner: prov,
		Revocations: newMemRevocations(), Notifier: notifier,
	}, services.Options{})

	res, err := e.svc.RegisterPaid(context.Background(), paidInput())
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.True(t, res.User.HasAPIKey)
	assert.Equal(t, "sk_l****3456", res.User.APIKeyPreview)
	require.NotNil(t, res.User.PlanID)
	assert.Equal(t, plan.ID, *res.User.PlanID)

	claims, err := e.maker.VerifyAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID())
	_, err = e.maker.VerifyRefresh(res.Tokens.RefreshToken)
	require.NoError(t, err)

	require.Len(t, repo.accounts, 1)
	acc := repo.accounts[0]
	assert.Equal(t, "sk_live_abcdef123456", acc.User.ExternalAPIKey)
	assert.Empty(t, acc.User.PlaintextPassword)
	assert.NotEqual(t, "password123", acc.User.PasswordHash)
	require.NotNil(t, acc.Payment)
	assert.Equal(t, "pay_123", acc.Payment.ExternalReference)
	assert.Equal(t, "Gold", acc.Payment.PlanName)
	require.NotNil(t, acc.Subscription)
	assert.Equal(t, acc.Subscription.StartDate.AddDate(1, 0, 0), acc.Subscription.EndDate)
	assert.Equal(t, models.ClaimStatusCompleted, repo.claims["pay_123"])

	assert.Equal(t, []string{"asha@example.com"}, notifier.users)
	assert.Equal(t, []string{"Gold"}, notifier.plans)
	gateway.AssertExpectations(t)
	prov.AssertExpectations(t)
}

func TestAuthService_RegisterPaid_RetainPlaintext(t *testing.T) {
	repo := newMemAccounts(goldPlan())
	gateway := new(GatewayMock)
	gateway.On("FetchPayment", mock.Anything, "pay_123").Return(paidPayment("pay_123"), nil)
	prov := new(ProvisionerMock)
	prov.On("Provision", mock.Anything, mock.Anything).Return(&provisioning.Account{APIKey: "key"}, nil)

	e := newEnv(t, services.Deps{Accounts: repo, Plans: repo, Gateway: gateway, Provisioner: prov},
		services.Options{RetainPlaintext: true})

	_, err := e.svc.RegisterPaid(context.Background(), paidInput())
	require.NoError(t, err)
	require.Len(t, repo.accounts, 1)
	assert.Equal(t, "password123", repo.accounts[0].User.PlaintextPassword)
}

func TestAuthService_RegisterPaid_RejectedBeforeProvisioning(t *testing.T) {
	inactive := goldPlan()
	inactive.IsActive = false

	tests := []struct {
		name       string
		mutate     func(in *services.PaidRegistration)
		setupMocks func(r *AccountRepoMock, p *PlanStoreMock, g *GatewayMock)
		wantKind   apperr.Kind
		wantMsg    string
	}{
		{
			name:     "short password",
			mutate:   func(in *services.PaidRegistration) { in.Password = "short" },
			wantKind: apperr.Validation,
			wantMsg:  "password must be at least 8 characters",
		},
		{
			name:     "missing reference",
			mutate:   func(in *services.PaidRegistration) { in.PaymentReference = "  " },
			wantKind: apperr.Validation,
			wantMsg:  "payment reference is required",
		},
		{
			name:     "invalid email",
			mutate:   func(in *services.PaidRegistration) { in.Email = "not-an-email" },
			wantKind: apperr.Validation,
			wantMsg:  "email is invalid",
		},
		{
			name: "email already registered",
			setupMocks: func(r *AccountRepoMock, _ *PlanStoreMock, _ *GatewayMock) {
				r.On("EmailExists", mock.Anything, "asha@example.com").Return(true, nil)
			},
			wantKind: apperr.Conflict,
			wantMsg:  services.MsgEmailTaken,
		},
		{
			name: "unknown plan",
			setupMocks: func(r *AccountRepoMock, p *PlanStoreMock, _ *GatewayMock) {
				r.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
				p.On("GetPlanByID", "gold").Return(nil, repository.ErrNotFound)
				p.On("GetPlanByCode", "gold").Return(nil, repository.ErrNotFound)
				p.On("GetPlanBySlug", "gold").Return(nil, repository.ErrNotFound)
			},
			wantKind: apperr.Validation,
			wantMsg:  services.MsgPlanNotFound,
		},
		{
			name: "inactive plan",
			setupMocks: func(r *AccountRepoMock, p *PlanStoreMock, _ *GatewayMock) {
				r.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
				p.On("GetPlanByID", "gold").Return(nil, repository.ErrNotFound)
				p.On("GetPlanByCode", "gold").Return(nil, repository.ErrNotFound)
				p.On("GetPlanBySlug", "gold").Return(inactive, nil)
			},
			wantKind: apperr.Validation,
			wantMsg:  services.MsgPlanNotFound,
		},
		{
			name: "payment not found",
			setupMocks: func(r *AccountRepoMock, p *PlanStoreMock, g *GatewayMock) {
				r.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
				p.On("GetPlanByID", "gold").Return(goldPlan(), nil)
				g.On("FetchPayment", mock.Anything, "pay_123").Return(nil, paymentprovider.ErrNotFound)
			},
			wantKind: apperr.UpstreamVerification,
			wantMsg:  services.MsgPaymentNotFound,
		},
		{
			name: "gateway unavailable",
			setupMocks: func(r *AccountRepoMock, p *PlanStoreMock, g *GatewayMock) {
				r.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
				p.On("GetPlanByID", "gold").Return(goldPlan(), nil)
				g.On("FetchPayment", mock.Anything, "pay_123").Return(nil, paymentprovider.ErrUnavailable)
			},
			wantKind: apperr.UpstreamVerification,
			wantMsg:  services.MsgGatewayUnavailable,
		},
		{
			name: "payment not captured",
			setupMocks: func(r *AccountRepoMock, p *PlanStoreMock, g *GatewayMock) {
				r.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
				p.On("GetPlanByID", "gold").Return(goldPlan(), nil)
				g.On("FetchPayment", mock.Anything, "pay_123").
					Return(&models.GatewayPayment{Reference: "pay_123", Status: "authorized"}, nil)
			},
			wantKind: apperr.UpstreamVerification,
			wantMsg:  `payment is not completed: status "authorized"`,
		},
		{
			name: "payment already claimed",
			setupMocks: func(r *AccountRepoMock, p *PlanStoreMock, g *GatewayMock) {
				r.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
				p.On("GetPlanByID", "gold").Return(goldPlan(), nil)
				g.On("FetchPayment", mock.Anything, "pay_123").Return(paidPayment("pay_123"), nil)
				r.On("ClaimPaymentReference", mock.Anything, "pay_123", "asha@example.com").
					Return(fmt.Errorf("storage.ClaimPaymentReference: %w", repository.ErrPaymentReferenceClaimed))
			},
			wantKind: apperr.Conflict,
			wantMsg:  services.MsgPaymentUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(AccountRepoMock)
			plans := new(PlanStoreMock)
			gateway := new(GatewayMock)
			prov := new(ProvisionerMock)
			if tt.setupMocks != nil {
				tt.setupMocks(repo, plans, gateway)
			}
			e := newEnv(t, services.Deps{Accounts: repo, Plans: plans, Gateway: gateway, Provisioner: prov}, services.Options{})

			in := paidInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			res, err := e.svc.RegisterPaid(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, apperr.MessageOf(err))

			prov.AssertNotCalled(t, "Provision", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "MarkClaim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_RegisterPaid_ProvisioningFailures(t *testing.T) {
	tests := []struct {
		name     string
		provErr  error
		wantKind apperr.Kind
		wantMsg  string
	}{
		{
			name:     "timeout",
			provErr:  fmt.Errorf("provisioning.Provision: %w", provisioning.ErrTimeout),
			wantKind: apperr.ProvisioningTimeout,
			wantMsg:  services.MsgProvisioningTimeout,
		},
		{
			name:     "rejected",
			provErr:  fmt.Errorf("provisioning.Provision: %w", provisioning.ErrRejected),
			wantKind: apperr.Provisioning,
			wantMsg:  services.MsgProvisioningFailed,
		},
		{
			name:     "no api key",
			provErr:  provisioning.ErrNoAPIKey,
			wantKind: apperr.Provisioning,
			wantMsg:  services.MsgProvisioningFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(AccountRepoMock)
			repo.On("EmailExists", mock.Anything, "asha@example.com").Return(false, nil)
			repo.On("ClaimPaymentReference", mock.Anything, "pay_123", "asha@example.com").Return(nil).Once()
			repo.On("MarkClaim", mock.Anything, "pay_123", models.ClaimStatusManualFollowup,
				mock.MatchedBy(func(reason string) bool { return reason != "" })).Return(nil).Once()
			plans := new(PlanStoreMock)
			plans.On("GetPlanByID", "gold").Return(nil, repository.ErrNotFound)
			plans.On("GetPlanByCode", "gold").Return(nil, repository.ErrNotFound)
			plans.On("GetPlanBySlug", "gold").Return(goldPlan(), nil)
			gateway := new(GatewayMock)
			gateway.On("FetchPayment", mock.Anything, "pay_123").Return(paidPayment("pay_123"), nil)
			prov := new(ProvisionerMock)
			prov.On("Provision", mock.Anything, mock.Anything).Return(nil, tt.provErr).Once()
			notifier := &fakeNotifier{}

			e := newEnv(t, services.Deps{Accounts: repo, Plans: plans, Gateway: gateway, Provisioner: prov, Notifier: notifier}, services.Options{})

			res, err := e.svc.RegisterPaid(context.Background(), paidInput())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, apperr.MessageOf(err))
			assert.True(t, apperr.IsProvisioning(err))
			assert.Contains(t, apperr.MessageOf(err), "Payment received")

			repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
			repo.AssertExpectations(t)
			assert.Zero(t, notifier.count())
		})
	}
}

func TestAuthService_RegisterPaid_PersistenceFailureNeedsFollowup(t *testing.T) {
	repo := new(AccountRepoMock)
	repo.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("ClaimPaymentReference", mock.Anything, "pay_123", mock.Anything).Return(nil)
	repo.On("CreateAccount", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
	repo.On("MarkClaim", mock.Anything, "pay_123", models.ClaimStatusManualFollowup, mock.Anything).Return(nil).Once()
	plans := new(PlanStoreMock)
	plans.On("GetPlanByID", "gold").Return(goldPlan(), nil)
	gateway := new(GatewayMock)
	gateway.On("FetchPayment", mock.Anything, "pay_123").Return(paidPayment("pay_123"), nil)
	prov := new(ProvisionerMock)
	prov.On("Provision", mock.Anything, mock.Anything).Return(&provisioning.Account{APIKey: "key-123456789"}, nil)

	e := newEnv(t, services.Deps{Accounts: repo, Plans: plans, Gateway: gateway, Provisioner: prov}, services.Options{})

	_, err := e.svc.RegisterPaid(context.Background(), paidInput())
	require.Error(t, err)
	assert.Equal(t, apperr.Provisioning, apperr.KindOf(err))
	assert.Equal(t, services.MsgProvisioningFailed, apperr.MessageOf(err))
	repo.AssertExpectations(t)
}

func TestAuthService_RegisterPaid_EmailTakenConcurrently(t *testing.T) {
	repo := new(AccountRepoMock)
	repo.On("EmailExists", mock.Anything, "asha@example.com").Return(false, nil)
	repo.On("ClaimPaymentReference", mock.Anything, "pay_123", "asha@example.com").Return(nil).Once()
	repo.On("CreateAccount", mock.Anything, mock.Anything).
		Return(fmt.Errorf("repository.CreateAccount: %w", repository.ErrUserExists)).Once()
	repo.On("MarkClaim", mock.Anything, "pay_123", models.ClaimStatusManualFollowup,
		mock.MatchedBy(func(reason string) bool { return reason != "" })).Return(nil).Once()
	plans := new(PlanStoreMock)
	plans.On("GetPlanByID", "gold").Return(goldPlan(), nil)
	gateway := new(GatewayMock)
	gateway.On("FetchPayment", mock.Anything, "pay_123").Return(paidPayment("pay_123"), nil)
	prov := new(ProvisionerMock)
	prov.On("Provision", mock.Anything, mock.Anything).Return(&provisioning.Account{APIKey: "key-123456789"}, nil).Once()
	notifier := &fakeNotifier{}

	e := newEnv(t, services.Deps{Accounts: repo, Plans: plans, Gateway: gateway, Provisioner: prov, Notifier: notifier}, services.Options{})

	res, err := e.svc.RegisterPaid(context.Background(), paidInput())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Equal(t, services.MsgEmailTaken, apperr.MessageOf(err))
	assert.ErrorIs(t, err, repository.ErrUserExists)
	repo.AssertExpectations(t)
	assert.Zero(t, notifier.count())
}

func TestAuthService_RegisterUnpaid_EmailTakenConcurrently(t *testing.T) {
	repo := new(AccountRepoMock)
	repo.On("EmailExists", mock.Anything, "lee@example.com").Return(false, nil)
	repo.On("CreateAccount", mock.Anything, mock.Anything).
		Return(fmt.Errorf("repository.CreateAccount: %w", repository.ErrUserExists)).Once()
	prov := new(ProvisionerMock)
	prov.On("Provision", mock.Anything, mock.Anything).Return(&provisioning.Account{APIKey: "k1"}, nil).Once()

	e := newEnv(t, services.Deps{Accounts: repo, Plans: new(PlanStoreMock), Provisioner: prov}, services.Options{})

	_, err := e.svc.RegisterUnpaid(context.Background(), services.Profile{
		Name: "Lee", Email: "lee@example.com", Password: "password123",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Equal(t, services.MsgEmailTaken, apperr.MessageOf(err))
	repo.AssertNotCalled(t, "MarkClaim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_TokenFailureAfterCommit(t *testing.T) {
	repo := newMemAccounts()
	prov := new(ProvisionerMock)
	prov.On("Provision", mock.Anything, mock.Anything).Return(&provisioning.Account{APIKey: "k1"}, nil).Once()

	e := newEnv(t, services.Deps{Accounts: repo, Plans: repo, Provisioner: prov, Tokens: failingTokens{}}, services.Options{})

	success := metrics.RegistrationTotal.WithLabelValues(services.FlowUnpaid, metrics.OutcomeSuccess)
	rejected := metrics.RegistrationTotal.WithLabelValues(services.FlowUnpaid, metrics.OutcomeRejected)
	stage := metrics.RegistrationStageFailures.WithLabelValues(services.FlowUnpaid, string(services.StageTokenIssuing))
	successBefore := testutil.ToFloat64(success)
	rejectedBefore := testutil.ToFloat64(rejected)
	stageBefore := testutil.ToFloat64(stage)

	res, err := e.svc.RegisterUnpaid(context.Background(), services.Profile{
		Name: "Lee", Email: "lee@example.com", Password: "password123",
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.Equal(t, services.MsgTokensAfterRegister, apperr.MessageOf(err))
	require.Len(t, repo.accounts, 1)

	assert.Equal(t, successBefore+1, testutil.ToFloat64(success))
	assert.Equal(t, rejectedBefore, testutil.ToFloat64(rejected))
	assert.Equal(t, stageBefore, testutil.ToFloat64(stage))
}

func TestAuthService_RegisterPaid_ConcurrentSameReference(t *testing.T) {
	const attempts = 8
	repo := newMemAccounts(goldPlan())
	gateway := new(GatewayMock)
	gateway.On("FetchPayment", mock.Anything, "pay_dup").Return(paidPayment("pay_dup"), nil)
	prov := new(ProvisionerMock)
	prov.On("Provision", mock.Anything, mock.Anything).Return(&provisioning.Account{APIKey: "key-123456789"}, nil)

	e := newEnv(t, services.Deps{Accounts: repo, Plans: repo, Gateway: gateway, Provisioner: prov}, services.Options{})

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := paidInput()
			in.Email = fmt.Sprintf("buyer%d@example.com", i)
			in.PaymentReference = "pay_dup"
			_, errs[i] = e.svc.RegisterPaid(context.Background(), in)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.KindOf(err) == apperr.Conflict && apperr.MessageOf(err) == services.MsgPaymentUsed:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)
	prov.AssertNumberOfCalls(t, "Provision", 1)
	assert.Len(t, repo.accounts, 1)
}

func TestAuthService_RegisterUnpaid(t *testing.T) {
	t.Run("success uses default plan code", func(t *testing.T) {
		repo := newMemAccounts()
		prov := new(ProvisionerMock)
		prov.On("Provision", mock.Anything, mock.MatchedBy(func(r provisioning.Request) bool {
			return r.PlanCode == "basic" && r.Email == "lee@example.com" && r.Timezone == "UTC"
		})).Return(&provisioning.Account{APIKey: "k1"}, nil).Once()
		notifier := &fakeNotifier{}

		e := newEnv(t, services.Deps{Accounts: repo, Plans: repo, Provisioner: prov, Notifier: notifier}, services.Options{})
		res, err := e.svc.RegisterUnpaid(context.Background(), services.Profile{
			Name: "Lee", Email: "Lee@example.com", Password: "password123",
		})
		require.NoError(t, err)
		assert.Nil(t, res.User.PlanID)
		assert.Equal(t, "****", res.User.APIKeyPreview)
		require.Len(t, repo.accounts, 1)
		assert.Nil(t, repo.accounts[0].Payment)
		assert.Nil(t, repo.accounts[0].Subscription)
		assert.Equal(t, 1, notifier.count())
		prov.AssertExpectations(t)
	})

	t.Run("configured default plan code", func(t *testing.T) {
		repo := newMemAccounts()
		prov := new(ProvisionerMock)
		prov.On("Provision", mock.Anything, mock.MatchedBy(func(r provisioning.Request) bool {
			return r.PlanCode == "trial"
		})).Return(&provisioning.Account{APIKey: "k1"}, nil).Once()

		e := newEnv(t, services.Deps{Accounts: repo, Plans: repo, Provisioner: prov}, services.Options{DefaultPlanCode: "trial"})
		_, err := e.svc.RegisterUnpaid(context.Background(), services.Profile{
			Name: "Lee", Email: "lee@example.com", Password: "password123",
		})
		require.NoError(t, err)
		prov.AssertExpectations(t)
	})

	t.Run("timeout persists nothing", func(t *testing.T) {
		repo := newMemAccounts()
		prov := new(ProvisionerMock)
		prov.On("Provision", mock.Anything, mock.Anything).Return(nil, provisioning.ErrTimeout)

		e := newEnv(t, services.Deps{Accounts: repo, Plans: repo, Provisioner: prov}, services.Options{})
		_, err := e.svc.RegisterUnpaid(context.Background(), services.Profile{
			Name: "Lee", Email: "lee@example.com", Password: "password123",
		})
		require.Error(t, err)
		assert.Equal(t, apperr.ProvisioningTimeout, apperr.KindOf(err))
		assert.Equal(t, services.MsgActivationTimeout, apperr.MessageOf(err))
		assert.Empty(t, repo.accounts)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newMemAccounts()
		repo.users["u1"] = &models.User{ID: "u1", Email: "lee@example.com"}
		prov := new(ProvisionerMock)

		e := newEnv(t, services.Deps{Accounts: repo, Plans: repo, Provisioner: prov}, services.Options{})
		_, err := e.svc.RegisterUnpaid(context.Background(), services.Profile{
			Name: "Lee", Email: "LEE@example.com", Password: "password123",
		})
		require.Error(t, err)
		assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
		prov.AssertNotCalled(t, "Provision", mock.Anything, mock.Anything)
	})

	t.Run("missing name", func(t *testing.T) {
		prov := new(ProvisionerMock)
		e := newEnv(t, services.Deps{Accounts: newMemAccounts(), Provisioner: prov}, services.Options{})
		_, err := e.svc.RegisterUnpaid(context.Background(), services.Profile{
			Email: "lee@example.com", Password: "password123",
		})
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})
}
