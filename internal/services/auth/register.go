package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/callassist/internal/lib/apperr"
	"github.com/magabrotheeeer/callassist/internal/lib/metrics"
	"github.com/magabrotheeeer/callassist/internal/lib/period"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
	"github.com/magabrotheeeer/callassist/internal/paymentprovider"
	"github.com/magabrotheeeer/callassist/internal/provisioning"
	"github.com/magabrotheeeer/callassist/internal/storage/repository"
)

// Ограничения пароля. bcrypt учитывает только первые 72 байта.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// Сценарии регистрации.
const (
	FlowPaid   = "paid"
	FlowUnpaid = "unpaid"
)

// Stage этап регистрации.
type Stage string

// Этапы регистрации.
const (
	StageValidating       Stage = "validating"
	StagePaymentVerifying Stage = "payment-verifying"
	StageProvisioning     Stage = "provisioning"
	StagePersisting       Stage = "persisting"
	StageTokenIssuing     Stage = "token-issuing"
	StageDone             Stage = "done"
	StageRejected         Stage = "rejected"
	StageManualFollowup   Stage = "manual-followup"
)

// Сообщения для пользователя.
const (
	MsgEmailTaken           = "email already registered"
	MsgPaymentUsed          = "payment has already been used for registration"
	MsgPaymentNotFound      = "payment not found"
	MsgGatewayUnavailable   = "payment gateway unavailable, try again later"
	MsgPlanNotFound         = "plan not found or inactive"
	MsgProvisioningTimeout  = "Payment received. Account activation is taking longer than expected and will be completed manually by our team."
	MsgProvisioningFailed   = "Payment received. Account activation failed and will be completed manually by our team."
	MsgActivationTimeout    = "Account activation is taking longer than expected and will be completed manually by our team."
	MsgActivationFailed     = "Account activation failed and will be completed manually by our team."
	MsgTokensAfterRegister  = "account created, please log in"
	msgInternal             = "internal error"
	claimReasonProvisioning = "provisioning failed after payment capture"
	claimReasonPersistence  = "account not persisted after provisioning"
	claimReasonEmailTaken   = "email registered concurrently after payment capture"
)

// Profile данные владельца аккаунта.
type Profile struct {
	Name     string
	Email    string
	Password string
	Timezone string
}

// PaidRegistration регистрация с оплаченным тарифом.
type PaidRegistration struct {
	Profile
	Plan             string // id, код или slug тарифа
	PaymentReference string
}

// saga фиксирует текущий этап регистрации для логов и метрик.
type saga struct {
	flow  string
	stage Stage
	log   *slog.Logger
}

func (s *AuthService) newSaga(flow, email string) *saga {
	return &saga{
		flow: flow,
		log:  s.log.With(slog.String("flow", flow), slog.String("email", email)),
	}
}

func (g *saga) enter(stage Stage) {
	g.stage = stage
	g.log.Info("registration stage", slog.String("stage", string(stage)))
}

// reject завершает регистрацию без побочных эффектов у внешних систем.
func (g *saga) reject(err error) error {
	metrics.RecordStageFailure(g.flow, string(g.stage))
	metrics.RecordRegistration(g.flow, metrics.OutcomeRejected)
	level := slog.LevelWarn
	if apperr.KindOf(err) == apperr.Internal {
		level = slog.LevelError
	}
	g.log.Log(context.Background(), level, "registration rejected",
		slog.String("stage", string(g.stage)), sl.Err(err))
	g.stage = StageRejected
	return err
}

// manual завершает регистрацию, требующую ручной активации.
func (g *saga) manual(err error, reference string) error {
	metrics.RecordStageFailure(g.flow, string(g.stage))
	metrics.RecordRegistration(g.flow, metrics.OutcomeManualFollowup)
	g.log.Error("registration needs manual followup",
		slog.String("stage", string(g.stage)),
		slog.String("payment_reference", reference),
		slog.Bool("manual_followup", true),
		sl.Err(err))
	g.stage = StageManualFollowup
	return err
}

func (g *saga) done() {
	metrics.RecordRegistration(g.flow, metrics.OutcomeSuccess)
	g.enter(StageDone)
}

// RegisterPaid регистрирует пользователя по оплаченному платежу.
//
// Платёж проверяется у шлюза и резервируется до обращения к платформе,
// поэтому один платёж создаёт не больше одного аккаунта. Сбой после
// резервирования помечает платёж для ручной активации.
func (s *AuthService) RegisterPaid(ctx context.Context, in PaidRegistration) (*Result, error) {
	const op = "auth.RegisterPaid"
	in.Profile = normalizeProfile(in.Profile)
	in.PaymentReference = strings.TrimSpace(in.PaymentReference)
	g := s.newSaga(FlowPaid, in.Email)

	g.enter(StageValidating)
	if err := validateProfile(in.Profile); err != nil {
		return nil, g.reject(err)
	}
	if in.PaymentReference == "" {
		return nil, g.reject(apperr.New(apperr.Validation, "payment reference is required"))
	}
	if strings.TrimSpace(in.Plan) == "" {
		return nil, g.reject(apperr.New(apperr.Validation, "plan is required"))
	}
	if err := s.ensureEmailFree(ctx, op, in.Email); err != nil {
		return nil, g.reject(err)
	}
	plan, err := s.ResolvePlan(ctx, in.Plan)
	if errors.Is(err, errPlanNotFound) {
		return nil, g.reject(apperr.Wrap(apperr.Validation, MsgPlanNotFound, err))
	}
	if err != nil {
		return nil, g.reject(apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err)))
	}
	if !plan.IsActive {
		return nil, g.reject(apperr.New(apperr.Validation, MsgPlanNotFound))
	}
	user, err := s.newUser(in.Profile)
	if err != nil {
		return nil, g.reject(err)
	}

	g.enter(StagePaymentVerifying)
	payment, err := s.gateway.FetchPayment(ctx, in.PaymentReference)
	switch {
	case errors.Is(err, paymentprovider.ErrNotFound):
		return nil, g.reject(apperr.Wrap(apperr.UpstreamVerification, MsgPaymentNotFound, err))
	case err != nil:
		return nil, g.reject(apperr.Wrap(apperr.UpstreamVerification, MsgGatewayUnavailable, err))
	}
	if payment.Status != models.PaymentStatusPaid {
		return nil, g.reject(apperr.New(apperr.UpstreamVerification,
			fmt.Sprintf("payment is not completed: status %q", payment.Status)))
	}
	err = s.accounts.ClaimPaymentReference(ctx, in.PaymentReference, in.Email)
	if errors.Is(err, repository.ErrPaymentReferenceClaimed) {
		return nil, g.reject(apperr.Wrap(apperr.Conflict, MsgPaymentUsed, err))
	}
	if err != nil {
		return nil, g.reject(apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err)))
	}

	g.enter(StageProvisioning)
	code := ProvisioningCode(plan, s.opts.DefaultPlanCode)
	g.log.Info("provisioning account", slog.String("plan", plan.Slug), slog.String("plan_code", code))
	acc, err := s.provisioner.Provision(ctx, provisioning.Request{
		Name:     user.Name,
		Email:    user.Email,
		Password: in.Password,
		Timezone: user.Timezone,
		PlanCode: code,
	})
	if err != nil {
		s.markManual(in.PaymentReference, claimReasonProvisioning, err)
		if errors.Is(err, provisioning.ErrTimeout) {
			return nil, g.manual(apperr.Wrap(apperr.ProvisioningTimeout, MsgProvisioningTimeout, err), in.PaymentReference)
		}
		return nil, g.manual(apperr.Wrap(apperr.Provisioning, MsgProvisioningFailed, err), in.PaymentReference)
	}

	g.enter(StagePersisting)
	user.ExternalAPIKey = acc.APIKey
	user.PlanID = &plan.ID
	start := s.now().UTC()
	account := &models.Account{
		User: *user,
		Payment: &models.Payment{
			PlanID:            plan.ID,
			ExternalReference: in.PaymentReference,
			Amount:            payment.Amount,
			Currency:          payment.Currency,
			Status:            payment.Status,
			PlanName:          plan.Name,
			BuyerEmail:        user.Email,
			BuyerName:         user.Name,
		},
		Subscription: &models.Subscription{
			PlanID:    plan.ID,
			Status:    models.SubscriptionStatusActive,
			StartDate: start,
			EndDate:   period.EndDate(start, plan.BillingPeriod),
		},
	}
	err = s.accounts.CreateAccount(ctx, account)
	if errors.Is(err, repository.ErrUserExists) {
		// Параллельная регистрация заняла email, платёж уже списан.
		s.markManual(in.PaymentReference, claimReasonEmailTaken, err)
		return nil, g.manual(apperr.Wrap(apperr.Conflict, MsgEmailTaken, err), in.PaymentReference)
	}
	if err != nil {
		s.markManual(in.PaymentReference, claimReasonPersistence, err)
		return nil, g.manual(apperr.Wrap(apperr.Provisioning, MsgProvisioningFailed,
			fmt.Errorf("%s: %w", op, err)), in.PaymentReference)
	}
	s.notify(ctx, &account.User, plan.Name)

	return s.finish(ctx, g, &account.User)
}

// RegisterUnpaid регистрирует пользователя без оплаты с тарифом платформы по умолчанию.
func (s *AuthService) RegisterUnpaid(ctx context.Context, in Profile) (*Result, error) {
	const op = "auth.RegisterUnpaid"
	in = normalizeProfile(in)
	g := s.newSaga(FlowUnpaid, in.Email)

	g.enter(StageValidating)
	if err := validateProfile(in); err != nil {
		return nil, g.reject(err)
	}
	if err := s.ensureEmailFree(ctx, op, in.Email); err != nil {
		return nil, g.reject(err)
	}
	user, err := s.newUser(in)
	if err != nil {
		return nil, g.reject(err)
	}

	g.enter(StageProvisioning)
	acc, err := s.provisioner.Provision(ctx, provisioning.Request{
		Name:     user.Name,
		Email:    user.Email,
		Password: in.Password,
		Timezone: user.Timezone,
		PlanCode: s.opts.DefaultPlanCode,
	})
	if err != nil {
		if errors.Is(err, provisioning.ErrTimeout) {
			return nil, g.manual(apperr.Wrap(apperr.ProvisioningTimeout, MsgActivationTimeout, err), "")
		}
		return nil, g.manual(apperr.Wrap(apperr.Provisioning, MsgActivationFailed, err), "")
	}

	g.enter(StagePersisting)
	user.ExternalAPIKey = acc.APIKey
	account := &models.Account{User: *user}
	err = s.accounts.CreateAccount(ctx, account)
	if errors.Is(err, repository.ErrUserExists) {
		// Аккаунт на платформе уже создан и остаётся без владельца.
		return nil, g.manual(apperr.Wrap(apperr.Conflict, MsgEmailTaken, err), "")
	}
	if err != nil {
		return nil, g.manual(apperr.Wrap(apperr.Provisioning, MsgActivationFailed,
			fmt.Errorf("%s: %w", op, err)), "")
	}
	s.notify(ctx, &account.User, "")

	return s.finish(ctx, g, &account.User)
}

func (s *AuthService) finish(_ context.Context, g *saga, user *models.User) (*Result, error) {
	g.enter(StageTokenIssuing)
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		// Аккаунт уже создан: пользователь может войти обычным способом.
		g.log.Error("account created without tokens", slog.String("user_id", user.ID), sl.Err(err))
		g.done()
		return nil, apperr.Wrap(apperr.Internal, MsgTokensAfterRegister, err)
	}
	g.done()
	return &Result{User: user.Public(), Tokens: pair}, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, op, email string) error {
	exists, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		return apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	if exists {
		return apperr.New(apperr.Conflict, MsgEmailTaken)
	}
	return nil
}

func (s *AuthService) newUser(p Profile) (*models.User, error) {
	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "password cannot be hashed", err)
	}
	user := &models.User{
		Email:        p.Email,
		Name:         p.Name,
		Timezone:     p.Timezone,
		PasswordHash: hash,
		Role:         models.RoleClient,
		IsActive:     true,
	}
	if s.opts.RetainPlaintext {
		user.PlaintextPassword = p.Password
	}
	return user, nil
}

// markManual помечает резерв платежа для ручной активации.
// Вызывается после отказа платформы, поэтому не зависит от контекста запроса.
func (s *AuthService) markManual(reference, reason string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), manualMarkTimeout)
	defer cancel()
	full := reason + ": " + cause.Error()
	if err := s.accounts.MarkClaim(ctx, reference, models.ClaimStatusManualFollowup, full); err != nil {
		s.log.Error("failed to mark payment claim for manual followup",
			slog.String("payment_reference", reference), sl.Err(err))
	}
}

func (s *AuthService) notify(ctx context.Context, user *models.User, planName string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Welcome(ctx, user, planName)
}

func normalizeProfile(p Profile) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Timezone = strings.TrimSpace(p.Timezone)
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	return p
}

func validateProfile(p Profile) error {
	switch {
	case p.Name == "":
		return apperr.New(apperr.Validation, "name is required")
	case p.Email == "":
		return apperr.New(apperr.Validation, "email is required")
	case !strings.Contains(p.Email, "@"):
		return apperr.New(apperr.Validation, "email is invalid")
	}
	return validatePassword(p.Password)
}

func validatePassword(pw string) error {
	switch {
	case pw == "":
		return apperr.New(apperr.Validation, "password is required")
	case len([]rune(pw)) < MinPasswordLength:
		return apperr.New(apperr.Validation, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	case len(pw) > MaxPasswordBytes:
		return apperr.New(apperr.Validation, fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}
