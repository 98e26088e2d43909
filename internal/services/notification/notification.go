// Package services создаёт уведомления пользователя: запись в кабинете
// и событие в очереди для отправки письма.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/callassist/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
)

// DefaultListLimit сколько уведомлений возвращается по умолчанию.
const DefaultListLimit = 20

const maxListLimit = 100

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (string, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

type NotificationService struct {
	repo      NotificationRepository
	publisher Publisher
	log       *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
// publisher может быть nil: тогда письма не отправляются.
func NewNotificationService(repo NotificationRepository, publisher Publisher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Welcome сохраняет приветствие и ставит письмо в очередь.
// Сбои только логируются: регистрация к этому моменту уже завершена.
func (s *NotificationService) Welcome(ctx context.Context, user *models.User, planName string) {
	log := s.log.With(slog.String("user_id", user.ID))

	body := fmt.Sprintf("Hello, %s! Your account is active.", user.Name)
	if planName != "" {
		body = fmt.Sprintf("Hello, %s! Your %s plan is active.", user.Name, planName)
	}
	if _, err := s.repo.CreateNotification(ctx, models.Notification{
		UserID: user.ID,
		Kind:   models.NotificationKindWelcome,
		Title:  "Welcome to CallAssist",
		Body:   body,
	}); err != nil {
		log.Error("failed to save welcome notification", sl.Err(err))
	}

	if s.publisher == nil {
		return
	}
	msg := models.WelcomeMessage{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		PlanName: planName,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyWelcome, msg); err != nil {
		log.Error("failed to publish welcome message", sl.Err(err))
		return
	}
	log.Debug("welcome message published")
}

// List возвращает последние уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	const op = "notification.List"
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	items, err := s.repo.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}
