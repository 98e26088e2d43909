package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/callassist/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
	services "github.com/magabrotheeeer/callassist/internal/services/notification"
)

type NotificationRepoMock struct {
	mock.Mock
}

func (m *NotificationRepoMock) CreateNotification(ctx context.Context, n models.Notification) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *NotificationRepoMock) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

func TestNotificationService_Welcome(t *testing.T) {
	user := &models.User{ID: "u1", Email: "mia@example.com", Name: "Mia"}
	wantMsg := models.WelcomeMessage{UserID: "u1", Email: "mia@example.com", Name: "Mia", PlanName: "Gold"}

	tests := []struct {
		name       string
		setupMocks func(r *NotificationRepoMock, p *PublisherMock)
	}{
		{
			name: "saves and publishes",
			setupMocks: func(r *NotificationRepoMock, p *PublisherMock) {
				r.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
					return n.UserID == "u1" && n.Kind == models.NotificationKindWelcome &&
						assert.ObjectsAreEqual("Hello, Mia! Your Gold plan is active.", n.Body)
				})).Return("n1", nil).Once()
				p.On("Publish", mock.Anything, rabbitmq.RoutingKeyWelcome, wantMsg).Return(nil).Once()
			},
		},
		{
			name: "repository failure still publishes",
			setupMocks: func(r *NotificationRepoMock, p *PublisherMock) {
				r.On("CreateNotification", mock.Anything, mock.Anything).Return("", errors.New("db down")).Once()
				p.On("Publish", mock.Anything, rabbitmq.RoutingKeyWelcome, wantMsg).Return(nil).Once()
			},
		},
		{
			name: "publish failure is swallowed",
			setupMocks: func(r *NotificationRepoMock, p *PublisherMock) {
				r.On("CreateNotification", mock.Anything, mock.Anything).Return("n1", nil).Once()
				p.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(NotificationRepoMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, pub)

			svc := services.NewNotificationService(repo, pub, sl.NewDiscardLogger())
			assert.NotPanics(t, func() { svc.Welcome(context.Background(), user, "Gold") })
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestNotificationService_Welcome_NoPublisher(t *testing.T) {
	repo := new(NotificationRepoMock)
	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.Body == "Hello, Lee! Your account is active."
	})).Return("n1", nil).Once()

	svc := services.NewNotificationService(repo, nil, sl.NewDiscardLogger())
	svc.Welcome(context.Background(), &models.User{ID: "u2", Name: "Lee"}, "")
	repo.AssertExpectations(t)
}

func TestNotificationService_List(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
		result    []models.Notification
		repoErr   error
		wantLen   int
		wantErr   bool
	}{
		{name: "default limit", limit: 0, wantLimit: services.DefaultListLimit, result: []models.Notification{{ID: "n1"}}, wantLen: 1},
		{name: "capped limit", limit: 1000, wantLimit: 100, result: nil, wantLen: 0},
		{name: "explicit limit", limit: 5, wantLimit: 5, result: []models.Notification{{ID: "n1"}, {ID: "n2"}}, wantLen: 2},
		{name: "repository failure", limit: 5, wantLimit: 5, repoErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(NotificationRepoMock)
			if tt.repoErr != nil {
				repo.On("ListNotifications", mock.Anything, "u1", tt.wantLimit).Return(nil, tt.repoErr)
			} else {
				repo.On("ListNotifications", mock.Anything, "u1", tt.wantLimit).Return(tt.result, nil)
			}

			svc := services.NewNotificationService(repo, nil, sl.NewDiscardLogger())
			items, err := svc.List(context.Background(), "u1", tt.limit)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Len(t, items, tt.wantLen)
		})
	}
}
