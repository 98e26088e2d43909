package models

import "time"

// NotificationKindWelcome приветствие после регистрации.
const NotificationKindWelcome = "welcome"

// Notification уведомление внутри кабинета.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// WelcomeMessage событие в очереди для отправки приветственного письма.
type WelcomeMessage struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PlanName string `json:"plan_name,omitempty"`
}
