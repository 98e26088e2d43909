// Package models содержит доменные структуры сервиса: пользователя, тариф,
// платёж, подписку и служебные записи, а также проекции для выдачи наружу.
package models

import "time"

// Роли пользователя.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID                string     // Уникальный идентификатор пользователя
	Email             string     // Электронная почта в нижнем регистре
	Name              string     // Имя владельца аккаунта
	Timezone          string     // Часовой пояс для голосовой платформы
	PasswordHash      string     // Хэш пароля пользователя
	PlaintextPassword string     // Пароль в открытом виде; пусто, если хранение выключено
	Role              string     // client или admin
	IsActive          bool       // Неактивный пользователь не может войти
	PlanID            *string    // Тариф; nil для регистрации без оплаты
	ExternalAPIKey    string     // Ключ голосовой платформы; пусто до активации
	TokenVersion      int64      // Момент последней смены пароля, мс
	CreatedAt         time.Time  // Дата создания
	LastLoginAt       *time.Time // Дата последнего входа
}

// PublicUser проекция пользователя, безопасная для выдачи клиенту.
// Ключ платформы в неё не попадает: только признак и маска.
type PublicUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	PlanID        *string    `json:"plan_id"`
	HasAPIKey     bool       `json:"has_api_key"`
	APIKeyPreview string     `json:"api_key_preview,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// AdminUser проекция для администратора, включает секреты пользователя.
type AdminUser struct {
	PublicUser
	Password       string `json:"password"`
	ExternalAPIKey string `json:"external_api_key"`
	TokenVersion   int64  `json:"token_version"`
}

// Public строит публичную проекцию.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		IsActive:      u.IsActive,
		PlanID:        u.PlanID,
		HasAPIKey:     u.ExternalAPIKey != "",
		APIKeyPreview: MaskAPIKey(u.ExternalAPIKey),
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

// Admin строит проекцию для администратора.
func (u *User) Admin() AdminUser {
	return AdminUser{
		PublicUser:     u.Public(),
		Password:       u.PlaintextPassword,
		ExternalAPIKey: u.ExternalAPIKey,
		TokenVersion:   u.TokenVersion,
	}
}

// MaskAPIKey оставляет от ключа первые и последние четыре символа.
// Короткие ключи маскируются целиком.
func MaskAPIKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "****" + key[len(key)-4:]
	}
}
