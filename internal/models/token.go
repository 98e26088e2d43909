package models

import "time"

// RevokedToken запись об отозванном токене обновления.
// Хранится хэш токена; запись можно удалить после ExpiresAt.
type RevokedToken struct {
	TokenHash string
	UserID    string
	Reason    string
	RevokedAt time.Time
	ExpiresAt time.Time
}

// Причины отзыва.
const RevokeReasonLogout = "logout"
