package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType тип токена сессии.
type TokenType string

const (
	// TypeAccess токен доступа.
	TypeAccess TokenType = "access"
	// TypeRefresh токен обновления.
	TypeRefresh TokenType = "refresh"
)

// iatLeeway допуск для iat, сдвинутого IssuePairSince вперёд.
const iatLeeway = time.Second

// Причины отказа при проверке токена.
var (
	ErrExpired      = errors.New("token expired")
	ErrBadSignature = errors.New("bad token signature")
	ErrWrongType    = errors.New("wrong token type")
	ErrMalformed    = errors.New("malformed token")
)

// Claims описывает данные, хранящиеся в токене сессии.
type Claims struct {
	Type                 TokenType `json:"type"` // access или refresh
	jwt.RegisteredClaims           // sub, iat, exp, jti, iss
}

// UserID идентификатор владельца токена.
func (c *Claims) UserID() string {
	return c.Subject
}

// IsStale сообщает, что токен выпущен до последней смены пароля.
// tokenVersion хранится в миллисекундах, iat: в секундах.
func IsStale(claims *Claims, tokenVersion int64) bool {
	if claims == nil || claims.IssuedAt == nil {
		return true
	}
	return claims.IssuedAt.Unix()*1000 < tokenVersion
}

// IssuePair выпускает токены доступа и обновления.
func (j *MakerImpl) IssuePair(userID string) (Pair, error) {
	return j.issuePair("jwt.IssuePair", userID, j.now())
}

// IssuePairSince выпускает пару, которая не устарела относительно tokenVersion.
// Если пароль сменён в текущую секунду, iat сдвигается на начало следующей.
func (j *MakerImpl) IssuePairSince(userID string, tokenVersion int64) (Pair, error) {
	issued := j.now()
	since := time.UnixMilli(tokenVersion)
	if issued.Truncate(time.Second).Before(since) {
		ceil := since.Truncate(time.Second)
		if ceil.Before(since) {
			ceil = ceil.Add(time.Second)
		}
		issued = ceil
	}
	return j.issuePair("jwt.IssuePairSince", userID, issued)
}

func (j *MakerImpl) issuePair(op, userID string, issued time.Time) (Pair, error) {
	access, err := j.sign(userID, TypeAccess, j.accessTTL, issued)
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := j.sign(userID, TypeRefresh, j.refreshTTL, issued)
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess выпускает только токен доступа.
func (j *MakerImpl) IssueAccess(userID string) (string, error) {
	const op = "jwt.IssueAccess"
	token, err := j.sign(userID, TypeAccess, j.accessTTL, j.now())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// VerifyAccess парсит токен доступа, проверяет подпись, срок и тип.
func (j *MakerImpl) VerifyAccess(tokenStr string) (*Claims, error) {
	return j.verify("jwt.VerifyAccess", tokenStr, TypeAccess)
}

// VerifyRefresh парсит токен обновления, проверяет подпись, срок и тип.
func (j *MakerImpl) VerifyRefresh(tokenStr string) (*Claims, error) {
	return j.verify("jwt.VerifyRefresh", tokenStr, TypeRefresh)
}

// Inspect проверяет подпись без проверки сроков.
// Используется при выходе, чтобы узнать владельца уже просроченного токена.
func (j *MakerImpl) Inspect(tokenStr string) (*Claims, error) {
	const op = "jwt.Inspect"
	claims, err := j.parse(tokenStr, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

func (j *MakerImpl) sign(userID string, typ TokenType, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *MakerImpl) verify(op, tokenStr string, want TokenType) (*Claims, error) {
	claims, err := j.parse(tokenStr, jwt.WithExpirationRequired(), jwt.WithIssuedAt(), jwt.WithLeeway(iatLeeway))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%s: %w: got %q", op, ErrWrongType, claims.Type)
	}
	return claims, nil
}

func (j *MakerImpl) parse(tokenStr string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
