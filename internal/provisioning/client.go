// Package provisioning реализует клиент голосовой платформы:
// создание аккаунта и получение его API-ключа.
package provisioning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Ошибки клиента.
var (
	ErrTimeout    = errors.New("provisioning timed out")
	ErrNoAPIKey   = errors.New("provisioning response has no api key")
	ErrRejected   = errors.New("provisioning rejected")
	ErrUnexpected = errors.New("provisioning failed")
)

// Request данные для создания аккаунта.
type Request struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Timezone string `json:"timezone"`
	PlanCode string `json:"plan_code"`
}

// Account результат создания аккаунта.
type Account struct {
	APIKey string
}

// Client клиент голосовой платформы.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиента с ограничением времени запроса.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Provision создаёт аккаунт на платформе. Повторов нет: при таймауте
// аккаунт мог быть создан, и решение принимает оператор.
func (c *Client) Provision(ctx context.Context, r Request) (*Account, error) {
	const op = "provisioning.Provision"

	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/accounts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnexpected, err)
	}
	defer resp.Body.Close()

	var payload accountResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode >= http.StatusBadRequest {
		msg := payload.message()
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, fmt.Errorf("%s: %w: status %d: %s", op, ErrRejected, resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("%s: %w: status %d: %s", op, ErrUnexpected, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		if isTimeout(decodeErr) {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrTimeout, decodeErr)
		}
		return nil, fmt.Errorf("%s: decode: %w", op, decodeErr)
	}

	key := payload.key()
	if key == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoAPIKey)
	}
	return &Account{APIKey: key}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
