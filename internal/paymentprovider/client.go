// Package paymentprovider реализует клиент платёжного шлюза.
// Клиент только читает платёж по внешней ссылке, повторов не делает.
package paymentprovider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/callassist/internal/models"
)

// Ошибки клиента.
var (
	ErrNotFound    = errors.New("payment not found")
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// Client клиент платёжного шлюза.
type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент шлюза с ограничением времени запроса.
func NewClient(apiURL, keyID, keySecret string, timeout time.Duration) *Client {
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, nil)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// FetchPayment получает платёж по внешней ссылке.
// Статус captured приводится к paid.
func (c *Client) FetchPayment(ctx context.Context, reference string) (*models.GatewayPayment, error) {
	const op = "paymentprovider.FetchPayment"

	req, err := c.newRequest(ctx, http.MethodGet, "/payments/"+url.PathEscape(reference))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrNotFound, reference)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error.Code == "BAD_REQUEST_ERROR" && strings.Contains(strings.ToLower(e.Error.Description), "does not exist") {
			return nil, fmt.Errorf("%s: %w: %s", op, ErrNotFound, reference)
		}
		return nil, fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, e.Error.Description)
	}

	var p paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	status := p.Status
	if status == statusCaptured {
		status = statusPaid
	}

	return &models.GatewayPayment{
		Reference:  p.ID,
		Status:     status,
		Amount:     p.Amount,
		Currency:   p.Currency,
		SourceInfo: sourceInfo(p),
	}, nil
}

func sourceInfo(p paymentResponse) string {
	parts := make([]string, 0, 3)
	if p.Method != "" {
		parts = append(parts, p.Method)
	}
	if p.Card != nil && p.Card.Last4 != "" {
		parts = append(parts, strings.TrimSpace(p.Card.Network+" *"+p.Card.Last4))
	}
	if p.Email != "" {
		parts = append(parts, p.Email)
	}
	return strings.Join(parts, ", ")
}
