package provisioning

import "strings"

// accountResponse ответ платформы. Ключ приходит под разными именами
// в зависимости от версии API, иногда внутри data.
type accountResponse struct {
	APIKey      string           `json:"apiKey"`
	APIKeySnake string           `json:"api_key"`
	Key         string           `json:"key"`
	Data        *accountResponse `json:"data,omitempty"`
	Message     string           `json:"message"`
	Error       string           `json:"error"`
}

func (r *accountResponse) key() string {
	for _, k := range []string{r.APIKey, r.APIKeySnake, r.Key} {
		if k = strings.TrimSpace(k); k != "" {
			return k
		}
	}
	if r.Data != nil {
		return r.Data.key()
	}
	return ""
}

func (r *accountResponse) message() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}
