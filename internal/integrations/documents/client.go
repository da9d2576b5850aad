package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// Client клиент сервиса проверки документов водителя
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetUserStatus получает статус проверки документов пользователя
// Если пользователь еще не загружал документы, возвращает PENDING
func (c *Client) GetUserStatus(ctx context.Context, userID int64) (domain.DocumentStatus, error) {
	url := fmt.Sprintf("%s/internal/users/%d/documents/status", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		c.log.Info("No documents submitted for user_id=%d", userID)
		return domain.DocumentsPending, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	result := domain.DocumentStatus(status.Status)
	switch result {
	case domain.DocumentsPending, domain.DocumentsApproved, domain.DocumentsRejected:
		return result, nil
	default:
		return "", fmt.Errorf("%w: unknown document status %q", ErrInvalidResponse, status.Status)
	}
}
