package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ignatzorin/marketplace-backend/internal/goroutine"
	"github.com/ignatzorin/marketplace-backend/internal/logger"
)

// Client запрашивает актуальные курсы у внешнего API
// (freecurrencyapi-совместимый ответ: {"data": {"EUR": 0.92, ...}}).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиент курсов валют.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchRates запрашивает таблицу курсов относительно USD.
func (c *Client) FetchRates(ctx context.Context) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/latest?apikey=%s&base_currency=%s",
		c.baseURL, url.QueryEscape(c.apiKey), ReferenceCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("currency: не удалось создать запрос: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("currency: запрос курсов не удался: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("currency: сервис курсов вернул статус %d", resp.StatusCode)
	}

	var result struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("currency: не удалось разобрать ответ: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("currency: сервис вернул пустую таблицу курсов")
	}

	return result.Data, nil
}

// StartRefresher периодически обновляет таблицу конвертера.
// Ошибки обновления не фатальны: конвертер продолжает работать
// на последней успешной таблице.
func StartRefresher(ctx context.Context, client *Client, converter *Converter, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	refresh := func(ctx context.Context) {
		rates, err := client.FetchRates(ctx)
		if err != nil {
			logger.WithComponent("currency").Warnf("не удалось обновить курсы: %v", err)
			return
		}
		converter.SetRates(rates)
		logger.WithComponent("currency").Debugf("таблица курсов обновлена, валют: %d", len(rates))
	}

	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		refresh(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh(ctx)
			}
		}
	})
}
