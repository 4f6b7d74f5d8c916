package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/jitter"
	"github.com/techmart/backend/pkg/logger"
)

// Client — клиент REST API PayPal. OAuth-токен кэшируется до истечения,
// обновление защищено мьютексом.
type Client struct {
	httpClient *http.Client
	cfg        *cfg.PayPalCfg
	logger     logger.Logger
	maxRetries int

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg *cfg.PayPalCfg, logger logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
		maxRetries: 3,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type captureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CreateOrder открывает у провайдера платёж на полную сумму заказа.
func (c *Client) CreateOrder(ctx context.Context, req *usecase.CreatePaymentReq) (*usecase.CreatePaymentRes, error) {
	const op = "paypal.CreateOrder"

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"reference_id": req.OrderID,
				"amount": map[string]string{
					"currency_code": req.Currency,
					"value":         formatAmount(req.TotalCents),
				},
			},
		},
	}

	var res orderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", body, &res); err != nil {
		return nil, e.Wrap(op, err)
	}
	if res.ID == "" {
		return nil, e.Wrap(op, fmt.Errorf("empty provider order id: %w", e.ErrPaymentProvider))
	}

	return &usecase.CreatePaymentRes{ProviderOrderID: res.ID}, nil
}

// Capture подтверждает списание. Выполняется строго один раз: повтор при
// сбое — ответственность клиента, заказ остаётся неоплаченным.
func (c *Client) Capture(ctx context.Context, providerOrderID string) (*usecase.CaptureRes, error) {
	const op = "paypal.Capture"

	path := "/v2/checkout/orders/" + url.PathEscape(providerOrderID) + "/capture"

	var res captureResponse
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]any{}, &res); err != nil {
		return nil, e.Wrap(op, err)
	}
	if !strings.EqualFold(res.Status, "COMPLETED") {
		return nil, e.Wrap(op, fmt.Errorf("capture status %q: %w", res.Status, e.ErrPaymentProvider))
	}

	capture := &usecase.CaptureRes{
		Status:     res.Status,
		PayerEmail: res.Payer.EmailAddress,
	}
	for _, unit := range res.PurchaseUnits {
		for _, pc := range unit.Payments.Captures {
			capture.CaptureID = pc.ID
			break
		}
	}

	return capture, nil
}

// doJSON выполняет авторизованный запрос к API. Ответы вне 2xx отображаются
// в e.ErrPaymentProvider, тело ошибки уходит в лог, а не клиенту.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, e.ErrPaymentProvider)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, e.ErrPaymentProvider)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warnf("PayPal %s %s returned %d: %s", method, path, resp.StatusCode, data)
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, e.ErrPaymentProvider)
	}

	return json.Unmarshal(data, out)
}

// token возвращает действующий OAuth-токен, при необходимости обновляя его
// с retry-логикой и экспоненциальной задержкой.
func (c *Client) token(ctx context.Context) (string, error) {
	const (
		op         = "paypal.token"
		baseJitter = 1 * time.Second
		maxJitter  = 10 * time.Second
	)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		token, expiresIn, err := c.fetchToken(ctx)
		if err == nil {
			c.accessToken = token
			// Минута запаса, чтобы не отправить запрос с истекающим токеном.
			c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - time.Minute)
			return token, nil
		}
		lastErr = err

		if attempt == c.maxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseJitter, maxJitter, attempt, jitter.DefaultJitter)
		c.logger.Warnf("token refresh failed, retrying in %v (attempt %d)", sleepTime, attempt+1)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return "", e.Wrap(op, ctx.Err())
		}
	}

	return "", e.Wrap(op, fmt.Errorf("all %d attempts failed: %v: %w", c.maxRetries, lastErr, e.ErrPaymentProvider))
}

func (c *Client) fetchToken(ctx context.Context) (string, int64, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, data)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", 0, err
	}

	return token.AccessToken, token.ExpiresIn, nil
}

// formatAmount переводит центы в строковую сумму вида "12.34".
func formatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
