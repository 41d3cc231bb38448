package backend

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"alphasignal-dashboard-go/internal/config"
	"alphasignal-dashboard-go/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientInterface defines the interface for the trading backend API client.
type ClientInterface interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, platform models.Platform, username string) (string, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) error
	ActivateProfile(ctx context.Context, id string) error
	DeactivateProfile(ctx context.Context, id string) error
	DeleteProfile(ctx context.Context, id string) error
	ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	CancelOrder(ctx context.Context, id string) error
	WalletValue(ctx context.Context) (*models.WalletValue, error)
}

// Client is a client for the trading backend REST API.
// It implements the ClientInterface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new trading backend API client.
func NewClient(cfg *config.Backend, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// Initialize the rate limiter
	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	logger.Info("Using trading backend", zap.String("base_url", cfg.BaseURL))

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.SetContext(ctx).Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.RawResponse != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// ListProfiles fetches the canonical list of signal profiles.
func (c *Client) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile

	req := c.client.R().
		SetResult(&profiles).
		SetHeader("Content-Type", "application/json")

	resp, err := c.doRequest(ctx, "GET", "/profiles", req)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return *resp.Result().(*[]models.Profile), nil
}

// createProfileRequest is the POST /profile body.
type createProfileRequest struct {
	Platform models.Platform `json:"platform"`
	Username string          `json:"username"`
}

// CreateProfile registers a new signal source. All trading fields are
// defaulted server-side; the returned id identifies the new record.
func (c *Client) CreateProfile(ctx context.Context, platform models.Platform, username string) (string, error) {
	var id string

	req := c.client.R().
		SetBody(createProfileRequest{Platform: platform, Username: username}).
		SetResult(&id).
		SetHeader("Content-Type", "application/json")

	_, err := c.doRequest(ctx, "POST", "/profile", req)
	if err != nil {
		c.logger.Error("Failed to create profile",
			zap.String("platform", string(platform)),
			zap.String("username", username),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to create profile: %w", err)
	}

	return id, nil
}

// UpdateProfile sends a partial update carrying only the staged fields.
func (c *Client) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) error {
	req := c.client.R().
		SetBody(patch).
		SetHeader("Content-Type", "application/json")

	_, err := c.doRequest(ctx, "PUT", "/profile/"+id, req)
	if err != nil {
		return fmt.Errorf("failed to update profile %s: %w", id, err)
	}

	return nil
}

// ActivateProfile enables the bot for this profile's signals.
func (c *Client) ActivateProfile(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, "PATCH", "/profile/"+id+"/activate", c.client.R())
	if err != nil {
		return fmt.Errorf("failed to activate profile %s: %w", id, err)
	}
	return nil
}

// DeactivateProfile disables the bot for this profile's signals.
func (c *Client) DeactivateProfile(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, "PATCH", "/profile/"+id+"/deactivate", c.client.R())
	if err != nil {
		return fmt.Errorf("failed to deactivate profile %s: %w", id, err)
	}
	return nil
}

// DeleteProfile removes the record server-side. Irreversible.
func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, "DELETE", "/profile/"+id, c.client.R())
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	return nil
}

// ordersResponse wraps the order listing the way the backend returns it.
type ordersResponse struct {
	Orders []models.Order `json:"orders"`
}

// ListOrders fetches orders in the given state.
func (c *Client) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var result ordersResponse

	req := c.client.R().
		SetResult(&result).
		SetHeader("Content-Type", "application/json")

	_, err := c.doRequest(ctx, "GET", fmt.Sprintf("/orders/%d", status), req)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders with status %d: %w", status, err)
	}

	return result.Orders, nil
}

// CancelOrder stops tracking an open order.
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, "DELETE", "/orders/cancel/"+id, c.client.R())
	if err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", id, err)
	}
	return nil
}

// WalletValue fetches current holdings and the aggregate wallet value.
func (c *Client) WalletValue(ctx context.Context) (*models.WalletValue, error) {
	var value models.WalletValue

	req := c.client.R().
		SetResult(&value).
		SetHeader("Content-Type", "application/json")

	_, err := c.doRequest(ctx, "GET", "/wallet-value", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet value: %w", err)
	}

	return &value, nil
}
