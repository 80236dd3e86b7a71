// Package payment contains payment gateway adapters.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/adfinitum/backend/internal/infrastructure/cache"
	"github.com/adfinitum/backend/internal/infrastructure/config"
)

var _ payment.MobileMoneyGateway = (*DarajaAdapter)(nil)

// Errors for configuration validation
var (
	ErrDarajaMissingConsumerKey = errors.New("daraja: missing consumer key or secret")
	ErrDarajaMissingShortcode   = errors.New("daraja: missing shortcode")
	ErrDarajaMissingPasskey     = errors.New("daraja: missing passkey")
	ErrDarajaMissingCallbackURL = errors.New("daraja: missing callback URL")
)

// statusError carries a non-2xx Daraja response.
type statusError struct {
	status int
	code   string
	msg    string
}

func (e *statusError) Error() string {
	if e.code != "" {
		return fmt.Sprintf("daraja: HTTP %d %s - %s", e.status, e.code, e.msg)
	}
	return fmt.Sprintf("daraja: HTTP %d", e.status)
}

// DarajaAdapter initiates Lipa na M-Pesa Online (STK push) payments through
// the Safaricom Daraja API.
type DarajaAdapter struct {
	cfg        config.MpesaConfig
	baseURL    string
	httpClient *http.Client
	tokens     cache.TokenCache
	logger     *zap.Logger
	now        func() time.Time
}

// DarajaOption configures a DarajaAdapter
type DarajaOption func(*DarajaAdapter)

// WithBaseURL overrides the environment base URL
func WithBaseURL(u string) DarajaOption {
	return func(a *DarajaAdapter) { a.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) DarajaOption {
	return func(a *DarajaAdapter) { a.httpClient = c }
}

// WithDarajaLogger sets the logger
func WithDarajaLogger(l *zap.Logger) DarajaOption {
	return func(a *DarajaAdapter) { a.logger = l }
}

// WithClock sets the clock used for the STK timestamp
func WithClock(now func() time.Time) DarajaOption {
	return func(a *DarajaAdapter) { a.now = now }
}

// ValidateDarajaConfig checks the settings needed for STK push
func ValidateDarajaConfig(cfg config.MpesaConfig) error {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return ErrDarajaMissingConsumerKey
	}
	if cfg.Shortcode == "" {
		return ErrDarajaMissingShortcode
	}
	if cfg.Passkey == "" {
		return ErrDarajaMissingPasskey
	}
	if cfg.CallbackURL == "" {
		return ErrDarajaMissingCallbackURL
	}
	return nil
}

// NewDarajaAdapter creates a Daraja adapter. tokens caches the OAuth token
// between requests.
func NewDarajaAdapter(cfg config.MpesaConfig, tokens cache.TokenCache, opts ...DarajaOption) (*DarajaAdapter, error) {
	if err := ValidateDarajaConfig(cfg); err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = cache.NewInMemoryTokenCache()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	a := &DarajaAdapter{
		cfg:        cfg,
		baseURL:    cfg.BaseURL(),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// STKPush sends a payment prompt to the customer's phone.
func (a *DarajaAdapter) STKPush(ctx context.Context, req payment.STKPushRequest) (*payment.STKPushResponse, error) {
	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := a.now().Format(darajaTimestampLayout)
	body := darajaSTKPushRequest{
		BusinessShortCode: a.cfg.Shortcode,
		Password:          STKPassword(a.cfg.Shortcode, a.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   darajaTransactionType,
		Amount:            req.Amount.Ceil().IntPart(),
		PartyA:            req.PhoneNumber,
		PartyB:            a.cfg.Shortcode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       a.cfg.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   req.Description,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("daraja: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, darajaSTKPushPath, payload, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if err != nil {
		return nil, err
	}

	var resp darajaSTKPushResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed STK push response", payment.ErrGatewayUnavailable)
	}
	if resp.ResponseCode != "0" {
		return nil, fmt.Errorf("%w: %s", payment.ErrGatewayUnavailable, resp.ResponseDescription)
	}

	a.logger.Info("STK push accepted",
		zap.String("checkout_request_id", resp.CheckoutRequestID),
		zap.String("account_reference", req.AccountReference))

	return &payment.STKPushResponse{
		MerchantRequestID:   resp.MerchantRequestID,
		CheckoutRequestID:   resp.CheckoutRequestID,
		ResponseCode:        resp.ResponseCode,
		ResponseDescription: resp.ResponseDescription,
		CustomerMessage:     resp.CustomerMessage,
	}, nil
}

// STKPassword is base64(shortcode + passkey + timestamp).
func STKPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

func (a *DarajaAdapter) accessToken(ctx context.Context) (string, error) {
	cacheKey := darajaTokenCacheKey + a.cfg.ConsumerKey
	if token, ok, err := a.tokens.Get(ctx, cacheKey); err != nil {
		a.logger.Warn("Token cache read failed", zap.Error(err))
	} else if ok {
		return token, nil
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(a.cfg.ConsumerKey + ":" + a.cfg.ConsumerSecret))
	respBody, err := a.doRequest(ctx, http.MethodGet, darajaOAuthPath, nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Basic "+credentials)
	})
	if err != nil {
		return "", err
	}

	var resp darajaTokenResponse
	if err := json.Unmarshal(respBody, &resp); err != nil || resp.AccessToken == "" {
		return "", fmt.Errorf("%w: malformed OAuth response", payment.ErrGatewayUnavailable)
	}

	lifetime, err := strconv.Atoi(resp.ExpiresIn)
	if err != nil || lifetime <= 0 {
		lifetime = darajaDefaultTokenLife
	}
	if lifetime > darajaTokenExpirySkew {
		lifetime -= darajaTokenExpirySkew
	}
	if err := a.tokens.Set(ctx, cacheKey, resp.AccessToken, time.Duration(lifetime)*time.Second); err != nil {
		a.logger.Warn("Token cache write failed", zap.Error(err))
	}
	return resp.AccessToken, nil
}

// doRequest performs one Daraja call, retrying transport failures and 5xx responses.
func (a *DarajaAdapter) doRequest(ctx context.Context, method, path string, body []byte, authorize func(*http.Request)) ([]byte, error) {
	attempts := a.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var respBody []byte
	err := retry.Do(
		func() error {
			var reqBody io.Reader
			if body != nil {
				reqBody = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			authorize(req)

			resp, err := a.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 300 {
				se := &statusError{status: resp.StatusCode}
				var errResp darajaErrorResponse
				if json.Unmarshal(data, &errResp) == nil {
					se.code = errResp.ErrorCode
					se.msg = errResp.ErrorMessage
				}
				return se
			}
			respBody = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(a.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn("Retrying Daraja request",
				zap.String("path", path),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	return respBody, nil
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
