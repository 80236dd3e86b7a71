package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/adfinitum/backend/internal/infrastructure/cache"
	"github.com/adfinitum/backend/internal/infrastructure/config"
)

func testMpesaConfig() config.MpesaConfig {
	return config.MpesaConfig{
		Environment:    "sandbox",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://shop.example.com/api/v1/payments/mpesa/callback",
		Timeout:        5 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Millisecond,
	}
}

type fakeDaraja struct {
	oauthCalls atomic.Int32
	pushCalls  atomic.Int32
	failPushes int32
	lastPush   darajaSTKPushRequest
}

func (f *fakeDaraja) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		f.oauthCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ck" || pass != "cs" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":"3599"}`))
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		n := f.pushCalls.Add(1)
		if n <= f.failPushes {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"requestId":"r","errorCode":"404.001.03","errorMessage":"Invalid Access Token"}`))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&f.lastPush); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"MerchantRequestID":"29115-1","CheckoutRequestID":"ws_CO_1","ResponseCode":"0","ResponseDescription":"Success. Request accepted for processing","CustomerMessage":"Success"}`))
	})
	return mux
}

func newTestAdapter(t *testing.T, f *fakeDaraja, cfg config.MpesaConfig) *DarajaAdapter {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	fixed := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	a, err := NewDarajaAdapter(cfg, cache.NewInMemoryTokenCache(),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return a
}

func TestValidateDarajaConfig(t *testing.T) {
	cfg := testMpesaConfig()
	assert.NoError(t, ValidateDarajaConfig(cfg))

	cfg.Passkey = ""
	assert.ErrorIs(t, ValidateDarajaConfig(cfg), ErrDarajaMissingPasskey)

	cfg = testMpesaConfig()
	cfg.ConsumerSecret = ""
	_, err := NewDarajaAdapter(cfg, nil)
	assert.ErrorIs(t, err, ErrDarajaMissingConsumerKey)
}

func TestSTKPassword(t *testing.T) {
	assert.Equal(t, "MTc0Mzc5cGFzc2tleTIwMjQwMzA1MTQwNzA5", STKPassword("174379", "passkey", "20240305140709"))
}

func TestDarajaAdapter_STKPush(t *testing.T) {
	f := &fakeDaraja{}
	a := newTestAdapter(t, f, testMpesaConfig())

	resp, err := a.STKPush(context.Background(), payment.STKPushRequest{
		PhoneNumber:      "254712345678",
		Amount:           decimal.RequireFromString("1499.20"),
		AccountReference: "ORD12345",
		Description:      "Payment for order 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_1", resp.CheckoutRequestID)
	assert.Equal(t, "29115-1", resp.MerchantRequestID)

	assert.Equal(t, int64(1500), f.lastPush.Amount)
	assert.Equal(t, "20240305140709", f.lastPush.Timestamp)
	assert.Equal(t, STKPassword("174379", "passkey", "20240305140709"), f.lastPush.Password)
	assert.Equal(t, "CustomerPayBillOnline", f.lastPush.TransactionType)
	assert.Equal(t, "254712345678", f.lastPush.PartyA)
	assert.Equal(t, "174379", f.lastPush.PartyB)
	assert.Equal(t, "ORD12345", f.lastPush.AccountReference)
}

func TestDarajaAdapter_TokenIsCached(t *testing.T) {
	f := &fakeDaraja{}
	a := newTestAdapter(t, f, testMpesaConfig())
	req := payment.STKPushRequest{PhoneNumber: "254712345678", Amount: decimal.NewFromInt(10)}

	_, err := a.STKPush(context.Background(), req)
	require.NoError(t, err)
	_, err = a.STKPush(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.oauthCalls.Load())
	assert.Equal(t, int32(2), f.pushCalls.Load())
}

func TestDarajaAdapter_RetriesServerErrors(t *testing.T) {
	f := &fakeDaraja{failPushes: 2}
	a := newTestAdapter(t, f, testMpesaConfig())

	_, err := a.STKPush(context.Background(), payment.STKPushRequest{PhoneNumber: "254712345678", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.pushCalls.Load())
}

func TestDarajaAdapter_GivesUpAfterAttempts(t *testing.T) {
	f := &fakeDaraja{failPushes: 10}
	a := newTestAdapter(t, f, testMpesaConfig())

	_, err := a.STKPush(context.Background(), payment.STKPushRequest{PhoneNumber: "254712345678", Amount: decimal.NewFromInt(10)})
	require.Error(t, err)
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	assert.Equal(t, int32(3), f.pushCalls.Load())
}

func TestDarajaAdapter_ClientErrorIsNotRetried(t *testing.T) {
	f := &fakeDaraja{}
	cfg := testMpesaConfig()
	cfg.ConsumerSecret = "wrong"
	a := newTestAdapter(t, f, cfg)

	_, err := a.STKPush(context.Background(), payment.STKPushRequest{PhoneNumber: "254712345678", Amount: decimal.NewFromInt(10)})
	require.Error(t, err)
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	assert.Equal(t, int32(1), f.oauthCalls.Load())
	assert.Zero(t, f.pushCalls.Load())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&statusError{status: 502}))
	assert.False(t, isRetryable(&statusError{status: 400}))
	assert.False(t, isRetryable(context.Canceled))
}
