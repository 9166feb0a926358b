package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ilakiancs/StockSage/internal/command"
	"github.com/Ilakiancs/StockSage/internal/config"
	"github.com/Ilakiancs/StockSage/internal/models"
	"github.com/Ilakiancs/StockSage/internal/store"
	"github.com/Ilakiancs/StockSage/internal/watchlist"
)

const (
	testWebhookURL = "https://example.com/receive-message"
	testAuthToken  = "secret-token"
	botNumber      = "+15550001111"
	userNumber     = "+15550002222"
)

type memStore struct {
	tickers map[string]models.TrackedTicker
	stats   store.AlertStats
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{tickers: make(map[string]models.TrackedTicker)}
}

func (m *memStore) LoadWatchlist(ctx context.Context) ([]models.TrackedTicker, error) {
	out := make([]models.TrackedTicker, 0, len(m.tickers))
	for _, t := range m.tickers {
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) SaveTicker(ctx context.Context, t models.TrackedTicker) error {
	m.tickers[t.Symbol] = t
	return nil
}

func (m *memStore) DeleteTicker(ctx context.Context, symbol string) (bool, error) {
	_, ok := m.tickers[symbol]
	delete(m.tickers, symbol)
	return ok, nil
}

func (m *memStore) RecordAlert(ctx context.Context, event models.MovementEvent, message, date string) error {
	return nil
}

func (m *memStore) AlertStats(ctx context.Context, today string) (store.AlertStats, error) {
	return m.stats, nil
}

func (m *memStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *memStore) Close() error { return nil }

type stubGateway struct {
	price float64
}

func (s *stubGateway) FetchPrice(ctx context.Context, symbol string) (models.Quote, error) {
	return models.Quote{Symbol: symbol, Price: s.price}, nil
}

type recordingNotifier struct {
	sent []string
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Send(ctx context.Context, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func testConfig(withSignature bool) *config.Config {
	cfg := config.Default()
	cfg.Credentials.Twilio.AccountSID = "AC123"
	cfg.Credentials.Twilio.FromNumber = botNumber
	cfg.Credentials.Twilio.ToNumber = userNumber
	if withSignature {
		cfg.Credentials.Twilio.AuthToken = testAuthToken
		cfg.Server.WebhookURL = testWebhookURL
	}
	return cfg
}

type fixture struct {
	server   *Server
	store    *memStore
	wl       *watchlist.Watchlist
	notifier *recordingNotifier
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()

	dataStore := newMemStore()
	gateway := &stubGateway{price: 230.10}
	wl, err := watchlist.New(context.Background(), dataStore, gateway, zerolog.Nop())
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	dispatcher := command.NewDispatcher(wl, gateway, notifier, 160, zerolog.Nop())

	return &fixture{
		server:   New(dispatcher, wl, dataStore, cfg, zerolog.Nop()),
		store:    dataStore,
		wl:       wl,
		notifier: notifier,
	}
}

// twilioSignature reproduces the provider's request signing: the public
// URL with the sorted form parameters appended, HMAC-SHA1, base64.
func twilioSignature(form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(testWebhookURL)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(form.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(testAuthToken))
	mac.Write([]byte(sb.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postMessage(f *fixture, form url.Values, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/receive-message", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func messageForm(from, to, body string) url.Values {
	return url.Values{"From": {from}, "To": {to}, "Body": {body}}
}

func TestWebhookExecutesCommand(t *testing.T) {
	f := newFixture(t, testConfig(true))

	form := messageForm(userNumber, botNumber, "track AAPL")
	rec := postMessage(f, form, twilioSignature(form))

	assert.Equal(t, http.StatusOK, rec.Code)
	_, tracked := f.wl.Get("AAPL")
	assert.True(t, tracked, "AAPL should be tracked after the command")
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0], "Now tracking AAPL")
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t, testConfig(true))

	form := messageForm(userNumber, botNumber, "track AAPL")
	rec := postMessage(f, form, "bogus-signature")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	_, tracked := f.wl.Get("AAPL")
	assert.False(t, tracked, "command must not run with a bad signature")
}

func TestWebhookSkipsSignatureWhenUnconfigured(t *testing.T) {
	f := newFixture(t, testConfig(false))

	form := messageForm(userNumber, botNumber, "track AAPL")
	rec := postMessage(f, form, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	_, tracked := f.wl.Get("AAPL")
	assert.True(t, tracked)
}

func TestWebhookDropsUnauthorizedSender(t *testing.T) {
	f := newFixture(t, testConfig(true))

	form := messageForm("+19998887777", botNumber, "track AAPL")
	rec := postMessage(f, form, twilioSignature(form))

	// Acknowledged so the provider stops retrying, but no action taken.
	assert.Equal(t, http.StatusOK, rec.Code)
	_, tracked := f.wl.Get("AAPL")
	assert.False(t, tracked, "unauthorized senders must not reach the dispatcher")
	assert.Empty(t, f.notifier.sent)
}

func TestWebhookIgnoresEmptyBody(t *testing.T) {
	f := newFixture(t, testConfig(true))

	form := messageForm(userNumber, botNumber, "   ")
	rec := postMessage(f, form, twilioSignature(form))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.notifier.sent)
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t, testConfig(true))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "stocksage", payload["service"])
	assert.Equal(t, true, payload["store_reachable"])
}

func TestHealthDegradedWhenStoreUnreachable(t *testing.T) {
	f := newFixture(t, testConfig(true))
	f.store.pingErr = context.DeadlineExceeded

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "degraded", payload["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, testConfig(true))
	f.store.stats = store.AlertStats{TotalAlerts: 12, AlertsToday: 3, SymbolsAlerted: 5}
	require.NoError(t, f.store.SaveTicker(context.Background(), models.TrackedTicker{Symbol: "AAPL"}))

	// Reload so the watchlist count reflects the stored ticker.
	wl, err := watchlist.New(context.Background(), f.store, &stubGateway{}, zerolog.Nop())
	require.NoError(t, err)
	f.server.watchlist = wl

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.EqualValues(t, 1, payload["tracked_stocks_count"])
	assert.EqualValues(t, 12, payload["total_alerts_sent"])
	assert.EqualValues(t, 3, payload["alerts_today"])
	assert.EqualValues(t, 5, payload["unique_stocks_alerted"])
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, testConfig(true))

	req := httptest.NewRequest(http.MethodGet, "/receive-message", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
