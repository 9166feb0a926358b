// Package server exposes the inbound message webhook and the
// health/metrics endpoints.
package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Ilakiancs/StockSage/internal/command"
	"github.com/Ilakiancs/StockSage/internal/config"
	"github.com/Ilakiancs/StockSage/internal/store"
	"github.com/Ilakiancs/StockSage/internal/watchlist"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server handles inbound Twilio webhooks.
type Server struct {
	dispatcher *command.Dispatcher
	watchlist  *watchlist.Watchlist
	store      store.DataStore
	cfg        *config.Config
	log        zerolog.Logger
	httpServer *http.Server
	location   *time.Location
}

// New creates the webhook server.
func New(dispatcher *command.Dispatcher, wl *watchlist.Watchlist, dataStore store.DataStore, cfg *config.Config, logger zerolog.Logger) *Server {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}

	s := &Server{
		dispatcher: dispatcher,
		watchlist:  wl,
		store:      dataStore,
		cfg:        cfg,
		log:        logger,
		location:   loc,
	}

	router := mux.NewRouter()
	router.HandleFunc("/receive-message", s.handleMessage).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleMessage handles the Twilio message webhook. The endpoint always
// acknowledges with a well-formed response; collaborator failures are
// turned into reply messages by the dispatcher, never surfaced here.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.log.Warn().Err(err).Msg("Invalid form data on webhook")
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	if !s.validSignature(r) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("Invalid webhook signature")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	from := r.PostFormValue("From")
	to := r.PostFormValue("To")
	body := strings.TrimSpace(r.PostFormValue("Body"))

	// Only the single configured sender may issue commands. Everyone
	// else gets an acknowledgment and no action.
	if to != s.cfg.Credentials.Twilio.FromNumber || from != s.cfg.Credentials.Twilio.ToNumber {
		s.log.Warn().Str("from", maskNumber(from)).Str("to", maskNumber(to)).Msg("Message from unauthorized sender dropped")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
		return
	}

	if body == "" {
		s.log.Debug().Msg("Empty message body ignored")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
		return
	}

	s.log.Info().Str("from", maskNumber(from)).Str("body", body).Msg("Processing inbound message")
	s.dispatcher.HandleMessage(r.Context(), body)

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// validSignature checks the X-Twilio-Signature header: base64 HMAC-SHA1
// of the webhook URL with the sorted POST parameters appended, keyed by
// the auth token. Skipped (with a warning) when no auth token or public
// URL is configured, so local testing works.
func (s *Server) validSignature(r *http.Request) bool {
	authToken := s.cfg.Credentials.Twilio.AuthToken
	webhookURL := s.cfg.Server.WebhookURL
	if authToken == "" || webhookURL == "" {
		s.log.Warn().Msg("Webhook signature validation disabled (auth token or webhook URL not configured)")
		return true
	}

	keys := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(webhookURL)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(r.PostFormValue(k))
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(sb.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(r.Header.Get("X-Twilio-Signature")))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status           string `json:"status"`
		Service          string `json:"service"`
		Version          string `json:"version"`
		TwilioConfigured bool   `json:"twilio_configured"`
		OpenAIConfigured bool   `json:"openai_configured"`
		StoreReachable   bool   `json:"store_reachable"`
	}

	h := health{
		Status:           "healthy",
		Service:          "stocksage",
		Version:          Version,
		TwilioConfigured: s.cfg.RequireCredentials() == nil,
		OpenAIConfigured: s.cfg.HasOpenAI(),
		StoreReachable:   true,
	}

	if pinger, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(r.Context()); err != nil {
			h.Status = "degraded"
			h.StoreReachable = false
		}
	}

	code := http.StatusOK
	if h.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, h)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	today := time.Now().In(s.location).Format("2006-01-02")
	stats, err := s.store.AlertStats(r.Context(), today)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read alert stats")
		http.Error(w, "error retrieving metrics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracked_stocks_count":  s.watchlist.Count(),
		"total_alerts_sent":     stats.TotalAlerts,
		"alerts_today":          stats.AlertsToday,
		"unique_stocks_alerted": stats.SymbolsAlerted,
		"last_updated":          time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// maskNumber hides all but the last four digits of a phone number in logs.
func maskNumber(number string) string {
	if len(number) <= 4 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}
