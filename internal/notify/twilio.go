package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ilakiancs/StockSage/internal/config"
	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
	"github.com/Ilakiancs/StockSage/pkg/utils"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioNotifier delivers SMS messages through the Twilio REST API.
type TwilioNotifier struct {
	accountSID string
	authToken  string
	from       string
	to         string
	baseURL    string
	client     *http.Client
	retry      utils.RetryConfig
}

// NewTwilioNotifier creates a notifier for the configured credentials.
func NewTwilioNotifier(creds config.TwilioCredentials) *TwilioNotifier {
	return &TwilioNotifier{
		accountSID: creds.AccountSID,
		authToken:  creds.AuthToken,
		from:       creds.FromNumber,
		to:         creds.ToNumber,
		baseURL:    twilioAPIBase,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		retry: utils.RetryConfig{
			MaxAttempts:   2,
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			BackoffFactor: 2.0,
		},
	}
}

// Name returns the name of the notifier.
func (t *TwilioNotifier) Name() string {
	return "twilio"
}

// Send delivers a single SMS. Any failure matches
// errors.Is(err, ErrDeliveryFailed). Transient provider errors (5xx,
// network) get one retry; 4xx responses do not.
func (t *TwilioNotifier) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.NewDeliveryError(t.Name(), fmt.Errorf("empty message body"))
	}

	var permanent error
	err := utils.Retry(ctx, t.retry, func() error {
		retryable, sendErr := t.send(ctx, text)
		if sendErr != nil && !retryable {
			// A permanent rejection; retrying cannot help. Stop the
			// loop and keep the error aside.
			permanent = sendErr
			return nil
		}
		return sendErr
	})
	if permanent != nil {
		return permanent
	}
	return err
}

// send performs one delivery attempt. The bool reports whether the
// failure is worth retrying.
func (t *TwilioNotifier) send(ctx context.Context, text string) (bool, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)

	form := url.Values{}
	form.Set("To", t.to)
	form.Set("From", t.from)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, apperrors.NewDeliveryError(t.Name(), err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return true, apperrors.NewDeliveryError(t.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := parseTwilioError(body)
	retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
	return retryable, apperrors.NewDeliveryError(t.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, msg))
}

func parseTwilioError(body []byte) string {
	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return fmt.Sprintf("%s (code %d)", payload.Message, payload.Code)
	}
	return strings.TrimSpace(string(body))
}
