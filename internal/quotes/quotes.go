// Package quotes provides access to current stock prices.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Ilakiancs/StockSage/internal/config"
	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
	"github.com/Ilakiancs/StockSage/internal/models"
)

// Gateway defines the interface for fetching current prices.
type Gateway interface {
	FetchPrice(ctx context.Context, symbol string) (models.Quote, error)
}

// YahooGateway fetches quotes from the Yahoo Finance chart API.
type YahooGateway struct {
	baseURL string
	client  *http.Client
}

// NewYahooGateway creates a gateway against the configured provider URL.
func NewYahooGateway(cfg config.QuotesConfig) *YahooGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YahooGateway{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// chartResponse mirrors the subset of the chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrice fetches the current price for a symbol. Any failure is a
// QuoteError and matches errors.Is(err, ErrQuoteUnavailable).
func (g *YahooGateway) FetchPrice(ctx context.Context, symbol string) (models.Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", g.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Quote{}, apperrors.NewQuoteError(symbol, err)
	}
	req.Header.Set("User-Agent", "StockSage/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Quote{}, apperrors.NewQuoteError(symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Quote{}, apperrors.NewQuoteError(symbol, fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Quote{}, apperrors.NewQuoteError(symbol, fmt.Errorf("decoding response: %w", err))
	}

	if payload.Chart.Error != nil {
		return models.Quote{}, apperrors.NewQuoteError(symbol, fmt.Errorf("provider error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description))
	}
	if len(payload.Chart.Result) == 0 {
		return models.Quote{}, apperrors.NewQuoteError(symbol, fmt.Errorf("no result for symbol"))
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return models.Quote{}, apperrors.NewQuoteError(symbol, fmt.Errorf("invalid price %.4f", meta.RegularMarketPrice))
	}

	asOf := time.Now()
	if meta.RegularMarketTime > 0 {
		asOf = time.Unix(meta.RegularMarketTime, 0)
	}

	return models.Quote{
		Symbol: symbol,
		Price:  meta.RegularMarketPrice,
		AsOf:   asOf,
	}, nil
}
