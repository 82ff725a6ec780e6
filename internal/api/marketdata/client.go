package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	httpclient "github.com/Tracer88/Momentum/internal/platform/http"
	"github.com/Tracer88/Momentum/models"
)

// Client fetches candles and quote snapshots from the market data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// NewClient creates a market data client from config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.APIBaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        time.Duration(cfg.APITimeoutSeconds) * time.Second,
			RequestsPerSec: cfg.APIRateLimit,
		}),
		logger: log.With().Str("component", "marketdata_client").Logger(),
	}
}

type timeSeriesResponse struct {
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	Volume        string `json:"volume"`
	AverageVolume string `json:"average_volume"`
	PercentChange string `json:"percent_change"`
	FiftyTwoWeek  struct {
		High string `json:"high"`
		Low  string `json:"low"`
	} `json:"fifty_two_week"`
}

// GetCandles fetches candle data for symbol, sorted oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, count int) ([]models.Candle, error) {
	endpoint := fmt.Sprintf(
		"%s/time_series?symbol=%s&interval=%s&outputsize=%d&apikey=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(interval), count, c.apiKey,
	)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, fmt.Errorf("empty data returned")
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			// Daily candles carry a date only.
			ts, _ = time.Parse("2006-01-02", v.Datetime)
		}
		volume, _ := strconv.ParseInt(v.Volume, 10, 64)
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      parseFloat(v.Open),
			High:      parseFloat(v.High),
			Low:       parseFloat(v.Low),
			Close:     parseFloat(v.Close),
			Volume:    volume,
		})
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// GetSnapshot fetches the current quote for symbol and derives the market
// snapshot fields the analysis pipeline expects.
func (c *Client) GetSnapshot(ctx context.Context, symbol string) (models.MarketSnapshot, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s", c.baseURL, url.QueryEscape(symbol), c.apiKey)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return models.MarketSnapshot{}, err
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return models.MarketSnapshot{}, fmt.Errorf("parsing JSON: %w", err)
	}

	snapshot := models.MarketSnapshot{
		Symbol:             symbol,
		CurrentPrice:       parseFloat(quote.Close),
		PriceChangePercent: parseFloat(quote.PercentChange),
		Week52High:         parseFloat(quote.FiftyTwoWeek.High),
		Week52Low:          parseFloat(quote.FiftyTwoWeek.Low),
	}
	snapshot.CurrentVolume, _ = strconv.ParseInt(quote.Volume, 10, 64)

	avgVolume := parseFloat(quote.AverageVolume)
	snapshot.RelativeVolume = 1.0
	if avgVolume > 0 {
		snapshot.RelativeVolume = float64(snapshot.CurrentVolume) / avgVolume
	}

	c.logger.Debug().Str("symbol", symbol).Float64("price", snapshot.CurrentPrice).Msg("Fetched quote")
	return snapshot, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if strings.Contains(string(body), `"status":"error"`) {
		c.logger.Error().Str("response", string(body)).Msg("market data API error")
		return nil, fmt.Errorf("market data API error: %s", string(body))
	}

	return body, nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
