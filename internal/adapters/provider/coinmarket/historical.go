package coinmarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"chartflow/internal/core/domain"
	"chartflow/internal/core/port"
)

var _ port.QuoteProviderPort = (*Client)(nil)

const (
	historicalPath = "/v2/cryptocurrency/quotes/historical"
	quoteCurrency  = "USD"

	maxSnippetLen = 256
)

type historicalResponse struct {
	Data map[string]assetQuotes `json:"data"`
}

type assetQuotes struct {
	Quotes []quoteRecord `json:"quotes"`
}

type quoteRecord struct {
	Timestamp string                   `json:"timestamp"`
	Quote     map[string]currencyQuote `json:"quote"`
}

type currencyQuote struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	MarketCap        float64 `json:"market_cap"`
	PercentChange24h float64 `json:"percent_change_24h"`
}

// HistoricalQuotes fetches the asset's quote series for the window and maps
// it to points sorted ascending by timestamp. The response shape is checked
// strictly: a missing data envelope, a missing asset entry and an empty
// quote list are reported as distinct errors.
func (c *Client) HistoricalQuotes(ctx context.Context, assetID string, start, end time.Time, interval string) ([]domain.TimeSeriesPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("id", assetID)
	params.Set("time_start", start.UTC().Format(time.RFC3339))
	params.Set("time_end", end.UTC().Format(time.RFC3339))
	params.Set("interval", interval)

	reqURL := c.baseURL + historicalPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var parsed historicalResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("malformed upstream payload",
			slog.String("asset", assetID), slog.String("payload", snippet(body)))
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingEnvelope, err)
	}
	if parsed.Data == nil {
		c.logger.Error("upstream payload has no data envelope",
			slog.String("asset", assetID), slog.String("payload", snippet(body)))
		return nil, domain.ErrMissingEnvelope
	}

	asset, ok := parsed.Data[assetID]
	if !ok {
		c.logger.Error("upstream payload missing requested asset",
			slog.String("asset", assetID), slog.String("payload", snippet(body)))
		return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotInData, assetID)
	}
	if len(asset.Quotes) == 0 {
		c.logger.Error("upstream payload has empty quote list",
			slog.String("asset", assetID), slog.String("payload", snippet(body)))
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyQuotes, assetID)
	}

	points := make([]domain.TimeSeriesPoint, 0, len(asset.Quotes))
	for _, record := range asset.Quotes {
		ts, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			c.logger.Warn("skipping quote with unparsable timestamp",
				slog.String("asset", assetID), slog.String("timestamp", record.Timestamp))
			continue
		}
		quote, ok := record.Quote[quoteCurrency]
		if !ok {
			c.logger.Warn("skipping quote without currency entry",
				slog.String("asset", assetID), slog.String("timestamp", record.Timestamp))
			continue
		}
		points = append(points, domain.TimeSeriesPoint{
			Timestamp:        ts.UnixMilli(),
			Price:            quote.Price,
			Volume:           quote.Volume24h,
			MarketCap:        quote.MarketCap,
			PercentChange24h: quote.PercentChange24h,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyQuotes, assetID)
	}

	// Ascending order for consumers; duplicate timestamps pass through.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	return points, nil
}

func snippet(body []byte) string {
	if len(body) > maxSnippetLen {
		return string(body[:maxSnippetLen]) + "..."
	}
	return string(body)
}
