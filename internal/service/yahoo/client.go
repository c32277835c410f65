// Package yahoo reads intraday OHLCV history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"AutoTrade/internal/domain/models"
	domrepo "AutoTrade/internal/domain/repository"
	xhttp "AutoTrade/pkg/http"
)

const (
	DefaultBaseURL  = "https://query1.finance.yahoo.com"
	DefaultInterval = "1m"
	DefaultRange    = "5d"
)

// Client implements MarketDataSource.
type Client struct {
	baseURL  string
	interval string
	rng      string
	http     *xhttp.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithWindow sets the bar interval and lookback range, e.g. "1m" and "5d".
func WithWindow(interval, rng string) Option {
	return func(c *Client) {
		if interval != "" {
			c.interval = interval
		}
		if rng != "" {
			c.rng = rng
		}
	}
}

func New(httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, interval: DefaultInterval, rng: DefaultRange, http: httpClient}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return "yahoo" }

// chartResponse mirrors /v8/finance/chart. Quote values are null for empty minutes.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchSeries returns the symbol's bars sorted ascending with null and duplicate bars removed.
func (c *Client) FetchSeries(ctx context.Context, symbol string) (*models.Series, error) {
	var cr chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		QueryParams: map[string][]string{"interval": {c.interval}, "range": {c.rng}},
		Headers:     map[string]string{"Accept": "application/json"},
	}, &cr)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return nil, fmt.Errorf("yahoo: unknown symbol %s: %w", symbol, models.ErrDataUnavailable)
		}
		return nil, fmt.Errorf("yahoo fetch %s: %v: %w", symbol, err, models.ErrDataUnavailable)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %w", cr.Chart.Error.Description, models.ErrDataUnavailable)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s: %w", symbol, models.ErrDataUnavailable)
	}
	res := cr.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: missing ohlc columns for %s: %w", symbol, models.ErrDataUnavailable)
	}
	q := res.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, okO := at(q.Open, i)
		h, okH := at(q.High, i)
		l, okL := at(q.Low, i)
		cl, okC := at(q.Close, i)
		if !okO || !okH || !okL || !okC {
			continue // null bar
		}
		v, _ := at(q.Volume, i)
		bars = append(bars, models.Bar{Time: time.Unix(ts, 0), Open: o, High: h, Low: l, Close: cl, Volume: v})
	}
	bars = sortDedup(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo: only null bars for %s: %w", symbol, models.ErrDataUnavailable)
	}
	return &models.Series{Symbol: symbol, Bars: bars}, nil
}

// Health probes the API with a cheap daily query for a liquid index.
func (c *Client) Health(ctx context.Context) error {
	var cr chartResponse
	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v8/finance/chart/" + url.PathEscape("^GSPC"),
		QueryParams: map[string][]string{"interval": {"1d"}, "range": {"1d"}},
	}, &cr)
}

func at(col []*float64, i int) (float64, bool) {
	if i >= len(col) || col[i] == nil {
		return 0, false
	}
	v := *col[i]
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// sortDedup sorts by time and keeps the last bar for each timestamp.
func sortDedup(bars []models.Bar) []models.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

var _ domrepo.MarketDataSource = (*Client)(nil)
