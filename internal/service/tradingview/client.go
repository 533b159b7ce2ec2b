package tradingview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TechScreener/internal/domain/models"
	drepo "TechScreener/internal/domain/repository"
	xhttp "TechScreener/pkg/http"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public scanner host.
const DefaultBaseURL = "https://scanner.tradingview.com"

// RejectedError reports a query the scanner declined. It matches
// repository.ErrRequestRejected under errors.Is.
type RejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RejectedError) Error() string {
	if e.StatusCode == 0 {
		return "tradingview rejected the request: " + e.Reason
	}
	return fmt.Sprintf("tradingview rejected the request (status %d): %s", e.StatusCode, e.Reason)
}

func (e *RejectedError) Is(target error) bool { return target == drepo.ErrRequestRejected }

// Client implements ScreenerProvider over the scanner HTTP API.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// New creates a scanner client. Every call is bounded by timeout.
func New(baseURL string, timeout time.Duration, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: xhttp.NewClient(
			xhttp.WithTimeout(timeout),
			xhttp.WithHeader("User-Agent", userAgent),
			xhttp.WithHeader("Accept", "application/json"),
		),
	}
}

// Scan posts q once and returns the rows in provider order. No retries.
func (c *Client) Scan(ctx context.Context, q models.Query) (models.ResultSet, error) {
	payload, err := EncodeQuery(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	var body []byte
	err = c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.scanURL(q.Market),
		Body:   payload,
	}, &body)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return nil, &RejectedError{StatusCode: se.StatusCode, Reason: se.Body}
		}
		return nil, fmt.Errorf("tradingview scan: %w", err)
	}

	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.Str != "" {
		return nil, &RejectedError{Reason: msg.Str}
	}

	rows, err := DecodeRows(body, q.Fields)
	if err != nil {
		return nil, fmt.Errorf("decode scan response: %w", err)
	}
	return rows, nil
}

func (c *Client) scanURL(market string) string {
	if market == "" {
		market = models.MarketIndia
	}
	return c.baseURL + "/" + market + "/scan"
}

var _ drepo.ScreenerProvider = (*Client)(nil)
