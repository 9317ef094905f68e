package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/barfriedman1/FDA-drug-recall/internal/metrics"
	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

const DefaultEndpoint = "https://api.fda.gov/drug/enforcement.json"

// MaxLimit is the largest page openFDA serves without pagination.
const MaxLimit = 1000

const (
	productMaxLen = 50
	maxErrorBody  = 64 << 10
)

var (
	// ErrTransport wraps failures to reach the API at all.
	ErrTransport = errors.New("openfda: request failed")
	// ErrMalformed is returned when the body is not the expected results envelope.
	ErrMalformed = errors.New("openfda: malformed response")
)

// StatusError reports a non-2xx response. Code and Message are filled from the
// openFDA error envelope when the body carries one.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openfda: HTTP %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("openfda: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Meta is the subset of the response metadata shown to the user.
type Meta struct {
	LastUpdated string
	Total       int
}

// FetchResult is the outcome of one enforcement report fetch.
type FetchResult struct {
	Records []recall.Record
	Meta    Meta
}

type Client struct {
	endpoint   string
	limit      int
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client (whose only setting is the timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a client for the enforcement endpoint. An empty endpoint
// selects DefaultEndpoint and a limit outside 1..MaxLimit selects MaxLimit.
func NewClient(endpoint string, limit int, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	c := &Client{
		endpoint:   endpoint,
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// URL returns the request URL, endpoint plus the limit query parameter.
func (c *Client) URL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch issues a single GET against the enforcement endpoint and extracts one
// record per result.
func (c *Client) Fetch(ctx context.Context) (*FetchResult, error) {
	start := time.Now()
	res, err := c.fetch(ctx)
	elapsed := time.Since(start)

	metrics.FetchDuration.Observe(elapsed.Seconds())
	metrics.FetchesTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		c.logger.Error("fetch failed", "endpoint", c.endpoint, "duration", elapsed, "error", err)
		return nil, err
	}
	metrics.RecordsLoaded.Set(float64(len(res.Records)))
	c.logger.Info("fetched recalls", "endpoint", c.endpoint, "records", len(res.Records), "total", res.Meta.Total, "duration", elapsed)
	return res, nil
}

func (c *Client) fetch(ctx context.Context) (*FetchResult, error) {
	rawURL, err := c.URL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("response received", "status", resp.StatusCode, "url", rawURL)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}
	return Decode(body)
}

type envelope struct {
	Meta struct {
		LastUpdated string `json:"last_updated"`
		Results     struct {
			Total int `json:"total"`
		} `json:"results"`
	} `json:"meta"`
	Results *[]result `json:"results"`
}

// Fields are pointers so an absent key and an explicit null are both nil.
type result struct {
	ProductDescription *string `json:"product_description"`
	Classification     *string `json:"classification"`
	ReasonForRecall    *string `json:"reason_for_recall"`
	ReportDate         *string `json:"report_date"`
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Decode parses an enforcement response body into records.
func Decode(body []byte) (*FetchResult, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Results == nil {
		return nil, fmt.Errorf("%w: no results array", ErrMalformed)
	}

	records := make([]recall.Record, 0, len(*env.Results))
	for _, r := range *env.Results {
		records = append(records, recall.Record{
			Product:        truncate(valueOr(r.ProductDescription), productMaxLen),
			Classification: valueOr(r.Classification),
			Reason:         valueOr(r.ReasonForRecall),
			Year:           yearOf(r.ReportDate),
		})
	}

	return &FetchResult{
		Records: records,
		Meta: Meta{
			LastUpdated: env.Meta.LastUpdated,
			Total:       env.Meta.Results.Total,
		},
	}, nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return se
	}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
	}
	return se
}

func outcome(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "transport"
	}
}

func valueOr(s *string) string {
	if s == nil {
		return recall.Unknown
	}
	return *s
}

// yearOf takes the first four characters of a YYYYMMDD report date.
func yearOf(date *string) string {
	if date == nil || len(*date) < 4 {
		return recall.Unknown
	}
	y := (*date)[:4]
	for _, r := range y {
		if r < '0' || r > '9' {
			return recall.Unknown
		}
	}
	return y
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
