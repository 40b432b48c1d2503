package tibber

// Transport for the Tibber GraphQL API.
// Sends one authenticated POST per call through a rate limiter, a circuit breaker
// and the shared retry helper; knows nothing about prices.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"elpris/internal/infra/log"
	"elpris/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public Tibber GraphQL endpoint.
	DefaultEndpoint = "https://api.tibber.com/v1-beta/gql"

	defaultMaxResponseSize = 10 * 1024 * 1024
)

func LogDebug(message string, fields ...zap.Field) { log.LogDebug(message, fields...) }

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	Endpoint          string
	Token             string
	Timeout           time.Duration // 0 = wait forever
	MaxRetries        int
	RequestsPerSecond float64
	Location          *time.Location
	MaxResponseSize   int64
}

// Client talks to the pricing API.
type Client struct {
	endpoint        string
	token           string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	retry           retry.Options
	location        *time.Location
	maxResponseSize int64
}

// NewClient builds a Client ready to use.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	maxSize := opts.MaxResponseSize
	if maxSize <= 0 {
		maxSize = defaultMaxResponseSize
	}

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TibberAPI",
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.LogWarn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		endpoint:       endpoint,
		token:          opts.Token,
		rateLimiter:    rate.NewLimiter(rate.Limit(rps), 1),
		circuitBreaker: circuitBreaker,
		retry: retry.Options{
			MaxRetries: opts.MaxRetries,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   10 * time.Second,
		},
		location:        loc,
		maxResponseSize: maxSize,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// MakeRequest POSTs body as JSON and returns the raw 2xx response body.
func (c *Client) MakeRequest(ctx context.Context, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	var respBody []byte
	err = retry.Do(ctx, c.retry, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		out, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doPost(ctx, payload)
		})
		if err != nil {
			return err
		}
		respBody = out.([]byte)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

func (c *Client) doPost(ctx context.Context, payload []byte) ([]byte, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, c.token)

	log.LogRequest(requestID, req.Method, c.endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(), zap.String("endpoint", c.endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	duration := time.Since(startTime).Milliseconds()
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", c.endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", c.endpoint))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       trimBody(respBody),
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	log.LogJSON(respBody, "Tibber response")
	return respBody, nil
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "elpris/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// trimBody keeps error bodies short enough for log lines.
func trimBody(body []byte) []byte {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return []byte(s)
}
