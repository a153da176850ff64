package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	"github.com/zatekoja/mtf-triage/backend/pkg/config"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
	"github.com/zatekoja/mtf-triage/backend/pkg/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.openai.com/v1"

// maxRetryAfter bounds how long a 429 can stall one report of a batch.
const maxRetryAfter = 10 * time.Second

var _ providers.ScanAnalyzer = (*Client)(nil)

// Client implements providers.ScanAnalyzer on the OpenAI Responses API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
	retry      retry.Config
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
		retry: retry.Config{
			MaxAttempts:     3,
			InitialDelay:    500 * time.Millisecond,
			MaxDelay:        4 * time.Second,
			BackoffFactor:   2.0,
			Jitter:          0.2,
			MaxTotalTimeout: 2 * timeout,
		},
	}, nil
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// Scan analyzes one radiology report. Failures are EXTERNAL AppErrors; a
// rejected API key additionally wraps providers.ErrScanUnauthorized.
func (c *Client) Scan(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
	start := time.Now()

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordOpenAIMetric(ctx, c.model, 0, 0, err)
			return entities.ScanResult{}, apperrors.NewExternalError("scan analysis rate limit wait aborted", err)
		}
		recordOpenAIRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := map[string]interface{}{
		"model": c.model,
		"input": []map[string]string{
			{"role": "system", "content": scanSystemPrompt},
			{"role": "user", "content": buildScanUserPrompt(report)},
		},
		"temperature":       0.1,
		"max_output_tokens": 1200,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return entities.ScanResult{}, apperrors.NewInternalError("failed to encode scan request", err)
	}

	var text string
	err = retry.Do(ctx, c.retry, func() error {
		var callErr error
		text, callErr = c.call(ctx, body)
		return callErr
	})
	if err != nil {
		return entities.ScanResult{}, apperrors.NewExternalError("scan analysis failed", err)
	}

	scan, err := parseScanPayload(text)
	if err != nil {
		return entities.ScanResult{}, apperrors.NewExternalError("scan analysis returned invalid JSON", err)
	}
	if scan.PatientID == "" {
		scan.PatientID = report.PatientID
	}
	scan.ProcessingTime = float64(time.Since(start).Milliseconds())
	return scan, nil
}

// call performs one Responses API round trip. Client errors are permanent;
// transport errors, 429 and 5xx are retried.
func (c *Client) call(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordOpenAIMetric(ctx, c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("openai request failed with status %d", resp.StatusCode)
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), statusErr)
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return "", retry.Permanent(fmt.Errorf("%w: %v", providers.ErrScanUnauthorized, statusErr))
		case resp.StatusCode == http.StatusTooManyRequests:
			return "", retry.After(retryAfter(resp.Header.Get("Retry-After")), statusErr)
		case resp.StatusCode >= 500:
			return "", statusErr
		default:
			return "", retry.Permanent(statusErr)
		}
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", retry.Permanent(fmt.Errorf("failed to decode openai response: %w", err))
	}

	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
				return content.Text, nil
			}
		}
	}

	missing := errors.New("openai response missing output text")
	recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), missing)
	return "", retry.Permanent(missing)
}

// retryAfter reads a delay-seconds Retry-After value, capped at maxRetryAfter
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

// tokenBucket refills lazily on Wait, so it owns no goroutine or timer
// beyond the lifetime of a single call.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	interval time.Duration
	last     time.Time
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &tokenBucket{
		tokens:   float64(burst),
		burst:    float64(burst),
		interval: interval,
		last:     time.Now(),
	}
}

// take consumes a token if one is available. Otherwise it returns the time
// until the next token.
func (b *tokenBucket) take() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens = min(b.burst, b.tokens+float64(now.Sub(b.last))/float64(b.interval))
	b.last = now
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, max(time.Duration((1-b.tokens)*float64(b.interval)), time.Millisecond)
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	for {
		ok, wait := b.take()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

type openAIMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	openaiMetricsOnce sync.Once
	openaiMetrics     *openAIMetrics
)

func ensureOpenAIMetrics() *openAIMetrics {
	openaiMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/mtf-triage/backend/openai")

		requestCount, err := meter.Int64Counter(
			"ai.openai.request.count",
			metric.WithDescription("Number of OpenAI requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"ai.openai.request.duration",
			metric.WithDescription("OpenAI request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"ai.openai.request.errors",
			metric.WithDescription("Number of OpenAI request errors"),
		)
		if err != nil {
			return
		}
		rateLimitWait, err := meter.Float64Histogram(
			"ai.openai.rate_limit.wait",
			metric.WithDescription("Time spent waiting for OpenAI rate limiter in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}

		openaiMetrics = &openAIMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
			rateLimitWait:   rateLimitWait,
		}
	})
	return openaiMetrics
}

func recordOpenAIMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	m := ensureOpenAIMetrics()
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
		attribute.String("ai.operation", "scan"),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	m.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordOpenAIRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	m := ensureOpenAIMetrics()
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	m.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
