package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/rx-interaction-engine/internal/domain"
)

// ReferenceClient is a SourceAdapter over one external drug interaction
// reference service. Calls are rate limited and wrapped in a circuit breaker;
// every failure mode surfaces as a SourceUnavailableError so the merge
// pipeline degrades that pair instead of failing the check.
type ReferenceClient struct {
	name       string
	baseURL    string
	apiKey     string
	retryCount int

	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// referencePairResponse is the wire shape external reference services return
// for a single pair lookup.
type referencePairResponse struct {
	Found         bool   `json:"found"`
	Severity      string `json:"severity"`
	Mechanism     string `json:"mechanism"`
	Effect        string `json:"effect"`
	Management    string `json:"management"`
	EvidenceLevel string `json:"evidenceLevel"`
	Frequency     string `json:"frequency,omitempty"`
	Onset         string `json:"onset,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// NewReferenceClient creates a client for one configured reference service.
func NewReferenceClient(cfg domain.ReferenceConfig, logger *logrus.Logger) *ReferenceClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if logger == nil {
		logger = logrus.New()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"source": name,
				"from":   from.String(),
				"to":     to.String(),
			}).Warn("Reference service circuit breaker state changed")
		},
	})

	return &ReferenceClient{
		name:       cfg.Name,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		retryCount: cfg.RetryCount,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		breaker:   breaker,
		logger:    logger,
	}
}

// Name returns the provenance tag for records from this reference service.
func (c *ReferenceClient) Name() string {
	return c.name
}

// Fetch queries the reference service for the canonical pair. A service with
// no record for the pair returns (nil, nil); timeouts, transport failures,
// non-2xx responses, an open breaker, and malformed severity or evidence
// codes all return a SourceUnavailableError.
func (c *ReferenceClient) Fetch(ctx context.Context, pair domain.DrugPair) (*domain.InteractionRecord, error) {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, domain.NewSourceUnavailableError(c.name, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.queryPair(ctx, pair)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.WithFields(logrus.Fields{
				"source": c.name,
				"pair":   pair.Key(),
			}).Warn("Reference service skipped: circuit breaker open")
		}
		return nil, domain.NewSourceUnavailableError(c.name, err)
	}

	resp := result.(*referencePairResponse)
	if !resp.Found {
		return nil, nil
	}

	rec, err := c.buildRecord(pair, resp)
	if err != nil {
		// A record the taxonomy cannot represent is treated as this source
		// having nothing usable for the pair, not as a caller error.
		c.logger.WithFields(logrus.Fields{
			"source": c.name,
			"pair":   pair.Key(),
		}).WithError(err).Warn("Discarding malformed reference record")
		return nil, domain.NewSourceUnavailableError(c.name, err)
	}
	return rec, nil
}

func (c *ReferenceClient) queryPair(ctx context.Context, pair domain.DrugPair) (*referencePairResponse, error) {
	endpoint := fmt.Sprintf("%s/interactions?%s", c.baseURL, url.Values{
		"drugA": {pair.A.ID},
		"drugB": {pair.B.ID},
	}.Encode())

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		resp, err := c.doRequest(ctx, endpoint)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			// The adapter deadline has passed; retrying cannot help.
			break
		}
	}
	return nil, lastErr
}

func (c *ReferenceClient) doRequest(ctx context.Context, endpoint string) (*referencePairResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Services that 404 unknown pairs are equivalent to found=false.
		return &referencePairResponse{Found: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed referencePairResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &parsed, nil
}

func (c *ReferenceClient) buildRecord(pair domain.DrugPair, resp *referencePairResponse) (*domain.InteractionRecord, error) {
	severity, err := domain.ParseSeverity(resp.Severity)
	if err != nil {
		return nil, err
	}
	evidence, err := domain.ParseEvidenceLevel(resp.EvidenceLevel)
	if err != nil {
		return nil, err
	}

	rec := &domain.InteractionRecord{
		DrugA:         pair.A,
		DrugB:         pair.B,
		Severity:      severity,
		Mechanism:     resp.Mechanism,
		Effect:        resp.Effect,
		Management:    resp.Management,
		EvidenceLevel: evidence,
		Frequency:     resp.Frequency,
		Onset:         resp.Onset,
		Documentation: resp.Documentation,
	}
	rec.AddSources(c.name)
	return rec, nil
}

// BreakerState exposes the circuit breaker state for health reporting.
func (c *ReferenceClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts exposes the circuit breaker counters for health reporting.
func (c *ReferenceClient) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}

// HealthState reports the breaker state as a string ("closed", "half-open",
// "open") for the engine's health snapshot.
func (c *ReferenceClient) HealthState() string {
	return c.breaker.State().String()
}
