// Package trainingdata fetches optional supplementary training
// datasets for the trainable sub-models. Every call is time-bounded,
// rate-limited and wrapped in a circuit breaker; a failing endpoint
// never blocks training, which always proceeds on the bundled data.
package trainingdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/interaction"
	"github.com/clinrisk-ensemble-engine/internal/risk"
)

// Client fetches supplementary datasets over HTTP. It implements both
// interaction.DatasetSource and risk.DatasetSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *lru.Cache
	logger     *logrus.Logger
}

// NewClient creates a dataset client from the dataset configuration.
func NewClient(cfg domain.DatasetConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dataset base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid dataset base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 5
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 32
	}

	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset cache: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "training-dataset",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Dataset circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		breaker:    breaker,
		cache:      cache,
		logger:     logger,
	}, nil
}

// FetchInteractionPairs downloads extra labeled drug pairs.
func (c *Client) FetchInteractionPairs(ctx context.Context) ([]interaction.LabeledPair, error) {
	body, err := c.get(ctx, "interactions")
	if err != nil {
		return nil, err
	}
	var pairs []interaction.LabeledPair
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode interaction dataset: %w", err)
	}
	return pairs, nil
}

// FetchRiskExamples downloads extra risk cohort rows.
func (c *Client) FetchRiskExamples(ctx context.Context) ([]risk.RiskExample, error) {
	body, err := c.get(ctx, "cohort")
	if err != nil {
		return nil, err
	}
	var examples []risk.RiskExample
	if err := json.Unmarshal(body, &examples); err != nil {
		return nil, fmt.Errorf("failed to decode risk cohort dataset: %w", err)
	}
	return examples, nil
}

// get performs one rate-limited, breaker-guarded GET, serving repeat
// requests from the in-memory cache.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset path %q: %w", path, err)
	}

	if cached, ok := c.cache.Get(endpoint); ok {
		return cached.([]byte), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", domain.ErrDatasetUnavailable, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("dataset endpoint returned status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	})
	if err != nil {
		c.logger.WithError(err).WithField("endpoint", endpoint).Warn("Dataset fetch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}

	body := result.([]byte)
	c.cache.Add(endpoint, body)
	return body, nil
}
