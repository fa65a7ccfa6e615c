package fplfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fplstats/fpl-stats/internal/platform/logging"
	"github.com/fplstats/fpl-stats/internal/platform/resilience"
	"github.com/fplstats/fpl-stats/internal/usecase"
)

const (
	defaultBaseURL      = "https://fantasy.premierleague.com/api"
	bootstrapStaticPath = "/bootstrap-static/"
	maxResponseBytes    = 16 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches the bootstrap-static document. A failed fetch is fatal
// for the refresh that issued it: there is no retry loop, the breaker
// only sheds load from an upstream that is already failing.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}
	if httpClient.Transport == nil {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenLimit),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchBootstrap returns the raw bootstrap-static JSON. Concurrent calls
// collapse into one upstream request.
func (c *Client) FetchBootstrap(ctx context.Context) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl feed circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.Mark(fmt.Errorf("fpl feed is temporarily unavailable"), usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(bootstrapStaticPath, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, c.baseURL+bootstrapStaticPath)
		if c.circuitEnabled {
			if reqErr != nil {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "fpl feed request failed", "url", fullURL, "error", err)
		return nil, crerr.Mark(fmt.Errorf("send request: %v", err), usecase.ErrDependencyUnavailable)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, crerr.Mark(fmt.Errorf("read response body: %v", readErr), usecase.ErrDependencyUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "fpl feed returned non-success status", "url", fullURL, "status", resp.StatusCode)
		return nil, crerr.Mark(fmt.Errorf("feed status=%d", resp.StatusCode), usecase.ErrDependencyUnavailable)
	}

	return raw, nil
}
