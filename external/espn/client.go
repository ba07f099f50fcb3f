package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/leagueledger/league-ledger/internal/platform/logging"
	"github.com/leagueledger/league-ledger/internal/platform/resilience"
)

const (
	apiPathTemplate = "/apis/v3/games/ffl/seasons/%d/segments/0/leagues/%s"
	maxResponseSize = 8 << 20
)

// DefaultHosts is the provider host list in priority order. The read
// replica answers faster and tolerates cookie auth better; the main
// site stays as fallback.
var DefaultHosts = []string{
	"https://lm-api-reads.fantasy.espn.com",
	"https://fantasy.espn.com",
}

var errESPNTransient = crerr.New("espn transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	Hosts          []string
	LeagueID       string
	SWID           string
	S2             string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the provider's league read API. It is safe for
// concurrent use; concurrent fetches for the same season and view are
// collapsed into one request.
type Client struct {
	httpClient     *http.Client
	hosts          []string
	leagueID       string
	swid           string
	s2             string
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
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				// A redirect means the cookie auth was rejected and the
				// provider is bouncing us to a login page.
				return http.ErrUseLastResponse
			},
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	hosts := make([]string, 0, len(cfg.Hosts))
	for _, host := range cfg.Hosts {
		host = strings.TrimRight(strings.TrimSpace(host), "/")
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) == 0 {
		hosts = append(hosts, DefaultHosts...)
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		hosts:          hosts,
		leagueID:       strings.TrimSpace(cfg.LeagueID),
		swid:           strings.TrimSpace(cfg.SWID),
		s2:             strings.TrimSpace(cfg.S2),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchRawSeason retrieves the team and matchup views for one season.
func (c *Client) FetchRawSeason(ctx context.Context, year int) (RawSeason, error) {
	if year <= 0 {
		return RawSeason{}, fmt.Errorf("season year must be greater than zero")
	}

	teamDoc, err := c.fetchView(ctx, year, ViewTeam)
	if err != nil {
		return RawSeason{}, err
	}
	matchupDoc, err := c.fetchView(ctx, year, ViewMatchup)
	if err != nil {
		return RawSeason{}, err
	}

	return RawSeason{
		Year:     year,
		Teams:    objectSlice(teamDoc["teams"]),
		Schedule: objectSlice(matchupDoc["schedule"]),
	}, nil
}

// FetchLeagueSettings retrieves the settings view for one season.
func (c *Client) FetchLeagueSettings(ctx context.Context, year int) (map[string]any, error) {
	doc, err := c.fetchView(ctx, year, ViewSettings)
	if err != nil {
		return nil, err
	}
	settings, _ := doc["settings"].(map[string]any)
	return settings, nil
}

func (c *Client) fetchView(ctx context.Context, year int, view string) (map[string]any, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State(), "season", year, "view", view)
			return nil, &FetchError{Year: year, View: view, CircuitOpen: true, HostErrors: map[string]string{"circuit": err.Error()}}
		}
	}

	key := fmt.Sprintf("%d:%s", year, view)
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, year, view)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errESPNTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		var fetchErr *FetchError
		if stderrors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &FetchError{Year: year, View: view, HostErrors: map[string]string{"request": c.sanitize(err.Error())}}
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	var doc map[string]any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, &FetchError{Year: year, View: view, HostErrors: map[string]string{"decode": err.Error()}}
	}
	return doc, nil
}

// executeRequest walks the host list once in priority order. There is
// no backoff: a host either answers JSON with 200 or the next host is
// tried immediately.
func (c *Client) executeRequest(ctx context.Context, year int, view string) ([]byte, error) {
	hostErrors := make(map[string]string, len(c.hosts))

	for _, host := range c.hosts {
		fullURL := host + fmt.Sprintf(apiPathTemplate, year, url.PathEscape(c.leagueID)) + "?view=" + url.QueryEscape(view)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		c.decorateRequest(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			hostErrors[host] = c.sanitize(err.Error())
			continue
		}

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if readErr != nil {
			hostErrors[host] = fmt.Sprintf("read response body: %v", readErr)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			hostErrors[host] = fmt.Sprintf("status %d", resp.StatusCode)
			continue
		}
		if contentType := resp.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			// HTML here means an auth bounce, not league data.
			hostErrors[host] = fmt.Sprintf("unexpected content type %q", contentType)
			continue
		}

		return raw, nil
	}

	fetchErr := &FetchError{Year: year, View: view, HostErrors: hostErrors}
	c.logger.WarnContext(ctx, "espn request exhausted all hosts",
		"season", year,
		"view", view,
		"hosts", strings.Join(c.hosts, ","),
		"error", fetchErr.Error(),
	)
	return nil, crerr.Mark(fetchErr, errESPNTransient)
}

func (c *Client) decorateRequest(req *http.Request) {
	req.AddCookie(&http.Cookie{Name: "SWID", Value: c.swid})
	req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.s2})

	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://fantasy.espn.com/football/league?leagueId="+c.leagueID)
	req.Header.Set("Origin", "https://fantasy.espn.com")
	req.Header.Set("x-fantasy-platform", "kona")
	req.Header.Set("x-fantasy-source", "kona")
}

// sanitize strips credential values from error text before it reaches
// logs or API responses.
func (c *Client) sanitize(value string) string {
	if c.s2 != "" {
		value = strings.ReplaceAll(value, c.s2, "REDACTED")
	}
	if c.swid != "" {
		value = strings.ReplaceAll(value, c.swid, "REDACTED")
	}
	return value
}

func objectSlice(raw any) []map[string]any {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Hosts returns the configured host list, primary first.
func (c *Client) Hosts() []string {
	out := make([]string, len(c.hosts))
	copy(out, c.hosts)
	return out
}
