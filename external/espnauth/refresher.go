package espnauth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Credentials are the two provider cookies the read API authenticates
// with.
type Credentials struct {
	SWID      string
	S2        string
	FetchedAt time.Time
}

type RefresherConfig struct {
	Email    string
	Password string
	LeagueID string
	EnvFile  string
	Timeout  time.Duration
}

// Refresher drives a headless browser through the provider login flow
// and harvests fresh auth cookies. The session cookies last roughly a
// year, so this runs out of band, never inside the request path.
type Refresher struct {
	cfg    RefresherConfig
	logger *slog.Logger
}

func NewRefresher(cfg RefresherConfig, logger *slog.Logger) (*Refresher, error) {
	if strings.TrimSpace(cfg.Email) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, fmt.Errorf("provider email and password are required")
	}
	if strings.TrimSpace(cfg.LeagueID) == "" {
		return nil, fmt.Errorf("league id is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if strings.TrimSpace(cfg.EnvFile) == "" {
		cfg.EnvFile = ".env"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{cfg: cfg, logger: logger}, nil
}

// Refresh logs in, opens the league page, and returns the session
// cookies. It does not touch the env file; see WriteEnvFile.
func (r *Refresher) Refresh(ctx context.Context) (Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	chromeDir, err := os.MkdirTemp("", "espnauth_chrome_")
	if err != nil {
		return Credentials{}, fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(chromeDir) }()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserDataDir(chromeDir),
		chromedp.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	r.logger.InfoContext(ctx, "logging into provider")
	loginURL := "https://www.espn.com/login"
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, r.cfg.Email, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, r.cfg.Password, chromedp.ByQuery),
		chromedp.Submit(`input[name="password"]`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
	)
	if err != nil {
		return Credentials{}, fmt.Errorf("provider login: %w", err)
	}

	var currentURL string
	if err := chromedp.Run(browserCtx, chromedp.Location(&currentURL)); err != nil {
		return Credentials{}, fmt.Errorf("read post-login location: %w", err)
	}
	if strings.Contains(strings.ToLower(currentURL), "login") {
		return Credentials{}, fmt.Errorf("provider rejected the login, still at %s", currentURL)
	}

	r.logger.InfoContext(ctx, "opening league page", "league_id", r.cfg.LeagueID)
	leagueURL := "https://fantasy.espn.com/football/league?leagueId=" + r.cfg.LeagueID

	var creds Credentials
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(leagueURL),
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, cookie := range cookies {
				switch cookie.Name {
				case "SWID":
					creds.SWID = cookie.Value
				case "espn_s2":
					creds.S2 = cookie.Value
				}
			}
			return nil
		}),
	)
	if err != nil {
		return Credentials{}, fmt.Errorf("harvest league cookies: %w", err)
	}
	if creds.SWID == "" || creds.S2 == "" {
		return Credentials{}, fmt.Errorf("session cookies not present after login")
	}

	creds.FetchedAt = time.Now().UTC()
	return creds, nil
}

var (
	swidLinePattern      = regexp.MustCompile(`(?m)^ESPN_SWID=.*$`)
	s2LinePattern        = regexp.MustCompile(`(?m)^ESPN_S2=.*$`)
	timestampLinePattern = regexp.MustCompile(`(?m)^ESPN_CREDENTIALS_UPDATED=.*$`)
)

// WriteEnvFile rewrites the credential lines of the env file in place,
// preserving everything else.
func (r *Refresher) WriteEnvFile(creds Credentials) error {
	raw, err := os.ReadFile(r.cfg.EnvFile)
	if err != nil {
		return fmt.Errorf("read env file %s: %w", r.cfg.EnvFile, err)
	}

	content := string(raw)
	content = replaceOrAppend(content, swidLinePattern, "ESPN_SWID="+creds.SWID)
	content = replaceOrAppend(content, s2LinePattern, "ESPN_S2="+creds.S2)
	content = replaceOrAppend(content, timestampLinePattern, "ESPN_CREDENTIALS_UPDATED="+creds.FetchedAt.Format(time.RFC3339))

	if err := os.WriteFile(r.cfg.EnvFile, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write env file %s: %w", r.cfg.EnvFile, err)
	}
	return nil
}

func replaceOrAppend(content string, pattern *regexp.Regexp, line string) string {
	if pattern.MatchString(content) {
		return pattern.ReplaceAllString(content, line)
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n"
}
