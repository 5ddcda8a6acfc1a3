// Package browser implements the bot.Driver contract on top of go-rod: it
// owns the Chromium session, scrapes search results and performs the actual
// reply/like/follow interactions against the Twitter/X web interface.
package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/settings"
)

const (
	baseURL    = "https://x.com"
	navTimeout = 20 * time.Second
)

// Client drives one logged-in browser session. It is not safe for concurrent
// use; the automation loop is its only caller.
type Client struct {
	browser *rod.Browser
	page    *rod.Page
	env     settings.Environment
	log     *zap.Logger
}

// New launches the browser, restores or establishes a logged-in session and
// returns a ready client. Any failure here is unrecoverable for the run.
func New(env settings.Environment, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	u, err := launcher.New().
		Leakless(false).
		Headless(env.Headless).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	c := &Client{browser: b, env: env, log: log}
	if err := c.ensureSession(); err != nil {
		_ = b.Close()
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("open working page: %w", err)
	}
	c.page = page

	return c, nil
}

// Close shuts the browser down.
func (c *Client) Close() error {
	return c.browser.Close()
}

// navigate loads a URL on the working page and waits for it to settle.
func (c *Client) navigate(url string) error {
	page := c.page.Timeout(navTimeout)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitStable(time.Second); err != nil {
		c.log.Debug("page stability wait timed out, continuing", zap.String("url", url))
	}
	return nil
}
