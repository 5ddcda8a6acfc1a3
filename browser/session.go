package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/stealth"
)

// errSessionExpired marks a lost login session. It is deliberately not
// transient: the run cannot continue without re-authenticating.
var errSessionExpired = errors.New("session expired: redirected to login")

// ensureSession restores cookies and verifies they still authenticate;
// otherwise it performs a fresh credential login and saves the cookies.
func (c *Client) ensureSession() error {
	if err := c.loadCookies(); err == nil {
		c.log.Info("cookies loaded", zap.String("file", c.env.CookiesFile))
		if c.loggedIn() {
			c.log.Info("authenticated using existing cookies")
			return nil
		}
		c.log.Warn("cookies expired or invalid")
	}

	if !c.env.HasCredentials() {
		return errors.New("no valid cookies and TWITTER_USERNAME/TWITTER_PASSWORD not set")
	}

	c.log.Info("performing fresh login", zap.String("username", c.env.Username))
	if err := c.login(); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := c.saveCookies(); err != nil {
		return fmt.Errorf("save cookies: %w", err)
	}
	c.log.Info("cookies saved", zap.String("file", c.env.CookiesFile))
	return nil
}

// loggedIn probes the home timeline; a redirect to the login flow means the
// session is gone.
func (c *Client) loggedIn() bool {
	page, err := c.browser.Page(proto.TargetCreateTarget{URL: baseURL + "/home"})
	if err != nil {
		return false
	}
	defer page.Close()

	if err := page.Timeout(navTimeout).WaitStable(time.Second); err != nil {
		return false
	}
	info, err := page.Info()
	if err != nil {
		return false
	}
	return !strings.Contains(info.URL, "/login")
}

// checkSession inspects the working page URL after an action and converts a
// login redirect into the fatal session error.
func (c *Client) checkSession() error {
	info, err := c.page.Info()
	if err != nil {
		return nil
	}
	if strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "/account/access") {
		return errSessionExpired
	}
	return nil
}

// login walks the interactive login flow: username, the occasional extra
// identity prompt, then password.
func (c *Client) login() error {
	page, err := c.browser.Page(proto.TargetCreateTarget{URL: baseURL + "/i/flow/login"})
	if err != nil {
		return err
	}
	defer page.Close()

	page = page.Timeout(2 * navTimeout)
	defer page.CancelTimeout()

	if err := page.WaitStable(time.Second); err != nil {
		c.log.Debug("login page stability wait timed out, continuing")
	}

	if err := typeInto(page, `input[autocomplete="username"]`, c.env.Username, nil); err != nil {
		return err
	}
	if err := clickByText(page, "Next"); err != nil {
		return err
	}
	stealth.SleepMillis(800, 1500)

	// Suspicious-login interstitial asks for the account email.
	if has, _, _ := page.Has(`input[data-testid="ocfEnterTextTextInput"]`); has && c.env.Email != "" {
		if err := typeInto(page, `input[data-testid="ocfEnterTextTextInput"]`, c.env.Email, nil); err != nil {
			return err
		}
		if err := clickByText(page, "Next"); err != nil {
			return err
		}
		stealth.SleepMillis(800, 1500)
	}

	if err := typeInto(page, `input[autocomplete="current-password"]`, c.env.Password, nil); err != nil {
		return err
	}
	if err := clickByText(page, "Log in"); err != nil {
		return err
	}

	if err := page.WaitStable(time.Second); err != nil {
		c.log.Debug("post-login stability wait timed out, continuing")
	}
	stealth.SleepMillis(1500, 3000)

	info, err := page.Info()
	if err != nil {
		return err
	}
	if strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "/i/flow") {
		return errors.New("still on login flow after submitting credentials")
	}
	return nil
}

func (c *Client) saveCookies() error {
	cookies, err := c.browser.GetCookies()
	if err != nil {
		return err
	}

	file, err := os.Create(c.env.CookiesFile)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(cookies)
}

func (c *Client) loadCookies() error {
	file, err := os.Open(c.env.CookiesFile)
	if err != nil {
		return err
	}
	defer file.Close()

	var cookies []*proto.NetworkCookie
	if err := json.NewDecoder(file).Decode(&cookies); err != nil {
		return err
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, ck := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     ck.Name,
			Value:    ck.Value,
			Domain:   ck.Domain,
			Path:     ck.Path,
			Expires:  ck.Expires,
			Secure:   ck.Secure,
			HTTPOnly: ck.HTTPOnly,
			SameSite: ck.SameSite,
		})
	}

	return c.browser.SetCookies(params)
}

// clickByText clicks the first visible button/role=button whose text matches.
func clickByText(page *rod.Page, text string) error {
	result, err := page.Eval(`(label) => {
		const nodes = document.querySelectorAll('button, div[role="button"]');
		for (const node of nodes) {
			if (node.innerText && node.innerText.trim() === label && !node.disabled) {
				node.scrollIntoView({ block: "center" });
				node.click();
				return true;
			}
		}
		return false;
	}`, text)
	if err != nil {
		return fmt.Errorf("click %q: %w", text, err)
	}
	if !result.Value.Bool() {
		return fmt.Errorf("button %q not found", text)
	}
	return nil
}
