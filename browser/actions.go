package browser

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/bot"
	"github.com/Nehilsa2/twitter_automation/stealth"
)

// clickInTweetJS clicks a data-testid button inside the article for a given
// status id. Returns {found, clicked} so the caller can tell "element gone"
// apart from a real click.
const clickInTweetJS = `(statusId, testId) => {
	const articles = document.querySelectorAll('article[data-testid="tweet"]');
	for (const article of articles) {
		const link = article.querySelector('a[href*="/status/' + statusId + '"]');
		if (!link) continue;
		const btn = article.querySelector('button[data-testid="' + testId + '"]');
		if (!btn || btn.disabled) return { found: false, clicked: false };
		btn.scrollIntoView({ block: "center" });
		btn.click();
		return { found: true, clicked: true };
	}
	return { found: false, clicked: false };
}`

// Reply opens the reply composer for the candidate, types the text with
// human-like timing and submits it.
func (c *Client) Reply(ctx context.Context, cand bot.Candidate, text string) error {
	if err := c.clickTweetButton(ctx, cand, "reply"); err != nil {
		return err
	}
	stealth.SleepMillis(600, 1200)

	page := c.page.Context(ctx)
	if err := typeInto(page, `div[data-testid="tweetTextarea_0"]`, text, nil); err != nil {
		return bot.Transient(fmt.Errorf("compose reply: %w", err))
	}
	stealth.SleepMillis(300, 800)

	result, err := page.Eval(`() => {
		const btn = document.querySelector('button[data-testid="tweetButton"]');
		if (!btn || btn.disabled) return false;
		btn.click();
		return true;
	}`)
	if err != nil {
		return bot.Transient(fmt.Errorf("submit reply: %w", err))
	}
	if !result.Value.Bool() {
		return bot.Transient(fmt.Errorf("reply submit button not available for %s", cand.ID))
	}

	stealth.SleepMillis(1000, 2000)
	if err := c.checkSession(); err != nil {
		return err
	}

	c.log.Info("replied", zap.String("tweet", cand.ID), zap.String("author", cand.Author))
	return nil
}

// Like clicks the like button on the candidate's tweet.
func (c *Client) Like(ctx context.Context, cand bot.Candidate) error {
	if err := c.clickTweetButton(ctx, cand, "like"); err != nil {
		return err
	}
	stealth.SleepMillis(300, 800)
	return c.checkSession()
}

// Follow visits the author's profile and clicks their follow button.
func (c *Client) Follow(ctx context.Context, author string) error {
	if author == "" {
		return bot.Transient(fmt.Errorf("candidate has no author"))
	}

	if err := c.navigate(baseURL + "/" + author); err != nil {
		return bot.Transient(err)
	}
	if err := c.checkSession(); err != nil {
		return err
	}
	stealth.SleepMillis(800, 1500)

	page := c.page.Context(ctx)
	result, err := page.Eval(`() => {
		const btn = document.querySelector('button[data-testid$="-follow"]');
		if (!btn || btn.disabled) return false;
		btn.scrollIntoView({ block: "center" });
		btn.click();
		return true;
	}`)
	if err != nil {
		return bot.Transient(fmt.Errorf("follow @%s: %w", author, err))
	}
	if !result.Value.Bool() {
		return bot.Transient(fmt.Errorf("follow button not found for @%s", author))
	}

	stealth.SleepMillis(300, 800)
	return c.checkSession()
}

// clickTweetButton performs one in-article button click for a candidate that
// is expected to still be on the current page. A vanished article or button
// is transient: the feed simply moved on.
func (c *Client) clickTweetButton(ctx context.Context, cand bot.Candidate, testID string) error {
	page := c.page.Context(ctx)
	result, err := page.Eval(clickInTweetJS, cand.ID, testID)
	if err != nil {
		return bot.Transient(fmt.Errorf("click %s on %s: %w", testID, cand.ID, err))
	}
	if !result.Value.Get("clicked").Bool() {
		return bot.Transient(fmt.Errorf("%s button not found for tweet %s", testID, cand.ID))
	}
	return nil
}
