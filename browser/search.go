package browser

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/bot"
	"github.com/Nehilsa2/twitter_automation/stealth"
)

// extractTweetsJS pulls candidate data out of the rendered search results.
// Eligibility flags come straight from which action buttons the page offers.
const extractTweetsJS = `() => {
	const out = [];
	const articles = document.querySelectorAll('article[data-testid="tweet"]');
	for (const article of articles) {
		const link = article.querySelector('a[href*="/status/"]');
		if (!link) continue;
		const match = link.getAttribute('href').match(/\/status\/(\d+)/);
		if (!match) continue;

		const textNode = article.querySelector('div[data-testid="tweetText"]');
		const authorLink = article.querySelector('div[data-testid="User-Name"] a[href^="/"]');

		out.push({
			id: match[1],
			author: authorLink ? authorLink.getAttribute('href').slice(1) : "",
			text: textNode ? textNode.innerText : "",
			canReply: !!article.querySelector('button[data-testid="reply"]'),
			canLike: !!article.querySelector('button[data-testid="like"]'),
			canFollow: !!article.querySelector('div[data-testid$="-follow"]'),
		});
	}
	return out;
}`

// Search loads the live search results for the query and scrapes visible
// tweets into candidates. Scrape failures are transient; a login redirect is
// fatal for the run.
func (c *Client) Search(ctx context.Context, query string) ([]bot.Candidate, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&f=live", baseURL, url.QueryEscape(query))

	if err := c.navigate(searchURL); err != nil {
		return nil, bot.Transient(err)
	}
	if err := c.checkSession(); err != nil {
		return nil, err
	}

	// Let the first results render, then scroll once to load a few more.
	stealth.SleepMillis(1500, 3000)
	if err := c.page.Mouse.Scroll(0, 600, 3); err != nil {
		c.log.Debug("scroll failed, scraping what is visible")
	}
	stealth.SleepMillis(800, 1500)

	page := c.page.Context(ctx)
	result, err := page.Eval(extractTweetsJS)
	if err != nil {
		return nil, bot.Transient(fmt.Errorf("extract candidates: %w", err))
	}

	var candidates []bot.Candidate
	for _, item := range result.Value.Arr() {
		cand := bot.Candidate{
			ID:        item.Get("id").Str(),
			Author:    item.Get("author").Str(),
			Text:      item.Get("text").Str(),
			CanReply:  item.Get("canReply").Bool(),
			CanLike:   item.Get("canLike").Bool(),
			CanFollow: item.Get("canFollow").Bool(),
		}
		if cand.ID == "" {
			continue
		}
		candidates = append(candidates, cand)
	}

	c.log.Debug("search results scraped",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}
