// Package scrape fetches a social-media thread with a headless Chrome
// and flattens it into the tweet list the translation engine consumes.
package scrape

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/hanlens/hanlens/internal/config"
	"github.com/hanlens/hanlens/internal/logging"
	"github.com/hanlens/hanlens/internal/types"
)

const defaultTimeout = 45 * time.Second

// Desktop UA; some sites serve a stripped mobile DOM to headless Chrome
// that the selectors don't match.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Scraper drives a headless browser session per FetchThread call.
type Scraper struct {
	selectors  config.ScrapeConfig
	maxReplies int
	timeout    time.Duration
}

// rawPost is what the in-page collector script returns per post.
type rawPost struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
}

func New(cfg *config.Config) *Scraper {
	return &Scraper{
		selectors:  cfg.Scrape,
		maxReplies: cfg.MaxReplies,
		timeout:    defaultTimeout,
	}
}

// FetchThread loads the page at url and returns the thread as tweets,
// main post first, replies capped at the configured maximum.
func (s *Scraper) FetchThread(ctx context.Context, url string) ([]types.Tweet, error) {
	if url == "" {
		return nil, fmt.Errorf("URL is required")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, s.timeout)
	defer cancelTimeout()

	var raw []rawPost
	err := chromedp.Run(browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(userAgent).Do(ctx)
		}),
		chromedp.Navigate(url),
		chromedp.WaitReady(s.selectors.WaitSelector),
		chromedp.Evaluate(s.collectorJS(), &raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", url, err)
	}

	tweets := assemble(raw, s.maxReplies)
	if len(tweets) == 0 {
		return nil, fmt.Errorf("no posts found at %s (selector %q)", url, s.selectors.PostSelector)
	}
	logging.Infof("scraped %d posts from %s", len(tweets), url)
	return tweets, nil
}

// collectorJS builds the in-page script that walks the configured post
// selector and pulls out text, author, and timestamp per post.
func (s *Scraper) collectorJS() string {
	return fmt.Sprintf(`(function() {
    const posts = Array.from(document.querySelectorAll(%s));
    return posts.map((post, i) => {
        const pick = sel => {
            const el = post.querySelector(sel);
            return el ? el.textContent.trim() : '';
        };
        const timeEl = post.querySelector(%s);
        return {
            id: post.getAttribute('data-id') || String(i),
            text: pick(%s),
            author: pick(%s),
            timestamp: timeEl ? (timeEl.getAttribute('datetime') || timeEl.textContent.trim()) : '',
        };
    });
})()`,
		jsString(s.selectors.PostSelector),
		jsString(s.selectors.TimeSelector),
		jsString(s.selectors.TextSelector),
		jsString(s.selectors.AuthorSelector),
	)
}

func jsString(s string) string {
	return strconv.Quote(s)
}

// assemble turns raw scraped posts into the tweet list: drops empty
// posts, marks the first as the main post, and caps replies.
func assemble(raw []rawPost, maxReplies int) []types.Tweet {
	var tweets []types.Tweet
	for _, p := range raw {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		id := p.ID
		if id == "" {
			id = strconv.Itoa(len(tweets))
		}
		tweets = append(tweets, types.Tweet{
			ID:         id,
			Text:       text,
			Author:     strings.TrimSpace(p.Author),
			Timestamp:  strings.TrimSpace(p.Timestamp),
			IsMainPost: len(tweets) == 0,
		})
		if maxReplies > 0 && len(tweets) > maxReplies {
			break
		}
	}
	return tweets
}
