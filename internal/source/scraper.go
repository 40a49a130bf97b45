package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// scraperClient mimics the web app's private JSON API using a logged-in
// session cookie. It is the richest variant: it can page comments per post,
// and it keeps every sampled comment regardless of author (matching the
// behavior of session-based scraping toolkits, which return the comment
// stream as-is).
type scraperClient struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	baseURL      string
	sessionID    string
	userAgent    string
	commentLimit int
}

type scraperProfileResponse struct {
	Data struct {
		User struct {
			IsPrivate bool `json:"is_private"`
			Media     struct {
				Edges []struct {
					Node struct {
						ID      string `json:"id"`
						Caption struct {
							Edges []struct {
								Node struct {
									Text string `json:"text"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"edge_media_to_caption"`
						LikedBy struct {
							Count int `json:"count"`
						} `json:"edge_liked_by"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

type scraperCommentsResponse struct {
	Comments []struct {
		Text string `json:"text"`
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	} `json:"comments"`
}

func newScraperClient(cfg Config) *scraperClient {
	base := cfg.BaseURL
	if base == "" {
		base = "https://www.instagram.com"
	}
	return &scraperClient{
		httpClient: &http.Client{Timeout: cfg.timeout()},
		// Session scraping is the most ban-prone path; keep it slow.
		limiter:      rate.NewLimiter(rate.Every(time.Second), 2),
		baseURL:      base,
		sessionID:    cfg.SessionID,
		userAgent:    cfg.UserAgent,
		commentLimit: cfg.commentLimit(),
	}
}

func (c *scraperClient) Name() string { return "scraper" }

func (c *scraperClient) FetchRecentActivity(ctx context.Context, handle string, limit int) ([]RawPost, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/v1/users/web_profile_info/?username=%s", c.baseURL, url.QueryEscape(handle))
	var profile scraperProfileResponse
	if err := c.getJSON(ctx, u, &profile); err != nil {
		return nil, err
	}
	if profile.Data.User.IsPrivate {
		return nil, fmt.Errorf("scraper: profile %q is private", handle)
	}

	edges := profile.Data.User.Media.Edges
	if len(edges) > limit {
		edges = edges[:limit]
	}

	posts := make([]RawPost, len(edges))
	for i, e := range edges {
		caption := ""
		if len(e.Node.Caption.Edges) > 0 {
			caption = e.Node.Caption.Edges[0].Node.Text
		}
		posts[i] = RawPost{Caption: caption, LikeCount: e.Node.LikedBy.Count}
	}

	// Comment pages are independent per post; fan them out but keep the
	// posts slice in upstream order. A failed comment page only costs that
	// post its comment sample.
	var wg sync.WaitGroup
	for i, e := range edges {
		wg.Add(1)
		go func(i int, mediaID string) {
			defer wg.Done()
			texts, err := c.fetchComments(ctx, mediaID)
			if err != nil {
				return
			}
			posts[i].CommentTexts = texts
		}(i, e.Node.ID)
	}
	wg.Wait()

	return posts, nil
}

func (c *scraperClient) fetchComments(ctx context.Context, mediaID string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/api/v1/media/%s/comments/?can_support_threading=false&max_count=%d",
		c.baseURL, url.PathEscape(mediaID), c.commentLimit)
	var resp scraperCommentsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	var texts []string
	for _, cm := range resp.Comments {
		texts = append(texts, cm.Text)
		if len(texts) >= c.commentLimit {
			break
		}
	}
	return texts, nil
}

func (c *scraperClient) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("X-IG-App-ID", "936619743392459")
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: c.sessionID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scraper: status %d from %s", resp.StatusCode, u)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
