package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// graphClient talks to the official token-authenticated graph API. One call
// returns posts with embedded comments. Unlike the other variants, it keeps
// only comments written by the target handle itself: the graph media edge
// returns comments from everyone, and for peer-risk purposes this variant's
// identity semantics are "what has the target been saying", not "what is
// being said under the target's posts". That difference is intentional.
type graphClient struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	baseURL      string
	accessToken  string
	commentLimit int
}

type graphMediaResponse struct {
	Data []struct {
		Caption   string `json:"caption"`
		LikeCount int    `json:"like_count"`
		Comments  struct {
			Data []struct {
				Text     string `json:"text"`
				Username string `json:"username"`
			} `json:"data"`
		} `json:"comments"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func newGraphClient(cfg Config) *graphClient {
	base := cfg.BaseURL
	if base == "" {
		base = "https://graph.instagram.com"
	}
	return &graphClient{
		httpClient:   &http.Client{Timeout: cfg.timeout()},
		limiter:      rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		baseURL:      base,
		accessToken:  cfg.AccessToken,
		commentLimit: cfg.commentLimit(),
	}
}

func (c *graphClient) Name() string { return "graph" }

func (c *graphClient) FetchRecentActivity(ctx context.Context, handle string, limit int) ([]RawPost, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("fields", fmt.Sprintf("caption,like_count,comments.limit(%d){text,username}", c.commentLimit))
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("access_token", c.accessToken)
	u := fmt.Sprintf("%s/%s/media?%s", c.baseURL, url.PathEscape(handle), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph: status %d from media edge", resp.StatusCode)
	}

	var media graphMediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, err
	}
	if media.Error != nil {
		return nil, fmt.Errorf("graph: api error %d: %s", media.Error.Code, media.Error.Message)
	}

	data := media.Data
	if len(data) > limit {
		data = data[:limit]
	}

	posts := make([]RawPost, 0, len(data))
	for _, m := range data {
		post := RawPost{Caption: m.Caption, LikeCount: m.LikeCount}
		for _, cm := range m.Comments.Data {
			if cm.Username != handle {
				continue
			}
			post.CommentTexts = append(post.CommentTexts, cm.Text)
			if len(post.CommentTexts) >= c.commentLimit {
				break
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}
