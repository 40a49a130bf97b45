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

// publicClient hits the unauthenticated web-profile JSON endpoint. No
// credentials, so it only sees whatever comment previews the profile payload
// embeds, and it keeps them all regardless of author. Unauthenticated access
// is throttled hardest upstream, so the local limiter is the strictest of
// the three variants.
type publicClient struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	baseURL      string
	userAgent    string
	commentLimit int
}

type publicProfileResponse struct {
	GraphQL struct {
		User struct {
			IsPrivate bool `json:"is_private"`
			Media     struct {
				Edges []struct {
					Node struct {
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
						Comments struct {
							Edges []struct {
								Node struct {
									Text string `json:"text"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"edge_media_to_parent_comment"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"graphql"`
}

func newPublicClient(cfg Config) *publicClient {
	base := cfg.BaseURL
	if base == "" {
		base = "https://www.instagram.com"
	}
	return &publicClient{
		httpClient:   &http.Client{Timeout: cfg.timeout()},
		limiter:      rate.NewLimiter(rate.Every(2*time.Second), 1),
		baseURL:      base,
		userAgent:    cfg.UserAgent,
		commentLimit: cfg.commentLimit(),
	}
}

func (c *publicClient) Name() string { return "public" }

func (c *publicClient) FetchRecentActivity(ctx context.Context, handle string, limit int) ([]RawPost, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s/?__a=1&__d=dis", c.baseURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("public: unknown profile %q", handle)
	default:
		return nil, fmt.Errorf("public: status %d from profile endpoint", resp.StatusCode)
	}

	var profile publicProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	if profile.GraphQL.User.IsPrivate {
		return nil, fmt.Errorf("public: profile %q is private", handle)
	}

	edges := profile.GraphQL.User.Media.Edges
	if len(edges) > limit {
		edges = edges[:limit]
	}

	posts := make([]RawPost, 0, len(edges))
	for _, e := range edges {
		post := RawPost{LikeCount: e.Node.LikedBy.Count}
		if len(e.Node.Caption.Edges) > 0 {
			post.Caption = e.Node.Caption.Edges[0].Node.Text
		}
		for _, cm := range e.Node.Comments.Edges {
			post.CommentTexts = append(post.CommentTexts, cm.Node.Text)
			if len(post.CommentTexts) >= c.commentLimit {
				break
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}
