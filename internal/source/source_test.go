package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testHandle = "target_user"

// newUpstream serves just enough of each upstream's shape for the contract
// tests. Every variant sees the same logical fixture: two posts, captions
// "first"/"second", 10 and 20 likes, comments by the target and by others.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	// scraper profile
	mux.HandleFunc("/api/v1/users/web_profile_info/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != testHandle {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data":{"user":{"is_private":false,"edge_owner_to_timeline_media":{"edges":[
			{"node":{"id":"m1","edge_media_to_caption":{"edges":[{"node":{"text":"first"}}]},"edge_liked_by":{"count":10}}},
			{"node":{"id":"m2","edge_media_to_caption":{"edges":[{"node":{"text":"second"}}]},"edge_liked_by":{"count":20}}}
		]}}}}`)
	})
	// scraper comments
	mux.HandleFunc("/api/v1/media/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"comments":[
			{"text":"nice","user":{"username":"someone_else"}},
			{"text":"love it","user":{"username":"target_user"}}
		]}`)
	})
	// graph media edge
	mux.HandleFunc("/"+testHandle+"/media", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":[
			{"caption":"first","like_count":10,"comments":{"data":[
				{"text":"nice","username":"someone_else"},
				{"text":"love it","username":"target_user"}
			]}},
			{"caption":"second","like_count":20,"comments":{"data":[]}}
		]}`)
	})
	// public web profile
	mux.HandleFunc("/"+testHandle+"/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"graphql":{"user":{"is_private":false,"edge_owner_to_timeline_media":{"edges":[
			{"node":{"edge_media_to_caption":{"edges":[{"node":{"text":"first"}}]},"edge_liked_by":{"count":10},
				"edge_media_to_parent_comment":{"edges":[{"node":{"text":"nice"}},{"node":{"text":"love it"}}]}}},
			{"node":{"edge_media_to_caption":{"edges":[{"node":{"text":"second"}}]},"edge_liked_by":{"count":20},
				"edge_media_to_parent_comment":{"edges":[]}}}
		]}}}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testStrategies(t *testing.T, baseURL string) map[string]Strategy {
	t.Helper()
	cfg := Config{BaseURL: baseURL, SessionID: "sess", AccessToken: "tok", UserAgent: "safepost-test", CommentLimit: 10}
	return map[string]Strategy{
		"scraper": newScraperClient(cfg),
		"graph":   newGraphClient(cfg),
		"public":  newPublicClient(cfg),
	}
}

// TestStrategyContract runs the shared contract over every variant: posts
// come back in upstream order, bounded by limit, with non-negative likes.
func TestStrategyContract(t *testing.T) {
	srv := newUpstream(t)

	for name, strat := range testStrategies(t, srv.URL) {
		t.Run(name, func(t *testing.T) {
			posts, err := strat.FetchRecentActivity(context.Background(), testHandle, 5)
			require.NoError(t, err)
			require.Len(t, posts, 2)
			require.Equal(t, "first", posts[0].Caption)
			require.Equal(t, "second", posts[1].Caption)
			require.Equal(t, 10, posts[0].LikeCount)
			require.Equal(t, 20, posts[1].LikeCount)
		})
	}
}

func TestStrategyContract_LimitBound(t *testing.T) {
	srv := newUpstream(t)

	for name, strat := range testStrategies(t, srv.URL) {
		t.Run(name, func(t *testing.T) {
			posts, err := strat.FetchRecentActivity(context.Background(), testHandle, 1)
			require.NoError(t, err)
			require.Len(t, posts, 1)
			require.Equal(t, "first", posts[0].Caption)
		})
	}
}

// The comment identity semantics differ per variant on purpose: graph keeps
// only the target's own comments, scraper and public keep the whole sample.
func TestStrategyCommentSemantics(t *testing.T) {
	srv := newUpstream(t)
	strategies := testStrategies(t, srv.URL)

	t.Run("graph filters by target author", func(t *testing.T) {
		posts, err := strategies["graph"].FetchRecentActivity(context.Background(), testHandle, 5)
		require.NoError(t, err)
		require.Equal(t, []string{"love it"}, posts[0].CommentTexts)
	})

	for _, name := range []string{"scraper", "public"} {
		t.Run(name+" keeps all authors", func(t *testing.T) {
			posts, err := strategies[name].FetchRecentActivity(context.Background(), testHandle, 5)
			require.NoError(t, err)
			require.Equal(t, []string{"nice", "love it"}, posts[0].CommentTexts)
		})
	}
}

func TestStrategyContract_UpstreamFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	for name, strat := range testStrategies(t, broken.URL) {
		t.Run(name, func(t *testing.T) {
			_, err := strat.FetchRecentActivity(context.Background(), testHandle, 5)
			require.Error(t, err)
		})
	}
}

func TestStrategyContract_MalformedResponse(t *testing.T) {
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	t.Cleanup(garbage.Close)

	for name, strat := range testStrategies(t, garbage.URL) {
		t.Run(name, func(t *testing.T) {
			_, err := strat.FetchRecentActivity(context.Background(), testHandle, 5)
			require.Error(t, err)
		})
	}
}

func TestAdapterAbsorbsFailures(t *testing.T) {
	mock := NewMock()
	mock.Err = errors.New("rate limited")
	adapter := NewAdapter(mock, zerolog.Nop())

	posts := adapter.Fetch(context.Background(), testHandle, 5)
	if posts != nil {
		t.Fatalf("expected empty window on failure, got %v", posts)
	}
	if mock.Calls() != 1 {
		t.Fatalf("calls = %d, want 1", mock.Calls())
	}
}

func TestAdapterClampsNegativeLikes(t *testing.T) {
	mock := NewMock()
	mock.Posts = []RawPost{{Caption: "x", LikeCount: -3}}
	adapter := NewAdapter(mock, zerolog.Nop())

	posts := adapter.Fetch(context.Background(), testHandle, 5)
	require.Len(t, posts, 1)
	require.Equal(t, 0, posts[0].LikeCount)
}

// The clamp must never write through to the window a strategy returned:
// with the cache in front that slice is shared by every request for the
// same handle, and concurrent fetches would race on its backing array.
func TestAdapterDoesNotMutateCachedWindow(t *testing.T) {
	mock := NewMock()
	mock.Posts = []RawPost{{Caption: "x", LikeCount: -3}}
	cached := newCachedStrategy(mock, 8, time.Minute)
	adapter := NewAdapter(cached, zerolog.Nop())

	// Warm the cache, then fetch concurrently against the shared window.
	adapter.Fetch(context.Background(), testHandle, 5)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts := adapter.Fetch(context.Background(), testHandle, 5)
			if len(posts) != 1 || posts[0].LikeCount != 0 {
				t.Errorf("fetched window = %v, want one post with 0 likes", posts)
			}
		}()
	}
	wg.Wait()

	// The cached window and the mock's fixture still carry the raw value.
	cachedPosts, err := cached.FetchRecentActivity(context.Background(), testHandle, 5)
	require.NoError(t, err)
	require.Equal(t, -3, cachedPosts[0].LikeCount)
	require.Equal(t, -3, mock.Posts[0].LikeCount)
}

func TestCachedStrategy(t *testing.T) {
	mock := NewMock()
	mock.Posts = []RawPost{{Caption: "cached", LikeCount: 1}}
	cached := newCachedStrategy(mock, 8, time.Minute)

	for i := 0; i < 3; i++ {
		posts, err := cached.FetchRecentActivity(context.Background(), testHandle, 5)
		require.NoError(t, err)
		require.Len(t, posts, 1)
	}
	if mock.Calls() != 1 {
		t.Fatalf("upstream calls = %d, want 1 (cache miss only once)", mock.Calls())
	}

	// Failures must not be cached.
	failing := NewMock()
	failing.Err = errors.New("boom")
	cached = newCachedStrategy(failing, 8, time.Minute)
	for i := 0; i < 2; i++ {
		_, err := cached.FetchRecentActivity(context.Background(), testHandle, 5)
		require.Error(t, err)
	}
	require.Equal(t, 2, failing.Calls())
}

func TestNewSelectsStrategy(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr string
	}{
		{Config{Mode: "scraper"}, ""},
		{Config{Mode: "public"}, ""},
		{Config{Mode: "mock"}, ""},
		{Config{Mode: "graph"}, "access token"},
		{Config{Mode: "graph", AccessToken: "tok"}, ""},
		{Config{Mode: "carrier-pigeon"}, "unknown mode"},
	}
	for _, tt := range tests {
		_, err := New(tt.cfg, zerolog.Nop())
		if tt.wantErr == "" {
			require.NoError(t, err, "mode %q", tt.cfg.Mode)
			continue
		}
		require.Error(t, err, "mode %q", tt.cfg.Mode)
		require.True(t, strings.Contains(err.Error(), tt.wantErr), "err = %v", err)
	}
}
