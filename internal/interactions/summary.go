// Package interactions reduces a window of raw posts into the compact
// summary that gets embedded into the peer-risk prompt. Pure data
// transformation: no I/O and no failure modes.
package interactions

import (
	"safepost/internal/source"
)

// Summary aggregates a user's recent activity window.
//
// AverageLikes is 0 both for "no posts fetched" and for a genuinely silent
// account; SampleSize is carried alongside so callers can tell the two
// apart.
type Summary struct {
	RecentPostExcerpts []string `json:"recent_post_excerpts"`
	AverageLikes       int      `json:"average_likes"`
	SampleCommentTexts []string `json:"sample_comment_texts"`
	SampleSize         int      `json:"sample_size"`
}

// Options bounds the reduction.
type Options struct {
	// ExcerptMaxLen truncates each caption to its first N characters.
	ExcerptMaxLen int
	// CommentSampleMax bounds the flattened comment sample across posts.
	CommentSampleMax int
}

const (
	DefaultExcerptMaxLen    = 100
	DefaultCommentSampleMax = 50
)

func (o Options) withDefaults() Options {
	if o.ExcerptMaxLen <= 0 {
		o.ExcerptMaxLen = DefaultExcerptMaxLen
	}
	if o.CommentSampleMax <= 0 {
		o.CommentSampleMax = DefaultCommentSampleMax
	}
	return o
}

// Build is deterministic: the same posts always produce the same summary.
// Post order is preserved in both the excerpts and the comment sample.
func Build(posts []source.RawPost, opts Options) Summary {
	opts = opts.withDefaults()

	sum := Summary{
		RecentPostExcerpts: make([]string, 0, len(posts)),
		SampleSize:         len(posts),
	}

	totalLikes := 0
	for _, p := range posts {
		sum.RecentPostExcerpts = append(sum.RecentPostExcerpts, Truncate(p.Caption, opts.ExcerptMaxLen))
		totalLikes += p.LikeCount
		for _, c := range p.CommentTexts {
			if len(sum.SampleCommentTexts) >= opts.CommentSampleMax {
				break
			}
			sum.SampleCommentTexts = append(sum.SampleCommentTexts, c)
		}
	}
	if len(posts) > 0 {
		sum.AverageLikes = totalLikes / len(posts)
	}
	return sum
}

// Truncate keeps the leading max characters of s. Characters, not bytes:
// captions are routinely Korean and a byte cut would split a rune.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
