package promptgen

import (
	"strings"
	"testing"

	"safepost/internal/interactions"
)

func TestGeneral_InterpolatesCaptionVerbatim(t *testing.T) {
	c, err := New(DialectKoreanJSON)
	if err != nil {
		t.Fatal(err)
	}
	caption := "주말 한강 피크닉 🧺 #소확행"
	out := c.General(caption)

	if !strings.Contains(out, "캡션: "+caption) {
		t.Fatalf("caption not interpolated verbatim:\n%s", out)
	}
	if !strings.Contains(out, "싫어하지 않을 확률") {
		t.Fatalf("general template missing probability line")
	}
	// The refusal prohibition is part of the contract with the parser.
	if !strings.Contains(out, "거부") {
		t.Fatalf("general template missing refusal prohibition")
	}
}

func TestGeneral_Deterministic(t *testing.T) {
	c, _ := New(DialectPlainText)
	if c.General("x") != c.General("x") {
		t.Fatalf("same input produced different prompts")
	}
	if c.General("x") == c.General("y") {
		t.Fatalf("distinct captions collided on identical prompts")
	}
}

func TestPeerRisk_EmbedsSummaryAndIdentity(t *testing.T) {
	c, _ := New(DialectKoreanJSON)
	sum := interactions.Summary{
		RecentPostExcerpts: []string{"등산 다녀옴", "카페 투어"},
		AverageLikes:       42,
		SampleCommentTexts: []string{"ㅋㅋㅋ", "좋아요"},
		SampleSize:         2,
	}
	out := c.PeerRisk("friend_kim", "회식 사진", sum)

	for _, want := range []string{"friend_kim", "회식 사진", "등산 다녀옴", "카페 투어", "42", "ㅋㅋㅋ"} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestPeerRisk_EmptySummaryShowsMarker(t *testing.T) {
	c, _ := New(DialectKoreanJSON)
	out := c.PeerRisk("ghost", "caption", interactions.Summary{})
	if !strings.Contains(out, "없음") {
		t.Fatalf("empty activity should render the 없음 marker:\n%s", out)
	}
}

func TestPeerRisk_DistinctTargetsNeverCollide(t *testing.T) {
	c, _ := New(DialectKoreanJSON)
	sum := interactions.Summary{}
	if c.PeerRisk("alice", "same caption", sum) == c.PeerRisk("bob", "same caption", sum) {
		t.Fatalf("distinct targets collided on identical prompts")
	}
}

func TestPeerRisk_DialectFormats(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectKoreanJSON, `"risk_assessment"`},
		{DialectEnglishJSON, `"probability"`},
		{DialectPlainText, "싫어할 확률: (숫자)%"},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			c, err := New(tt.dialect)
			if err != nil {
				t.Fatal(err)
			}
			out := c.PeerRisk("h", "c", interactions.Summary{})
			if !strings.Contains(out, tt.want) {
				t.Fatalf("dialect %s missing %q:\n%s", tt.dialect, tt.want, out)
			}
		})
	}
}

func TestNew_DefaultsAndRejects(t *testing.T) {
	c, err := New("")
	if err != nil || c.Dialect() != DialectKoreanJSON {
		t.Fatalf("default dialect = %v, err = %v", c.Dialect(), err)
	}
	if _, err := New("interpretive_dance"); err == nil {
		t.Fatalf("unknown dialect accepted")
	}
}
