// Package promptgen renders the instruction blocks sent to the model. Two
// templates exist: a general sentiment read of the post itself, and a
// peer-risk assessment that embeds the target's recent activity summary.
// Rendering is deterministic and always interpolates the caption and target
// handle verbatim, so distinct requests never collide on the same prompt.
package promptgen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"safepost/internal/interactions"
)

// Dialect picks which reply shape the peer-risk template demands. The
// parser downstream understands all of them; the dialect only controls what
// we ask for.
type Dialect string

const (
	DialectKoreanJSON  Dialect = "korean_json"
	DialectEnglishJSON Dialect = "english_json"
	DialectPlainText   Dialect = "plain_text"
)

// Compiler renders prompts for one configured dialect.
type Compiler struct {
	dialect Dialect
}

func New(dialect Dialect) (*Compiler, error) {
	switch dialect {
	case DialectKoreanJSON, DialectEnglishJSON, DialectPlainText:
		return &Compiler{dialect: dialect}, nil
	case "":
		return &Compiler{dialect: DialectKoreanJSON}, nil
	}
	return nil, fmt.Errorf("promptgen: unknown dialect %q", dialect)
}

func (c *Compiler) Dialect() Dialect { return c.dialect }

// General renders the sentiment-analysis template. The template forbids
// refusal and demands the answer shape even on low-information images.
func (c *Compiler) General(caption string) string {
	var buf bytes.Buffer
	buf.WriteString("너는 인스타그램 감성 분석 도우미야.\n\n")
	buf.WriteString("아래 게시물(이미지+캡션)을 분석해.\n\n")
	buf.WriteString("반드시 다음 3가지를 생성해야 해:\n")
	buf.WriteString("1. 사람들이 싫어하지 않을 확률 (0~100 숫자만)\n")
	buf.WriteString("2. 위험도에 대한 짧고 구체적인 경고 메시지\n")
	buf.WriteString("3. 개선을 위한 짧고 구체적인 추천 메시지\n\n")
	buf.WriteString("절대로 분석을 거부하거나 \"분석할 수 없다\"고 답하지 마. ")
	buf.WriteString("이미지에 정보가 부족해도 반드시 아래 포맷 그대로 답해.\n\n")
	buf.WriteString("응답 포맷:\n")
	buf.WriteString("싫어하지 않을 확률: (숫자)%\n")
	buf.WriteString("경고: (경고 문구)\n")
	buf.WriteString("추천: (추천 문구)\n\n")
	fmt.Fprintf(&buf, "캡션: %s\n", caption)
	return buf.String()
}

// PeerRisk renders the risk-assessment template for one named viewer,
// embedding their activity summary verbatim.
func (c *Compiler) PeerRisk(handle, caption string, sum interactions.Summary) string {
	var buf bytes.Buffer
	buf.WriteString("너는 인스타 지인 리스크 평가 전문가야.\n\n")
	fmt.Fprintf(&buf, "아래는 대상 지인(%s)의 최근 활동 내역이야:\n", handle)
	fmt.Fprintf(&buf, "- 최근 게시물 요약: %s\n", renderList(sum.RecentPostExcerpts))
	fmt.Fprintf(&buf, "- 평균 좋아요 수: %d\n", sum.AverageLikes)
	fmt.Fprintf(&buf, "- 지인이 단 최근 댓글 예시: %s\n\n", renderList(sum.SampleCommentTexts))
	buf.WriteString("아래 게시물(이미지+캡션)에 대해:\n")
	buf.WriteString("1) 싫어할 확률(0~100)%,\n")
	buf.WriteString("2) 민감 포인트,\n")
	buf.WriteString("3) 공개 범위 추천\n\n")
	buf.WriteString(peerRiskFormats[c.dialect])
	fmt.Fprintf(&buf, "\n캡션: %s\n", caption)
	return buf.String()
}

// peerRiskFormats holds the reply-shape instruction per dialect.
var peerRiskFormats = map[Dialect]string{
	DialectKoreanJSON: `응답 포맷(JSON):
{
  "risk_assessment": "싫어할 확률: X%",
  "sensitive_points": ["포인트1", "포인트2"],
  "visibility_recommendation": "public|private|close_friends"
}
`,
	DialectEnglishJSON: `Respond with JSON only, in exactly this shape:
{
  "probability": <integer 0-100>,
  "warning": "<short warning>",
  "recommendation": "<short recommendation>",
  "sensitive_points": ["<point>", "..."],
  "visibility_recommendation": "public|private|close_friends"
}
`,
	DialectPlainText: `응답 포맷(텍스트, 각 줄에 하나씩):
싫어할 확률: (숫자)%
민감 포인트: (쉼표로 구분)
공개범위 추천: public|private|close_friends
`,
}

// renderList shows a JSON-style list, or the original's "없음" marker when
// there is nothing to show.
func renderList(items []string) string {
	if len(items) == 0 {
		return "없음"
	}
	b, _ := json.Marshal(items)
	return string(b)
}
