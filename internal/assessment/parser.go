// Package assessment normalizes free-form model replies into one canonical
// Result. The reply dialect is not stable across prompt configurations
// (Korean-keyed JSON, English-keyed JSON, labeled plain text, occasionally
// prose), so extraction runs as a series of attempts over data-driven label
// tables rather than trusting any single shape.
package assessment

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fieldKind identifies which Result field a matched label feeds.
type fieldKind int

const (
	fieldProbability fieldKind = iota
	fieldVisibility
	fieldSensitive
	fieldWarning
	fieldRecommendation
)

// labelRule maps a label keyword (matched case-insensitively inside the part
// of a line before the colon) to a result field. Order matters: the first
// matching rule wins, so more specific labels come first. "공개범위" must be
// checked before "추천" because lines like "공개범위 추천: 비공개" carry both.
type labelRule struct {
	keyword string
	kind    fieldKind
}

var lineLabels = []labelRule{
	{"확률", fieldProbability},
	{"probability", fieldProbability},
	{"공개범위", fieldVisibility},
	{"공개 범위", fieldVisibility},
	{"visibility", fieldVisibility},
	{"민감", fieldSensitive},
	{"sensitive", fieldSensitive},
	{"경고", fieldWarning},
	{"warning", fieldWarning},
	{"추천", fieldRecommendation},
	{"recommendation", fieldRecommendation},
}

// JSON key synonyms per field, in lookup order.
var (
	jsonProbabilityKeys    = []string{"risk_assessment", "probability", "확률", "위험도"}
	jsonSensitiveKeys      = []string{"sensitive_points", "민감 포인트", "민감포인트"}
	jsonVisibilityKeys     = []string{"visibility_recommendation", "visibility", "공개범위", "공개 범위"}
	jsonWarningKeys        = []string{"warning", "경고"}
	jsonRecommendationKeys = []string{"recommendation", "추천"}
)

// visibilitySynonyms lists accepted spellings, in either language, for the
// canonical enum. Matching is case-insensitive; the table is ordered so that
// a containment scan over free text stays deterministic. New dialects are
// added here, not in code.
var visibilitySynonyms = []struct {
	token string
	vis   Visibility
}{
	{"close_friends", VisibilityCloseFriends},
	{"close friends", VisibilityCloseFriends},
	{"친구공개", VisibilityCloseFriends},
	{"친한 친구", VisibilityCloseFriends},
	{"private", VisibilityPrivate},
	{"비공개", VisibilityPrivate},
	{"public", VisibilityPublic},
	{"전체공개", VisibilityPublic},
	{"전체 공개", VisibilityPublic},
}

// percentRe captures an integer immediately followed by a percent sign.
var percentRe = regexp.MustCompile(`(\d+)%`)

// Parse converts a raw model reply into a Result. It never fails: when no
// recognizable structure exists the Result carries ParseUnparseable and the
// untouched raw reply. Attempts run in order (strict JSON, labeled lines),
// first success wins.
func Parse(mode Mode, raw string) *Result {
	res := &Result{RawReply: raw, ParseStatus: ParseUnparseable}

	if fields, ok := parseJSONReply(raw); ok {
		fields.apply(mode, res)
		return res
	}
	if fields, ok := parseLabeledLines(raw); ok {
		fields.apply(mode, res)
		return res
	}
	return res
}

// extracted accumulates fields recovered by one attempt before they are
// committed to a Result.
type extracted struct {
	probability    *int
	warning        string
	recommendation string
	sensitive      []string
	visibility     Visibility
}

func (e *extracted) any() bool {
	return e.probability != nil || e.warning != "" || e.recommendation != "" ||
		len(e.sensitive) > 0 || e.visibility != ""
}

func (e *extracted) apply(mode Mode, res *Result) {
	if e.probability != nil {
		if mode == ModePeerRisk {
			res.WillDislikeProbability = e.probability
		} else {
			res.WontDislikeProbability = e.probability
		}
		res.ParseStatus = ParseStructured
	} else {
		res.ParseStatus = ParsePartial
	}
	res.Warning = e.warning
	res.Recommendation = e.recommendation
	res.SensitivePoints = e.sensitive
	res.Visibility = e.visibility
}

// -------- Attempt 1: strict JSON --------

func parseJSONReply(raw string) (*extracted, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &obj); err != nil {
		return nil, false
	}

	e := &extracted{}
	if v, ok := lookup(obj, jsonProbabilityKeys); ok {
		e.probability = probabilityFromValue(v)
	}
	if v, ok := lookup(obj, jsonSensitiveKeys); ok {
		e.sensitive = stringListFromValue(v)
	}
	if v, ok := lookup(obj, jsonVisibilityKeys); ok {
		if s, ok := v.(string); ok {
			e.visibility = visibilityFromText(s)
		}
	}
	if v, ok := lookup(obj, jsonWarningKeys); ok {
		if s, ok := v.(string); ok {
			e.warning = strings.TrimSpace(s)
		}
	}
	if v, ok := lookup(obj, jsonRecommendationKeys); ok {
		if s, ok := v.(string); ok {
			e.recommendation = strings.TrimSpace(s)
		}
	}

	if !e.any() {
		// Valid JSON but none of the known keys: let the line scan have a go.
		return nil, false
	}
	return e, true
}

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// stripCodeFence unwraps a reply fenced as a markdown code block, which
// models frequently produce even when asked for bare JSON.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.Index(t, "\n"); i >= 0 {
		t = t[i+1:] // drop the language tag line
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// -------- Attempt 2: labeled lines --------

func parseLabeledLines(raw string) (*extracted, bool) {
	e := &extracted{}
	for _, line := range strings.Split(raw, "\n") {
		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}
		kind, ok := matchLabel(label)
		if !ok {
			continue
		}
		switch kind {
		case fieldProbability:
			if e.probability == nil {
				e.probability = probabilityFromText(value)
			}
		case fieldVisibility:
			if e.visibility == "" {
				e.visibility = visibilityFromText(value)
			}
		case fieldSensitive:
			if len(e.sensitive) == 0 {
				e.sensitive = splitList(value)
			}
		case fieldWarning:
			if e.warning == "" {
				e.warning = strings.TrimSpace(value)
			}
		case fieldRecommendation:
			if e.recommendation == "" {
				e.recommendation = strings.TrimSpace(value)
			}
		}
	}
	if !e.any() {
		return nil, false
	}
	return e, true
}

// splitLabel cuts a line at the first colon (ASCII or fullwidth) into a label
// part and a value part.
func splitLabel(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(line)
	for _, sep := range []string{":", "："} {
		if i := strings.Index(line, sep); i >= 0 {
			return line[:i], strings.TrimSpace(line[i+len(sep):]), true
		}
	}
	return "", "", false
}

func matchLabel(label string) (fieldKind, bool) {
	l := strings.ToLower(label)
	for _, rule := range lineLabels {
		if strings.Contains(l, rule.keyword) {
			return rule.kind, true
		}
	}
	return 0, false
}

// -------- Field extraction helpers --------

// probabilityFromText pulls the first integer-percent match out of text.
// Values above 100 are discarded, never clamped.
func probabilityFromText(text string) *int {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
		if n > 100 {
			return nil
		}
	}
	return &n
}

// probabilityFromValue handles both dialects seen in JSON replies: a string
// containing "N%" and a bare JSON number.
func probabilityFromValue(v any) *int {
	switch x := v.(type) {
	case string:
		return probabilityFromText(x)
	case float64:
		n := int(x)
		if float64(n) != x || n < 0 || n > 100 {
			return nil
		}
		return &n
	}
	return nil
}

func visibilityFromText(text string) Visibility {
	t := strings.ToLower(strings.TrimSpace(text))
	// Containment rather than equality tolerates surrounding words, e.g.
	// "비공개로 전환" or "keep it private".
	for _, syn := range visibilitySynonyms {
		if strings.Contains(t, syn.token) {
			return syn.vis
		}
	}
	return ""
}

func stringListFromValue(v any) []string {
	switch x := v.(type) {
	case []any:
		var out []string
		for _, item := range x {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		return splitList(x)
	}
	return nil
}

// splitList splits semicolon- or comma-separated free text into items.
func splitList(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == ',' || r == '、'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
