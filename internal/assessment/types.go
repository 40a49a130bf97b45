package assessment

// Mode selects which judgment the pipeline asks for and therefore how the
// extracted probability is named in the result.
type Mode string

const (
	// ModeGeneral asks for a general sentiment read of the post itself.
	ModeGeneral Mode = "general"
	// ModePeerRisk asks how a specific named viewer is likely to react.
	ModePeerRisk Mode = "peer_risk"
)

// ParseStatus reports how much structure could be recovered from the model
// reply. Unparseable is not an error: the raw reply is still returned.
type ParseStatus string

const (
	ParseStructured  ParseStatus = "structured"
	ParsePartial     ParseStatus = "partial"
	ParseUnparseable ParseStatus = "unparseable"
)

// Visibility is the recommended audience for the post under review.
type Visibility string

const (
	VisibilityPublic       Visibility = "public"
	VisibilityPrivate      Visibility = "private"
	VisibilityCloseFriends Visibility = "close_friends"
)

// Result is the canonical record extracted from one model reply.
//
// The two probability fields deliberately stay separate: the general template
// asks for the probability that viewers will NOT dislike the post, while the
// peer-risk template asks for the probability that the target WILL dislike it.
// The polarities are inverted and must not be collapsed into one field.
// At most one of them is set, according to the mode the reply was parsed in.
type Result struct {
	WontDislikeProbability *int `json:"wont_dislike_probability,omitempty"`
	WillDislikeProbability *int `json:"will_dislike_probability,omitempty"`

	Warning        string `json:"warning,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`

	// Peer-risk mode only.
	SensitivePoints []string   `json:"sensitive_points,omitempty"`
	Visibility      Visibility `json:"visibility_recommendation,omitempty"`

	ParseStatus ParseStatus `json:"parse_status"`
	// RawReply always carries the model's unmodified reply so a human can
	// still read it when extraction came up short.
	RawReply string `json:"raw_reply"`
}

// Probability returns whichever probability field is set.
func (r *Result) Probability() (int, bool) {
	switch {
	case r.WillDislikeProbability != nil:
		return *r.WillDislikeProbability, true
	case r.WontDislikeProbability != nil:
		return *r.WontDislikeProbability, true
	}
	return 0, false
}
