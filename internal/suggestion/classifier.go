package suggestion

type ResponseLength string

const (
	ResponseShort  ResponseLength = "short"
	ResponseMedium ResponseLength = "medium"
	ResponseLong   ResponseLength = "long"
)

type Tone string

const (
	ToneCasual  Tone = "casual"
	ToneNeutral Tone = "neutral"
	ToneFormal  Tone = "formal"
)

const QuietHoursDuration = 6

const (
	shortBelowLen     = 60
	longAboveLen      = 180
	casualMinExclaim  = 0.6
	casualBelowLen    = 160
	formalBelowExclam = 0.15
	formalAboveLen    = 200
)

type QuietHours struct {
	Start    int `json:"start"`
	Duration int `json:"duration"`
}

type Set struct {
	ResponseLength   ResponseLength `json:"responseLength"`
	Tone             Tone           `json:"tone"`
	TopHours         []int          `json:"topHours"`
	QuietHours       QuietHours     `json:"quietHours"`
	TypingIndicators bool           `json:"typingIndicators"`
}

// Keys lists the profile data keys a Set writes when merged.
var Keys = []string{"responseLength", "tone", "topHours", "quietHours", "typingIndicators"}

func Classify(m Metrics) Set {
	topHours := m.TopHours
	if topHours == nil {
		topHours = []int{}
	}
	return Set{
		ResponseLength:   classifyLength(m.Messages, m.AvgLen),
		Tone:             classifyTone(m.AvgLen, m.ExclamAvg),
		TopHours:         topHours,
		QuietHours:       QuietHours{Start: m.QuietStart, Duration: QuietHoursDuration},
		TypingIndicators: true,
	}
}

// classifyLength keeps medium for an empty history, where avgLen is 0 by
// definition rather than observed.
func classifyLength(messages int, avgLen float64) ResponseLength {
	switch {
	case messages == 0:
		return ResponseMedium
	case avgLen < shortBelowLen:
		return ResponseShort
	case avgLen > longAboveLen:
		return ResponseLong
	default:
		return ResponseMedium
	}
}

func classifyTone(avgLen, exclamAvg float64) Tone {
	switch {
	case exclamAvg >= casualMinExclaim && avgLen < casualBelowLen:
		return ToneCasual
	case exclamAvg < formalBelowExclam && avgLen > formalAboveLen:
		return ToneFormal
	default:
		return ToneNeutral
	}
}

// AsData renders the set as profile data entries, one per key in Keys.
func (s Set) AsData() map[string]any {
	topHours := make([]any, 0, len(s.TopHours))
	for _, hour := range s.TopHours {
		topHours = append(topHours, hour)
	}
	return map[string]any{
		"responseLength": string(s.ResponseLength),
		"tone":           string(s.Tone),
		"topHours":       topHours,
		"quietHours": map[string]any{
			"start":    s.QuietHours.Start,
			"duration": s.QuietHours.Duration,
		},
		"typingIndicators": s.TypingIndicators,
	}
}
