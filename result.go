package imageedit

// SafetyCategory represents a content safety category.
type SafetyCategory string

const (
	SafetyCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	SafetyCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	SafetyCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	SafetyCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// SafetyThreshold represents the blocking threshold for safety filters.
type SafetyThreshold string

const (
	SafetyThresholdBlockNone      SafetyThreshold = "BLOCK_NONE"
	SafetyThresholdBlockLowAndUp  SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
	SafetyThresholdBlockMedAndUp  SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyThresholdBlockHighAndUp SafetyThreshold = "BLOCK_ONLY_HIGH"
)

// SafetySetting configures content filtering for a specific category.
type SafetySetting struct {
	Category  SafetyCategory  `yaml:"category"`
	Threshold SafetyThreshold `yaml:"threshold"`
}

// Request is one round trip: the current user message plus prior context.
type Request struct {
	// Message is the assembled turn being sent now.
	Message WireMessage

	// History holds prior turns only, already filtered.
	History []WireMessage

	// Config may be nil, in which case DefaultConfig applies.
	Config *GenerateConfig
}

// ImageCount returns the number of inline images in the current message.
func (r *Request) ImageCount() int {
	n := 0
	for _, p := range r.Message.Parts {
		if p.InlineData != nil {
			n++
		}
	}
	return n
}

// Response is the raw content returned by a provider.
type Response struct {
	// Parts of the first candidate, thought parts excluded.
	Parts []WirePart

	// Thinking contains the model's reasoning when thinking is enabled.
	Thinking string

	// UsageMetadata contains token/billing information
	UsageMetadata *UsageMetadata
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}
