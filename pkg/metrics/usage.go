package metrics

// TokenUsage captures LLM token counts spent on an analysis.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Merge prefers reported usage but keeps the local estimate when the API
// returned nothing.
func Merge(reported, estimated TokenUsage) TokenUsage {
	if !reported.IsZero() {
		return reported
	}
	return estimated
}
