package dto

// PrefillRequest carries the admin's current reply draft.
type PrefillRequest struct {
	Draft string `json:"draft"`
}

// SuggestionResponse wraps generated text.
type SuggestionResponse struct {
	Text string `json:"text"`
}
