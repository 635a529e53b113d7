package dto

// AdviceRequest asks the AI advisor a free-form question.
type AdviceRequest struct {
	Prompt string `json:"prompt"`
}

// AdviceResponse carries the generated advice text.
type AdviceResponse struct {
	Advice string `json:"advice"`
}
