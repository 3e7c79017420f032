package dto

// PerplexityRequest is the chat-completions payload for the commentary model.
type PerplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []PerplexityMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type PerplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type PerplexityResponse struct {
	Choices []PerplexityChoice `json:"choices"`
}

type PerplexityChoice struct {
	Message PerplexityMessage `json:"message"`
}
