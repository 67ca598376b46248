package llmclient

// ChatRequest describes one streaming chat-completion call.
type ChatRequest struct {
	Endpoint     string // chat-completions URL
	Model        string
	Credential   string
	SystemPrompt string
	UserMessage  string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatBody struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

func newChatBody(req ChatRequest) chatBody {
	return chatBody{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserMessage},
		},
		Temperature: 0.3,
		MaxTokens:   4096,
		Stream:      true,
	}
}

type streamDelta struct {
	ReasoningContent string `json:"reasoning_content"`
	Thinking         string `json:"thinking"`
	Content          string `json:"content"`
}

type streamChoice struct {
	Delta streamDelta `json:"delta"`
}

type streamPayload struct {
	Choices []streamChoice `json:"choices"`
}
