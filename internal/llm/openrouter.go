package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient implements the Client interface using OpenRouter's
// OpenAI-compatible API.
type OpenRouterClient struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenRouterClient creates a new OpenRouter client. The API key is read
// from OPENROUTER_KEY; a missing key is an error so the factory can fall back
// to running without inference.
func NewOpenRouterClient(model, baseURL string, maxTokens int) (*OpenRouterClient, error) {
	if model == "" {
		return nil, errors.New("openrouter model is required")
	}
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	apiKey := os.Getenv("OPENROUTER_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENROUTER_KEY is not set")
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithHeader("HTTP-Referer", "https://rocinante.local"),
		option.WithHeader("X-Title", "Rocinante"),
	)

	return &OpenRouterClient{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OpenRouterClient) Chat(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages and parses the response as JSON into the provided type.
func (c *OpenRouterClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}

	jsonContent := extractJSON(content)
	if err := json.Unmarshal([]byte(jsonContent), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

// toOpenAIMessages converts engine messages to the SDK's union type.
func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			out[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			out[i] = openai.AssistantMessage(msg.Content)
		default:
			out[i] = openai.UserMessage(msg.Content)
		}
	}
	return out
}
