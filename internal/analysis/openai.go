package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// analysisSchema constrains the completion to the CallAnalysis shape. The
// interested enum is enforced model-side and re-checked by the Analyzer.
var analysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary": map[string]any{
			"type":        "string",
			"description": "A concise summary highlighting the key talking points and interactions during the call.",
		},
		"interested": map[string]any{
			"type": "string",
			"enum": []string{"Interested", "Not Interested", "Undecided"},
		},
		"justification": map[string]any{
			"type":        []string{"string", "null"},
			"description": "Justification for the interest evaluation, providing context from the call transcript.",
		},
	},
	"required":             []string{"summary", "interested", "justification"},
	"additionalProperties": false,
}

// OpenAIClient implements Completer against the chat-completions API with a
// pinned JSON schema response format. Transport failures and 5xx/429
// responses are retried with exponential backoff; schema-level failures are
// the Analyzer's problem, not retried here.
type OpenAIClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewOpenAIClient creates a chat-completions client.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		BaseURL: defaultOpenAIBaseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat any           `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs one structured completion and returns the message content.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userMessage string) ([]byte, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: 0.0,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "call_analysis",
				"strict": true,
				"schema": analysisSchema,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	var content []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("completion server error %d: %s", resp.StatusCode, string(body))
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("completion failed with status %d: %s", resp.StatusCode, string(body)))
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("unreadable completion response: %w", err))
		}
		if len(parsed.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("completion response has no choices"))
		}
		content = []byte(parsed.Choices[0].Message.Content)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 45 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return content, nil
}
