package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.anthropic.com/v1/messages"

// Generator produces idea text through the Anthropic messages API.
type Generator struct {
	apiKey     string
	model      string
	httpClient *http.Client

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewGenerator creates a generator for the given API key and model.
func NewGenerator(apiKey, model string) *Generator {
	return &Generator{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		BaseURL:    defaultBaseURL,
	}
}

// Ideas asks for `count` short idea lines about a theme, framed by `framing`
// (e.g. "subgoals that advance the goal" or an Osborn lens prompt). The
// response is parsed as numbered lines.
func (g *Generator) Ideas(ctx context.Context, theme, framing string, count int) ([]string, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("assist API key is not configured")
	}

	prompt := fmt.Sprintf(`Theme: %s

Produce exactly %d %s.
Answer with one idea per line, numbered "1." through "%d.", nothing else.
Keep each idea under 15 words.`, theme, count, framing, count)

	text, err := g.callMessages(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ideas := parseNumberedLines(text)
	if len(ideas) == 0 {
		return nil, fmt.Errorf("no ideas in response")
	}
	if len(ideas) > count {
		ideas = ideas[:count]
	}
	return ideas, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *Generator) callMessages(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:     g.model,
		MaxTokens: 1024,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling messages API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("messages API error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("messages API returned status %d", resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response content")
	}

	return parsed.Content[0].Text, nil
}

func parseNumberedLines(text string) []string {
	var ideas []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Strip a leading "N." or "N)" marker.
		if idx := strings.IndexAny(line, ".)"); idx > 0 && idx <= 3 {
			if _, err := fmt.Sscanf(line[:idx], "%d", new(int)); err == nil {
				line = strings.TrimSpace(line[idx+1:])
			}
		}
		if line != "" {
			ideas = append(ideas, line)
		}
	}
	return ideas
}
