// Package ollama implements genai.Generator against a local Ollama chat API.
package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/interviewkit/interview-assistant/internal/genai"
	"github.com/interviewkit/interview-assistant/internal/model"
)

// Client calls the Ollama chat endpoint for a fixed model.
type Client struct {
	client      *resty.Client
	model       string
	temperature float64
}

// New creates a Client against baseURL (e.g. http://localhost:11434).
func New(baseURL, chatModel string, temperature float64) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Minute)

	return &Client{client: c, model: chatModel, temperature: temperature}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message message `json:"message"`
	Error   string  `json:"error"`
	Done    bool    `json:"done"`
}

func (c *Client) chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	req := chatRequest{
		Model:   c.model,
		Stream:  false,
		Options: map[string]any{"temperature": c.temperature},
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if jsonMode {
		req.Format = "json"
	}

	resp, err := c.client.R().SetContext(ctx).SetBody(&req).Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama chat request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ollama chat status %d: %s", resp.StatusCode(), resp.String())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama chat error: %s", out.Error)
	}
	return out.Message.Content, nil
}

// chatStream reads the NDJSON stream Ollama emits, forwarding each message
// fragment to onFragment, and returns the assembled text.
func (c *Client) chatStream(ctx context.Context, system, user string, onFragment genai.FragmentFunc) (string, error) {
	req := chatRequest{
		Model:   c.model,
		Stream:  true,
		Options: map[string]any{"temperature": c.temperature},
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&req).
		SetDoNotParseResponse(true).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama chat stream request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ollama chat stream status %d", resp.StatusCode())
	}

	var assembled strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk chatResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("ollama chat error: %s", chunk.Error)
		}
		if fragment := chunk.Message.Content; fragment != "" {
			assembled.WriteString(fragment)
			if onFragment != nil {
				if err := onFragment(fragment); err != nil {
					return "", err
				}
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return assembled.String(), nil
}

func (c *Client) GenerateQuestion(ctx context.Context, req model.QuestionRequest, previous []string) (*model.QuestionContent, error) {
	raw, err := c.chat(ctx, genai.QuestionSystemPrompt, genai.QuestionPrompt(req, previous), true)
	if err != nil {
		return nil, err
	}
	return genai.ParseQuestionContent(raw)
}

func (c *Client) GenerateTip(ctx context.Context, question *model.Question, previous []string) (string, error) {
	tip, err := c.chat(ctx, genai.TipSystemPrompt, genai.TipPrompt(question, previous), false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tip), nil
}

func (c *Client) GenerateQuestionStream(ctx context.Context, req model.QuestionRequest, previous []string, onFragment genai.FragmentFunc) (*model.QuestionContent, error) {
	raw, err := c.chatStream(ctx, genai.QuestionSystemPrompt, genai.QuestionPrompt(req, previous), onFragment)
	if err != nil {
		return nil, err
	}
	return genai.ParseQuestionContent(raw)
}

func (c *Client) GenerateTipStream(ctx context.Context, question *model.Question, previous []string, onFragment genai.FragmentFunc) (string, error) {
	tip, err := c.chatStream(ctx, genai.TipSystemPrompt, genai.TipPrompt(question, previous), onFragment)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tip), nil
}

var _ genai.Generator = (*Client)(nil)
