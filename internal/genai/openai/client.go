// Package openai implements genai.Generator against the OpenAI chat
// completions API.
package openai

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

// Client calls the OpenAI chat completions endpoint for a fixed model.
type Client struct {
	client      *resty.Client
	model       string
	temperature float64
}

// New creates a Client against baseURL (e.g. https://api.openai.com/v1).
func New(baseURL, apiKey, chatModel string, temperature float64) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetTimeout(2 * time.Minute)

	return &Client{client: c, model: chatModel, temperature: temperature}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string    `json:"model"`
	Messages       []message `json:"messages"`
	Temperature    float64   `json:"temperature"`
	Stream         bool      `json:"stream,omitempty"`
	ResponseFormat any       `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string  `json:"content"`
			Refusal *string `json:"refusal,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// chat performs one non-streaming completion and returns the message text.
func (c *Client) chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if jsonMode {
		req.ResponseFormat = map[string]string{"type": "json_object"}
	}

	resp, err := c.client.R().SetContext(ctx).SetBody(&req).Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai chat request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("openai chat status %d: %s", resp.StatusCode(), resp.String())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("openai chat error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices returned")
	}
	if r := out.Choices[0].Message.Refusal; r != nil && *r != "" {
		return "", fmt.Errorf("openai chat refusal: %s", *r)
	}
	return out.Choices[0].Message.Content, nil
}

// chatStream performs a streaming completion, forwarding each delta to
// onFragment, and returns the assembled text.
func (c *Client) chatStream(ctx context.Context, system, user string, onFragment genai.FragmentFunc) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Stream:      true,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&req).
		SetDoNotParseResponse(true).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai chat stream request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("openai chat stream status %d", resp.StatusCode())
	}

	var assembled strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("decode stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		assembled.WriteString(fragment)
		if onFragment != nil {
			if err := onFragment(fragment); err != nil {
				return "", err
			}
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
