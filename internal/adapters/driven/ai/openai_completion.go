package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Ensure OpenAICompletion implements CompletionService
var _ driven.CompletionService = (*OpenAICompletion)(nil)

const answerSystemPrompt = `You are a helpdesk assistant. Answer the user's question using ONLY the provided context excerpts. If the context does not contain the answer, say so plainly.
Respond with a single JSON object with these fields:
  "summary": one or two sentences answering the question
  "details": a longer explanation (optional)
  "action_required": what the user should do next (optional)
  "contact_info": who to contact if escalation is needed (optional)
  "related_policies": array of policy names mentioned in the context (optional)
Return only the JSON object, no surrounding text.`

// OpenAICompletion implements CompletionService using OpenAI's chat API.
// It is the single place where raw model output is parsed into domain.Answer.
type OpenAICompletion struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewOpenAICompletion creates a new OpenAI completion service
func NewOpenAICompletion(apiKey, model, baseURL string, timeout time.Duration) (driven.CompletionService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	return &OpenAICompletion{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// chatMessage is one message in a chat completion request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for OpenAI chat completions
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the response from OpenAI chat completions
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// answerPayload is the JSON shape the model is instructed to produce
type answerPayload struct {
	Summary         string   `json:"summary"`
	Details         string   `json:"details"`
	ActionRequired  string   `json:"action_required"`
	ContactInfo     string   `json:"contact_info"`
	RelatedPolicies []string `json:"related_policies"`
}

// Complete answers a query using the given chunks as context. Deadline
// overruns map to domain.ErrCompletionTimeout, everything else to
// domain.ErrCompletionProvider; the caller decides whether to degrade.
func (c *OpenAICompletion) Complete(ctx context.Context, query string, chunks []*domain.RetrievedChunk) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: buildUserPrompt(query, chunks)},
		},
		Temperature:    0.2,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	resp, err := c.doRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", domain.ErrCompletionProvider)
	}

	var payload answerPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("%w: parsing answer JSON: %v", domain.ErrCompletionProvider, err)
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return nil, fmt.Errorf("%w: model returned an empty summary", domain.ErrCompletionProvider)
	}

	answer := &domain.Answer{
		ResponseType:    domain.ResponseTypeAnswer,
		Summary:         payload.Summary,
		Details:         payload.Details,
		ActionRequired:  payload.ActionRequired,
		ContactInfo:     payload.ContactInfo,
		RelatedPolicies: payload.RelatedPolicies,
		CreatedAt:       time.Now(),
	}
	for _, rc := range chunks {
		answer.Sources = append(answer.Sources, domain.AnswerSource{
			DocumentID: rc.Chunk.DocumentID,
			ChunkIndex: rc.Chunk.Index,
			Score:      rc.Score,
		})
	}

	return answer, nil
}

// Model returns the model name being used
func (c *OpenAICompletion) Model() string {
	return c.model
}

// Ping verifies the completion service is available
func (c *OpenAICompletion) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models/"+c.model, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCompletionProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: model %s returned status %d", domain.ErrCompletionProvider, c.model, resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the completion service
func (c *OpenAICompletion) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// buildUserPrompt assembles the question with its numbered context excerpts.
func buildUserPrompt(query string, chunks []*domain.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Context excerpts:\n\n")
	for i, rc := range chunks {
		fmt.Fprintf(&b, "[%d] (document %s)\n%s\n\n", i+1, rc.Chunk.DocumentID, rc.Chunk.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}

// doRequest makes a request to the OpenAI chat completions API
func (c *OpenAICompletion) doRequest(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: completion request after %s: %v", domain.ErrCompletionTimeout, c.timeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrCompletionProvider, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", domain.ErrCompletionProvider, err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("%w: %s (type: %s, code: %s)",
			domain.ErrCompletionProvider, chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrCompletionProvider, resp.StatusCode)
	}

	return &chatResp, nil
}
