package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	summarydomain "mailbrief-backend/internal/summary/domain"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"

	// maxSummaryTokens bounds the generation cost per summary call.
	maxSummaryTokens = 500
	// maxSummarySentences is the sentence budget given to the model.
	maxSummarySentences = 3
)

type Service struct {
	APIKey  string
	Model   string
	BaseURL string

	httpClient *http.Client
}

func NewService(apiKey, model string) *Service {
	return &Service{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SummarizeDigests sends one prompt over the (subject, sender, snippet)
// triples and returns the generated text verbatim. A non-success status or a
// malformed response body is a hard failure; retry is the caller's concern.
func (s *Service) SummarizeDigests(ctx context.Context, digests []*summarydomain.EmailDigest) (string, error) {
	payload := chatRequest{
		Model: s.Model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(digests)},
		},
		MaxTokens: maxSummaryTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unable to decode OpenRouter response: %v", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no summary returned")
	}

	return result.Choices[0].Message.Content, nil
}

func buildPrompt(digests []*summarydomain.EmailDigest) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Summarize the following emails in at most %d sentences, focusing on the important points:\n\n", maxSummarySentences)
	for i, d := range digests {
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n\n", i+1, d.Subject, d.From, d.Snippet)
	}
	return b.String()
}
