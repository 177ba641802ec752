package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"assessment-service/internal/models"
)

// Client is the gateway to the external generative content provider. One call
// produces one batch of items; the client never retries — consumers compensate
// for failed batches themselves.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []chatCompletionMessage `json:"messages"`
	Stream   bool                    `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

// GenerateBatch requests exactly len(categories) items for one section and
// returns the parsed questions. Transport, HTTP-status and parse failures are
// all returned as errors; the batch then contributes zero items.
func (c *Client) GenerateBatch(ctx context.Context, sectionNumber int, categories []string, itemType string, profile models.UserProfile) ([]models.Question, error) {
	prompt := buildPrompt(sectionNumber, categories, itemType, profile)
	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	items, err := ParseItems(content, sectionNumber, itemType, categories)
	if err != nil {
		return nil, fmt.Errorf("parse batch response: %w", err)
	}
	return items, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	request := chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}
	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" && c.apiKey != "none" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("provider API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return response.Choices[0].Message.Content, nil
}

const systemPrompt = "You are an assessment content generator. " +
	"Respond with a JSON array only, no surrounding prose."

func buildPrompt(sectionNumber int, categories []string, itemType string, profile models.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d assessment questions as a JSON array.\n", len(categories))
	fmt.Fprintf(&b, "Question type: %s. One question per category, in order: %s.\n",
		itemType, strings.Join(categories, ", "))

	switch sectionNumber {
	case models.SectionBehavioral:
		b.WriteString("These are situational judgement items. Each question object has: " +
			`"question", optional "scenario", "category", "options" (4 objects with "text" and "impactScore" 0-100), ` +
			`and "rationales" (one per option). Impact scores must reflect how strongly each choice ` +
			"demonstrates effective workplace behavior for the category trait.\n")
	default:
		b.WriteString("Each question object has: " +
			`"question", optional "scenario", "category", "options" (4 objects with "text"), ` +
			`and "correctOptionIndex" (0-based index of the right option).` + "\n")
	}

	if sectionNumber == models.SectionDomain {
		fmt.Fprintf(&b, "Target the candidate's declared skills (%s) and interests (%s).\n",
			strings.Join(profile.Skills, ", "), strings.Join(profile.Interests, ", "))
	}
	if profile.Degree != "" {
		fmt.Fprintf(&b, "Candidate education: %s.\n", profile.Degree)
	}
	if profile.CareerGoal != "" {
		fmt.Fprintf(&b, "Candidate career goal: %s.\n", profile.CareerGoal)
	}
	return b.String()
}
