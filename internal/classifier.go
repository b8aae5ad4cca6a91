package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const classifierSystemPrompt = `You are a subscription detection expert. Analyze emails to extract subscription information with high precision. Focus on:
- Recurring payments/subscriptions
- Trial periods
- Service subscriptions
- Utility bills
- Rent payments
- Insurance payments

For each detected subscription, provide:
- Exact service/company name
- Amount (if mentioned)
- Billing cycle
- Start date
- Trial information
- Category classification

Be conservative - only return subscription data when highly confident.`

const classifierPromptTemplate = `Analyze this email for subscription or recurring payment information:

From: %s
Subject: %s
Date: %s
Content: %s

If this contains subscription-related information, extract the following details:
- Service/company name
- Payment amount (if mentioned)
- Billing cycle (monthly/yearly/weekly/bi-weekly/quarterly/bi-monthly/bi-yearly)
- Start date
- Trial information (if applicable)
- Category (streaming/utilities/software/rent/insurance/food_delivery/storage/entertainment/other)

Format your response as a valid JSON object with these exact fields:
{
    "name": "service name",
    "amount": number or null,
    "cycle": "monthly|yearly|weekly|bi-weekly|quarterly|bi-monthly|bi-yearly|unknown",
    "start_date": "YYYY-MM-DD",
    "is_trial": boolean or null,
    "trial_duration_in_days": number or null,
    "trial_end_date": "YYYY-MM-DD" or null,
    "category": "streaming|utilities|software|rent|insurance|food_delivery|storage|entertainment|other"
}

If this is not a subscription-related email, respond with: null`

const defaultClassifierModel = "gpt-4o-mini"

// OpenAIClassifier refines rule-based guesses through an
// OpenAI-compatible chat completion endpoint.
type OpenAIClassifier struct {
	llm *openai.LLM
}

// NewOpenAIClassifier builds a classifier for the given credentials.
// model and baseURL are optional; empty values pick the default model
// and the public OpenAI endpoint.
func NewOpenAIClassifier(apiKey, model, baseURL string) (*OpenAIClassifier, error) {
	if model == "" {
		model = defaultClassifierModel
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return &OpenAIClassifier{llm: llm}, nil
}

// Detect asks the model for a partial subscription extraction. The
// snippet stands in for the body to keep prompts small. Returns
// (nil, nil) when the model answers that this is not a subscription.
func (c *OpenAIClassifier) Detect(ctx context.Context, email EmailRecord) (*AIResult, error) {
	prompt := fmt.Sprintf(classifierPromptTemplate, email.From, email.Subject, email.Date, email.Snippet)

	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, classifierSystemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(0.1),
	)
	if err != nil {
		return nil, fmt.Errorf("classifier call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	return ParseClassifierResponse(resp.Choices[0].Content)
}

// ParseClassifierResponse decodes the model's reply. A reply of
// "null" (the prompt's not-a-subscription sentinel), an empty reply
// or a result without a name all mean no match, not an error; only
// malformed JSON is an error. Date fields are re-normalized to
// YYYY-MM-DD since models are sloppy about formats.
func ParseClassifierResponse(content string) (*AIResult, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" || strings.EqualFold(content, "null") {
		return nil, nil
	}

	var result AIResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parsing classifier response: %w", err)
	}
	if result.Name == nil || strings.TrimSpace(*result.Name) == "" {
		return nil, nil
	}

	if result.StartDate != nil {
		if t, err := ParseEmailDate(*result.StartDate); err == nil {
			s := t.Format("2006-01-02")
			result.StartDate = &s
		} else {
			result.StartDate = nil
		}
	}
	if result.TrialEndDate != nil {
		if t, err := ParseEmailDate(*result.TrialEndDate); err == nil {
			s := t.Format("2006-01-02")
			result.TrialEndDate = &s
		} else {
			result.TrialEndDate = nil
		}
	}

	return &result, nil
}
