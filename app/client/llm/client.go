package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"vendorline/app/config"

	_ "embed"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

//go:embed understand_prompt_template.txt
var understandPromptTemplate string

var _ Understander = (*Client)(nil)

type Client struct {
	cfg    *config.Config
	client *openai.Client
	model  string
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	clientConfig := openai.DefaultConfig(cfg.LLM.Token)
	clientConfig.BaseURL = cfg.LLM.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.LLM.Model,
	}, nil
}

func (c *Client) Understand(ctx context.Context, req Request) (*Advisory, error) {
	history := "No previous exchanges"
	if len(req.HistoryExcerpt) > 0 {
		history = strings.Join(req.HistoryExcerpt, "\n")
	}

	templateValues := map[string]any{
		"utterance":     req.Utterance,
		"item":          req.ItemName,
		"specification": req.Specification,
		"quantity":      req.Quantity,
		"unit":          req.Unit,
		"history":       history,
	}

	prompt := understandPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.LLM.Timeout)
	defer cancel()

	aiResponse, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: 200,
			Temperature:         0.2,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return nil, fmt.Errorf("no chat completion found")
	}

	result := aiResponse.Choices[0].Message.Content
	result = strings.Trim(result, "`")
	result = strings.TrimSpace(result)
	result = strings.TrimPrefix(result, "json")
	result = strings.TrimSpace(result)

	var advisory Advisory
	if err = json.Unmarshal([]byte(result), &advisory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	switch advisory.Intent {
	case IntentQuoteGiven, IntentClarificationNeeded, IntentAgreement, IntentDecline, IntentUnintelligible:
	default:
		return nil, fmt.Errorf("unknown intent %q", advisory.Intent)
	}

	if advisory.Confidence < 0 || advisory.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v out of range", advisory.Confidence)
	}

	return &advisory, nil
}
