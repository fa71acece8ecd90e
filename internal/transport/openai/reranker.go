package openai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
)

const rerankSystemPrompt = `You are a relevance judge. Given a question and a passage, ` +
	`reply with a single number from 0 to 100: how well the passage answers the question. ` +
	`0 means completely irrelevant, 100 means it directly answers it. Reply with the number only.`

// Reranker scores (query, passage) pairs with a judge model over an
// OpenAI-compatible chat endpoint. Stateless: the score depends only on the pair.
type Reranker struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// RerankerConfig holds the rerank provider settings.
type RerankerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewReranker creates a rerank scoring provider.
func NewReranker(cfg *RerankerConfig) *Reranker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Reranker{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Score returns a relevance score in [0, 1] for the (query, passage) pair.
func (r *Reranker) Score(ctx context.Context, query, passage string) (float64, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		MaxTokens:   8,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rerankSystemPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Question: %s\n\nPassage:\n%s", query, passage),
			},
		},
	})
	if err != nil {
		return 0, parseAPIError("rerank", err, domain.ErrRerankUnavailable)
	}

	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("empty rerank response: %w", domain.ErrRerankUnavailable)
	}

	score, err := parseScore(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, domain.ErrRerankUnavailable)
	}
	return score, nil
}

// parseScore extracts the leading number from the judge's reply and normalizes
// it to [0, 1].
func parseScore(reply string) (float64, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return 0, fmt.Errorf("blank rerank reply")
	}

	end := 0
	for end < len(reply) && (reply[end] == '.' || (reply[end] >= '0' && reply[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("non-numeric rerank reply %q", reply)
	}

	v, err := strconv.ParseFloat(reply[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("parse rerank reply %q: %w", reply, err)
	}

	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v / 100, nil
}
