package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"go-newspulse/internal/model"
)

//go:generate mockgen -source=llm.go -destination=mocks/mock_llm.go -package=mocks

// TextGenerator sends a system prompt plus content to a chat model and returns its reply.
type TextGenerator interface {
	Name() string
	Chat(ctx context.Context, prompt, content string) (string, error)
}

var (
	ErrRateLimited     = errors.New("llm rate limit exceeded")
	ErrBudgetExhausted = errors.New("llm daily budget exhausted")
	ErrEmptyResponse   = errors.New("no response from LLM")
)

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiURL, apiKey, modelName string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if apiURL != "" {
		cfg.BaseURL = strings.TrimRight(apiURL, "/")
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName,
	}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Chat(ctx context.Context, prompt, content string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
		Temperature: 0.1,
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: modelName}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Chat(ctx context.Context, prompt, content string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt)}}
	m.SetTemperature(0.1)

	resp, err := m.GenerateContent(ctx, genai.Text(content))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

const classifyPrompt = `You label news articles. Reply with a single JSON object and nothing else:
{"category": "<one of: %s>", "sentiment": "<one of: %s>", "summary": "<one sentence, at most 30 words>"}
Use "urgent" only for breaking or emergency news.`

// LLMClassifier classifies articles through a chat model, bounded by a per-minute rate
// and a daily request budget.
type LLMClassifier struct {
	gen     TextGenerator
	limiter *rate.Limiter
	timeout time.Duration
	prompt  string

	mu      sync.Mutex
	budget  int
	used    int
	resetAt time.Time
	now     func() time.Time
}

type LLMOptions struct {
	RequestsPerMinute int
	DailyBudget       int
	Timeout           time.Duration
}

func NewLLMClassifier(gen TextGenerator, opts LLMOptions) *LLMClassifier {
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 30
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	cats := make([]string, 0, len(model.AllAICategories()))
	for _, c := range model.AllAICategories() {
		cats = append(cats, string(c))
	}
	sents := make([]string, 0, len(model.AllSentiments()))
	for _, s := range model.AllSentiments() {
		sents = append(sents, string(s))
	}
	c := &LLMClassifier{
		gen:     gen,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute),
		timeout: opts.Timeout,
		prompt:  fmt.Sprintf(classifyPrompt, strings.Join(cats, ", "), strings.Join(sents, ", ")),
		budget:  opts.DailyBudget,
		now:     time.Now,
	}
	c.resetAt = nextMidnight(c.now())
	return c
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

func (c *LLMClassifier) Name() string { return c.gen.Name() }

// Available reports whether today's budget still has room. A zero budget is unlimited.
func (c *LLMClassifier) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkReset()
	return c.budget <= 0 || c.used < c.budget
}

func (c *LLMClassifier) checkReset() {
	if now := c.now(); !now.Before(c.resetAt) {
		c.used = 0
		c.resetAt = nextMidnight(now)
	}
}

func (c *LLMClassifier) reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkReset()
	if c.budget > 0 && c.used >= c.budget {
		return ErrBudgetExhausted
	}
	c.used++
	return nil
}

// Usage returns requests spent today and the daily budget.
func (c *LLMClassifier) Usage() (used, budget int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkReset()
	return c.used, c.budget
}

func (c *LLMClassifier) Classify(ctx context.Context, a model.Article) (Classification, error) {
	if !c.limiter.Allow() {
		return Classification{}, ErrRateLimited
	}
	if err := c.reserve(); err != nil {
		return Classification{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := "Title: " + a.Title
	if a.Description != "" {
		content += "\nDescription: " + truncate(a.Description, 1000)
	}
	reply, err := c.gen.Chat(ctx, c.prompt, content)
	if err != nil {
		return Classification{}, err
	}
	return parseClassification(reply)
}

type llmReply struct {
	Category  string `json:"category"`
	Sentiment string `json:"sentiment"`
	Summary   string `json:"summary"`
}

func parseClassification(reply string) (Classification, error) {
	reply = strings.TrimSpace(reply)
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return Classification{}, fmt.Errorf("llm reply has no JSON object: %q", truncate(reply, 80))
	}

	var r llmReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		return Classification{}, fmt.Errorf("decoding llm reply: %w", err)
	}

	cat, ok := model.ParseAICategory(strings.TrimSpace(r.Category))
	if !ok {
		return Classification{}, fmt.Errorf("llm returned unknown category %q", r.Category)
	}
	sent := model.Sentiment(strings.ToLower(strings.TrimSpace(r.Sentiment)))
	valid := false
	for _, s := range model.AllSentiments() {
		if s == sent {
			valid = true
			break
		}
	}
	if !valid {
		return Classification{}, fmt.Errorf("llm returned unknown sentiment %q", r.Sentiment)
	}
	return Classification{Category: cat, Sentiment: sent, Summary: strings.TrimSpace(r.Summary)}, nil
}
