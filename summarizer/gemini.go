package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const (
	DefaultModel             = "gemini-2.5-flash-lite"
	DefaultTemperature       = 0.7
	DefaultMaxOutputTokens   = 1024
	DefaultTimeout           = 60 * time.Second
	DefaultRequestsPerMinute = 15
)

// GeminiOptions configures the Gemini summarizer
type GeminiOptions struct {
	APIKey            string
	Model             string
	Temperature       float32
	MaxOutputTokens   int32
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewDefaultGeminiOptions returns the default model settings without an api key
func NewDefaultGeminiOptions() *GeminiOptions {
	return &GeminiOptions{
		Model:             DefaultModel,
		Temperature:       DefaultTemperature,
		MaxOutputTokens:   DefaultMaxOutputTokens,
		Timeout:           DefaultTimeout,
		RequestsPerMinute: DefaultRequestsPerMinute,
	}
}

// Gemini summarizes prompts with a Gemini generative model. Calls are paced to stay inside the
// configured request rate.
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini connects a Gemini client. The caller must Close it when done.
func NewGemini(ctx context.Context, opt *GeminiOptions, logger *slog.Logger) (*Gemini, error) {
	if opt == nil {
		opt = NewDefaultGeminiOptions()
	}
	if opt.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opt.APIKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create gemini client, %w", err)
	}

	name := opt.Model
	if name == "" {
		name = DefaultModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(opt.Temperature)
	if opt.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opt.MaxOutputTokens)
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}

	limit := rate.Inf
	if opt.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opt.RequestsPerMinute))
	}

	return &Gemini{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, 1),
		timeout: opt.Timeout,
		logger:  logger,
	}, nil
}

// Summarize sends the prompt and returns the generated text of every candidate joined together
func (g *Gemini) Summarize(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("unable to wait for request slot, %w", err)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("unable to generate summary, %w", err)
	}
	text, err := ResponseText(resp)
	if err != nil {
		return "", err
	}
	g.logger.Info("generated summary", "latency", time.Since(start), "chars", len([]rune(text)))
	return text, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// ResponseText concatenates the text parts of every candidate in the response
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
