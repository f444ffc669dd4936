package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var tracer = otel.Tracer("github.com/sandeepkv93/questd/internal/gateway")

// contentGenerator is the slice of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// GenAIClient talks to the Gemini API.
type GenAIClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gateway: GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: create GenAI client: %w", err)
	}
	return newGenAIClient(client.Models, cfg), nil
}

func newGenAIClient(models contentGenerator, cfg GenAIConfig) *GenAIClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &GenAIClient{
		models:  models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		now:     time.Now,
	}
}

func (c *GenAIClient) GenerateQuest(ctx context.Context, req GenerateRequest) (Draft, error) {
	ctx, span := tracer.Start(ctx, "gateway.GenerateQuest", trace.WithAttributes(
		attribute.Int("quest.duration_minutes", req.DurationMinutes),
		attribute.String("quest.language", string(req.Language)),
	))
	defer span.End()

	text, err := c.generate(ctx, generatePrompt(req, c.now()), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(questMasterInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    questResponseSchema(),
	})
	if err != nil {
		recordError(span, err)
		return Draft{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	draft, err := ParseDraft(text)
	if err != nil {
		recordError(span, err)
		c.logger.Warn("discarding unusable quest draft", zap.Error(err))
		return Draft{}, err
	}
	span.SetAttributes(attribute.Int("quest.steps", len(draft.Steps)))
	return draft, nil
}

func (c *GenAIClient) Nudge(ctx context.Context, req NudgeRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "gateway.Nudge")
	defer span.End()

	text, err := c.generate(ctx, nudgePrompt(req), nil)
	if err != nil {
		recordError(span, err)
		return "", err
	}
	if text == "" {
		return NudgeFallback(req.Language), nil
	}
	return text, nil
}

func (c *GenAIClient) CatchUpStrategy(ctx context.Context, req StrategyRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "gateway.CatchUpStrategy")
	defer span.End()

	text, err := c.generate(ctx, strategyPrompt(req), nil)
	if err != nil {
		recordError(span, err)
		return "", err
	}
	if text == "" {
		return StrategyFallback(req.Language), nil
	}
	return text, nil
}

func (c *GenAIClient) RecommendNext(ctx context.Context, completedTitle string, lang model.Language) ([]string, error) {
	ctx, span := tracer.Start(ctx, "gateway.RecommendNext")
	defer span.End()

	text, err := c.generate(ctx, recommendPrompt(completedTitle, lang), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   recommendationsResponseSchema(),
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return ParseRecommendations(text)
}

func (c *GenAIClient) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := c.now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		c.logger.Warn("generate content failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("gateway: generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("gateway: empty response")
	}
	text := strings.TrimSpace(resp.Text())
	c.logger.Debug("generate content",
		zap.String("model", c.model),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", c.now().Sub(started)))
	return text, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
