// Package analyzer asks an OpenAI-compatible chat model to break down a
// job's requirements.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobbots/common/errors"
	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobbots/ingestion/analyzer")

const systemPrompt = "你是一个专业的职位分析专家"

const userPromptTemplate = `请分析这个职位的要求，包括：
1. 技能要求
2. 经验要求
3. 教育背景
4. 其他要求

职位信息：
标题：%s
描述：%s`

type Options struct {
	APIKey string
	// BaseURL points at an OpenAI-compatible endpoint; empty uses OpenAI.
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Analyzer interface {
	Analyze(ctx context.Context, job *models.JobInfo) (*models.Analysis, error)
}

type chatAnalyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// New returns an Analyzer. Without an API key every call fails as
// unavailable rather than at start-up.
func New(opts Options, logger *zap.Logger) Analyzer {
	if opts.APIKey == "" {
		return disabled{}
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(1),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimSuffix(opts.BaseURL, "/")+"/"))
	}
	client := openai.NewClient(clientOpts...)

	return &chatAnalyzer{
		client:  &client,
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

func prompt(job *models.JobInfo) string {
	return fmt.Sprintf(userPromptTemplate, job.Title, models.Deref(job.Description))
}

func (a *chatAnalyzer) Analyze(ctx context.Context, job *models.JobInfo) (*models.Analysis, error) {
	ctx, span := tracer.Start(ctx, "Analyze")
	defer span.End()
	span.SetAttributes(
		telemetry.String("job.id", job.JobID),
		telemetry.String("llm.model", a.model))

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt(job)),
		},
	})
	if err != nil {
		telemetry.RecordError(span, err)
		a.logger.Error("chat completion failed",
			zap.String("job_id", job.JobID),
			zap.Error(err))
		if ctx.Err() != nil {
			return nil, errors.Timeout("analyzing job", err)
		}
		return nil, errors.Unavailable("analyzing job", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.Internal("chat completion returned no choices", nil)
	}

	span.SetAttributes(telemetry.Int("llm.total_tokens", int(completion.Usage.TotalTokens)))
	a.logger.Debug("job analyzed",
		zap.String("job_id", job.JobID),
		zap.Int64("total_tokens", completion.Usage.TotalTokens))

	return &models.Analysis{
		JobID:    job.JobID,
		Source:   job.Source,
		Model:    completion.Model,
		Analysis: completion.Choices[0].Message.Content,
	}, nil
}

type disabled struct{}

func (disabled) Analyze(context.Context, *models.JobInfo) (*models.Analysis, error) {
	return nil, errors.Unavailable("job analysis is not configured: OPENAI_API_KEY is unset", nil)
}
