package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/observability/tracing"
	"github.com/smallbiznis/invoicedesk/internal/reminder/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const promptTemplate = `Generate a polite and professional WhatsApp payment reminder message.
The message should follow this exact format:
"Hello {{customer_name}}, your invoice #{{invoice_number}} of ₹{{amount}} is due on {{due_date}}. Kindly clear the payment. - {{business_name}}"

Here is the information:
- Customer Name: %q
- Invoice Number: %q
- Amount: %q
- Due Date: %q
- Business Name: %q

Do not add any extra text or explanation. Only output the final message.`

var errEmptyCompletion = errors.New("empty completion")

// ChatCompleter is the slice of the OpenAI client the generator uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIOptions struct {
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// AIGenerator drafts reminders with a chat completion model and falls back
// to the template whenever the model is unavailable or unhelpful.
type AIGenerator struct {
	client    ChatCompleter
	fallback  *TemplateGenerator
	formatter Formatter
	opts      AIOptions
	cache     cache.Cache[string, string]
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewAIGenerator(client ChatCompleter, f Formatter, opts AIOptions, drafts cache.Cache[string, string], m *metrics.Metrics, log *zap.Logger) *AIGenerator {
	if drafts == nil {
		drafts = cache.NoopCache[string, string]{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AIGenerator{
		client:    client,
		fallback:  NewTemplateGenerator(f),
		formatter: f,
		opts:      opts,
		cache:     drafts,
		metrics:   m,
		log:       log.Named("reminder.generator"),
	}
}

func (g *AIGenerator) Generate(ctx context.Context, req domain.Request) domain.Reminder {
	if g.client == nil {
		return g.fallbackWith(ctx, req, metrics.FallbackReasonDisabled, nil)
	}

	key := g.cacheKey(req)
	if cached, ok := g.cache.Get(ctx, key); ok {
		return domain.Reminder{Message: cached, Source: domain.SourceAI}
	}

	message, err := g.complete(ctx, req)
	if err != nil {
		reason := metrics.FallbackReasonError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = metrics.FallbackReasonTimeout
		case errors.Is(err, errEmptyCompletion):
			reason = metrics.FallbackReasonEmpty
		}
		return g.fallbackWith(ctx, req, reason, err)
	}

	g.cache.Set(ctx, key, message, g.opts.CacheTTL)
	return domain.Reminder{Message: message, Source: domain.SourceAI}
}

func (g *AIGenerator) complete(ctx context.Context, req domain.Request) (message string, err error) {
	ctx, span := tracing.Start(ctx, "reminder.ai_completion",
		attribute.String("ai.model", g.opts.Model),
		attribute.String("invoice.number", req.InvoiceNumber),
	)
	defer func() { tracing.End(span, err) }()

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: g.prompt(req),
			},
		},
	})
	g.metrics.ObserveAIRequest(time.Since(started))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	message = strings.TrimSpace(resp.Choices[0].Message.Content)
	if message == "" {
		return "", errEmptyCompletion
	}
	return message, nil
}

func (g *AIGenerator) prompt(req domain.Request) string {
	return fmt.Sprintf(promptTemplate,
		req.CustomerName,
		req.InvoiceNumber,
		g.formatter.Amount(req),
		g.formatter.DueDate(req),
		req.BusinessName,
	)
}

func (g *AIGenerator) fallbackWith(ctx context.Context, req domain.Request, reason string, err error) domain.Reminder {
	g.metrics.RecordFallback(ctx, reason)
	if err != nil {
		logger.WithContext(ctx, g.log).Warn("ai reminder failed, using template",
			zap.String("invoice_number", req.InvoiceNumber),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
	return g.fallback.Generate(ctx, req)
}

// cacheKey covers every templated field so edited invoices miss.
func (g *AIGenerator) cacheKey(req domain.Request) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		g.opts.Model,
		req.CustomerName,
		req.InvoiceNumber,
		g.formatter.Amount(req),
		g.formatter.DueDate(req),
		req.BusinessName,
	}, "\x1f")))
	return hex.EncodeToString(sum[:])
}
