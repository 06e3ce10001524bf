package generator

import (
	"net/http"
	"strings"

	redis "github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const draftCachePrefix = "invoicedesk:reminder:draft:"

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
	Redis   *redis.Client    `optional:"true"`
}

// New wires the AI generator when a credential is configured. Without one
// the AI generator still runs and records every draft as a disabled fallback.
func New(p Params) Generator {
	formatter := NewFormatter(p.Cfg.Reminder.DateLayout)
	opts := AIOptions{
		Model:    p.Cfg.AI.Model,
		Timeout:  p.Cfg.AI.Timeout,
		CacheTTL: p.Cfg.Reminder.CacheTTL,
	}
	if opts.Model == "" {
		opts.Model = config.DefaultAIModel
	}

	var client ChatCompleter
	if p.Cfg.AI.APIKey != "" {
		client = NewOpenAIClient(p.Cfg.AI)
	} else {
		p.Log.Warn("AI_API_KEY not set, reminders use the template")
	}

	return NewAIGenerator(client, formatter, opts, NewDraftCache(p.Cfg, p.Redis, p.Log), p.Metrics, p.Log)
}

// NewOpenAIClient targets any OpenAI-compatible chat completion endpoint.
func NewOpenAIClient(cfg config.AIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(config.DefaultAIBaseURL, "/")
	}
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: tracing.NewTransport(nil),
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewDraftCache picks redis when available, an in-process cache otherwise,
// and disables caching entirely when REMINDER_CACHE_TTL is zero.
func NewDraftCache(cfg config.Config, client *redis.Client, log *zap.Logger) cache.Cache[string, string] {
	switch {
	case cfg.Reminder.CacheTTL <= 0:
		return cache.NoopCache[string, string]{}
	case client != nil:
		return cache.NewRedisCache(client, draftCachePrefix, log)
	default:
		return cache.NewTTLCache[string, string]()
	}
}
