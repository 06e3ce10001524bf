package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/reminder/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const innovateFallback = "Hello Innovate Corp, your invoice #INV-001 of ₹1500.00 is due on 15/05/2024. Kindly clear the payment. - My Awesome Inc."

func innovateRequest() domain.Request {
	return domain.Request{
		CustomerName:  "Innovate Corp",
		InvoiceNumber: "INV-001",
		Amount:        decimal.NewFromInt(1500),
		DueDate:       time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		BusinessName:  "My Awesome Inc.",
	}
}

type completionServer struct {
	*httptest.Server
	calls   atomic.Int32
	prompts chan string
}

func newCompletionServer(t *testing.T, content string, delay time.Duration) *completionServer {
	t.Helper()
	s := &completionServer{prompts: make(chan string, 8)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Messages) > 0 {
			s.prompts <- req.Messages[0].Content
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestMetrics(t *testing.T) (*metrics.Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(metrics.Config{ServiceName: "invoicedesk", Environment: "test"}, reg)
	require.NoError(t, err)
	return m, reg
}

func fallbackCount(t *testing.T, reg *prometheus.Registry, reason string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "invoicedesk_reminder_fallbacks_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "reason" && label.GetValue() == reason {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func newAIGenerator(t *testing.T, baseURL string, timeout time.Duration, drafts cache.Cache[string, string], m *metrics.Metrics) *AIGenerator {
	t.Helper()
	client := NewOpenAIClient(config.AIConfig{APIKey: "test-key", BaseURL: baseURL + "/", Timeout: time.Second})
	return NewAIGenerator(client, NewFormatter(""), AIOptions{Model: "gemini-2.5-flash", Timeout: timeout, CacheTTL: time.Minute}, drafts, m, zap.NewNop())
}

func TestTemplateGeneratorExactText(t *testing.T) {
	got := NewTemplateGenerator(NewFormatter(config.DefaultReminderDateLayout)).Generate(context.Background(), innovateRequest())
	assert.Equal(t, innovateFallback, got.Message)
	assert.Equal(t, domain.SourceTemplate, got.Source)
}

func TestFormatterCustomLayoutAndRounding(t *testing.T) {
	f := NewFormatter("2006-01-02")
	req := innovateRequest()
	req.Amount = decimal.RequireFromString("1416.005")
	assert.Equal(t, "1416.01", f.Amount(req))
	assert.Equal(t, "2024-05-15", f.DueDate(req))
}

func TestAIGeneratorWithoutCredentialFallsBack(t *testing.T) {
	m, reg := newTestMetrics(t)
	g := NewAIGenerator(nil, NewFormatter(""), AIOptions{}, nil, m, zap.NewNop())

	got := g.Generate(context.Background(), innovateRequest())
	assert.Equal(t, innovateFallback, got.Message)
	assert.Equal(t, domain.SourceTemplate, got.Source)
	assert.Equal(t, float64(1), fallbackCount(t, reg, metrics.FallbackReasonDisabled))
}

func TestAIGeneratorNetworkErrorMatchesMissingCredential(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	m, reg := newTestMetrics(t)
	withNetworkError := newAIGenerator(t, baseURL, time.Second, nil, m).Generate(context.Background(), innovateRequest())
	withoutKey := NewAIGenerator(nil, NewFormatter(""), AIOptions{}, nil, nil, nil).Generate(context.Background(), innovateRequest())

	assert.Equal(t, withoutKey, withNetworkError)
	assert.Equal(t, innovateFallback, withNetworkError.Message)
	assert.Equal(t, float64(1), fallbackCount(t, reg, metrics.FallbackReasonError))
}

func TestAIGeneratorUsesTrimmedCompletion(t *testing.T) {
	srv := newCompletionServer(t, "  Hi Innovate Corp, a gentle reminder about INV-001.\n", 0)
	g := newAIGenerator(t, srv.URL, time.Second, nil, nil)

	got := g.Generate(context.Background(), innovateRequest())
	assert.Equal(t, "Hi Innovate Corp, a gentle reminder about INV-001.", got.Message)
	assert.Equal(t, domain.SourceAI, got.Source)

	prompt := <-srv.prompts
	assert.Contains(t, prompt, `- Customer Name: "Innovate Corp"`)
	assert.Contains(t, prompt, `- Amount: "1500.00"`)
	assert.Contains(t, prompt, `- Due Date: "15/05/2024"`)
	assert.Contains(t, prompt, `- Business Name: "My Awesome Inc."`)
}

func TestAIGeneratorEmptyCompletionFallsBack(t *testing.T) {
	srv := newCompletionServer(t, "   ", 0)
	m, reg := newTestMetrics(t)

	got := newAIGenerator(t, srv.URL, time.Second, nil, m).Generate(context.Background(), innovateRequest())
	assert.Equal(t, innovateFallback, got.Message)
	assert.Equal(t, float64(1), fallbackCount(t, reg, metrics.FallbackReasonEmpty))
}

func TestAIGeneratorTimeoutFallsBack(t *testing.T) {
	srv := newCompletionServer(t, "too late", 500*time.Millisecond)
	m, reg := newTestMetrics(t)

	got := newAIGenerator(t, srv.URL, 20*time.Millisecond, nil, m).Generate(context.Background(), innovateRequest())
	assert.Equal(t, innovateFallback, got.Message)
	assert.Equal(t, domain.SourceTemplate, got.Source)
	assert.Equal(t, float64(1), fallbackCount(t, reg, metrics.FallbackReasonTimeout))
}

func TestAIGeneratorCachesDrafts(t *testing.T) {
	srv := newCompletionServer(t, "Cached draft", 0)
	g := newAIGenerator(t, srv.URL, time.Second, cache.NewTTLCache[string, string](), nil)
	ctx := context.Background()

	first := g.Generate(ctx, innovateRequest())
	second := g.Generate(ctx, innovateRequest())
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), srv.calls.Load())

	edited := innovateRequest()
	edited.Amount = decimal.NewFromInt(2000)
	g.Generate(ctx, edited)
	assert.Equal(t, int32(2), srv.calls.Load())
}

func TestNewDraftCache(t *testing.T) {
	assert.IsType(t, cache.NoopCache[string, string]{}, NewDraftCache(config.Config{}, nil, nil))

	cfg := config.Config{Reminder: config.ReminderConfig{CacheTTL: time.Minute}}
	assert.IsType(t, &cache.TTLCache[string, string]{}, NewDraftCache(cfg, nil, nil))
}

func TestNewWithoutKeyUsesTemplate(t *testing.T) {
	g := New(Params{Cfg: config.Config{}, Log: zap.NewNop()})
	got := g.Generate(context.Background(), innovateRequest())
	assert.Equal(t, innovateFallback, got.Message)
	assert.True(t, strings.HasPrefix(got.Message, "Hello Innovate Corp"))
}
