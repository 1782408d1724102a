package ai

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/kpilens/internal/config"
	"github.com/KaramelBytes/kpilens/internal/logging"
	"github.com/KaramelBytes/kpilens/internal/utils"
)

// Proxy answers questions about a data context with one upstream call.
// Failures are logged and returned unchanged; nothing is retried.
type Proxy struct {
	secrets config.Secrets
	rc      RuntimeConfig
	factory RuntimeFactory
	logger  *zap.Logger
}

// NewProxy wires a proxy. The API key is resolved from secrets on every call;
// rc.APIKey is ignored. A nil factory means NewGeminiRuntime.
func NewProxy(secrets config.Secrets, rc RuntimeConfig, factory RuntimeFactory, logger *zap.Logger) *Proxy {
	if factory == nil {
		factory = NewGeminiRuntime
	}
	return &Proxy{secrets: secrets, rc: rc, factory: factory, logger: logging.OrNop(logger)}
}

// Ask sends the question with its data context and returns the answer text.
func (p *Proxy) Ask(ctx context.Context, question, dataContext string) (string, error) {
	log := p.logger.With(zap.String("ask_id", uuid.NewString()))

	key, err := config.Require(p.secrets, config.KeyLLMAPIKey)
	if err != nil {
		log.Error("ask failed", zap.Error(err))
		return "", err
	}
	req := BuildPrompt(question, dataContext)

	rc := p.rc
	rc.APIKey = key
	rt := p.factory(rc)

	log.Info("sending analysis request",
		zap.String("model", rc.Model),
		zap.Int("question_chars", utf8.RuneCountInString(question)),
		zap.Int("context_chars", utf8.RuneCountInString(dataContext)),
		zap.Int("prompt_tokens_est", utils.CountTokens(req.Text())))

	resp, err := rt.Generate(ctx, req)
	if err != nil {
		log.Error("ask failed", zap.Error(err))
		return "", err
	}
	text, ok := FirstText(resp)
	if !ok {
		err := emptyResponseError(resp)
		log.Error("ask failed", zap.Error(err))
		return "", err
	}

	fields := []zap.Field{zap.Int("answer_chars", utf8.RuneCountInString(text)), zap.String("request_id", resp.RequestID)}
	if u := resp.UsageMetadata; u != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", u.PromptTokenCount),
			zap.Int("answer_tokens", u.CandidatesTokenCount),
			zap.Int("total_tokens", u.TotalTokenCount))
	}
	log.Info("analysis answered", fields...)
	return text, nil
}
