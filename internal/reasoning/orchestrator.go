package reasoning

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

// OrchestratorConfig is passed explicitly at construction; the orchestrator
// never reads process-wide state.
type OrchestratorConfig struct {
	Policy          RetryPolicy
	CallTimeout     time.Duration
	MaxProductIDLen int
	Prompt          PromptConfig
	// Sleeper is swapped for a fake in tests; nil means real time.
	Sleeper Sleeper
}

// Orchestrator drives the ordered provider-failover chain. Providers are
// attempted strictly sequentially so a single logical decision never races
// duplicate external calls.
type Orchestrator struct {
	providers []Provider
	cfg       OrchestratorConfig
	sleeper   Sleeper
}

func NewOrchestrator(providers []Provider, cfg OrchestratorConfig) *Orchestrator {
	if cfg.Policy.MaxAttempts < 1 {
		cfg.Policy = DefaultRetryPolicy()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	return &Orchestrator{providers: providers, cfg: cfg, sleeper: sleeper}
}

// Analyze obtains a validated recommendation for the given context, failing
// over across providers. A total failure of every provider surfaces as
// AllProvidersFailed; there is no rule-based fallback recommendation.
func (o *Orchestrator) Analyze(ctx context.Context, rc domain.ReasoningContext) (domain.Recommendation, error) {
	if len(o.providers) == 0 {
		return domain.Recommendation{}, domain.NewError(domain.KindAllProvidersFailed,
			"no reasoning providers configured")
	}

	rc.ProductID = SanitizeProductID(rc.ProductID, o.cfg.MaxProductIDLen)
	prompt := BuildPrompt(rc, o.cfg.Prompt)

	var lastErr error
	for _, provider := range o.providers {
		rec, err := o.attemptProvider(ctx, provider, prompt)
		if err == nil {
			rec.ProviderUsed = provider.Name()
			log.Info().Str("provider", provider.Name()).Str("action", rec.Action).Msg("reasoning call succeeded")
			return rec, nil
		}
		if ctx.Err() != nil {
			return domain.Recommendation{}, ctx.Err()
		}
		log.Warn().Err(err).Str("provider", provider.Name()).Msg("provider exhausted, advancing chain")
		lastErr = err
	}

	return domain.Recommendation{}, domain.WrapError(domain.KindAllProvidersFailed, lastErr,
		"all %d reasoning providers failed", len(o.providers))
}

// attemptProvider runs the retry loop for one provider. Parse and schema
// failures count against the retry budget exactly like transient backend
// failures.
func (o *Orchestrator) attemptProvider(ctx context.Context, provider Provider, prompt string) (domain.Recommendation, error) {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.Policy.MaxAttempts; attempt++ {
		raw, err := o.callOnce(ctx, provider, prompt)
		if err == nil {
			rec, parseErr := ParseRecommendation(raw)
			if parseErr == nil {
				return rec, nil
			}
			log.Debug().Err(parseErr).Str("provider", provider.Name()).Int("attempt", attempt).
				Msg("response failed parsing")
			lastErr = parseErr
		} else {
			if ctx.Err() != nil {
				return domain.Recommendation{}, ctx.Err()
			}
			lastErr = err

			var pe *ProviderError
			if errors.As(err, &pe) && !pe.Transient() {
				// Non-transient backend failure: retrying the same call
				// cannot help, advance the chain.
				return domain.Recommendation{}, err
			}
			log.Debug().Err(err).Str("provider", provider.Name()).Int("attempt", attempt).
				Msg("transient provider failure")
		}

		if attempt < o.cfg.Policy.MaxAttempts {
			if err := o.sleeper.Sleep(ctx, o.cfg.Policy.Delay(attempt)); err != nil {
				return domain.Recommendation{}, err
			}
		}
	}
	return domain.Recommendation{}, lastErr
}

func (o *Orchestrator) callOnce(ctx context.Context, provider Provider, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()
	return provider.Generate(callCtx, prompt)
}
