// Package call drives the two halves of the reactivation lifecycle: the
// outbound batch that places calls, and the inbound end-of-call pipeline the
// webhook handler runs when a call reports back. The two paths share no
// in-process state; correlation is by the lead id echoed in the provider's
// variable mapping.
package call

import (
	"context"
	"time"

	"github.com/techzoneai/revive-voice-service/internal/analysis"
	"github.com/techzoneai/revive-voice-service/internal/dedupe"
	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/leadstore"
	"github.com/techzoneai/revive-voice-service/internal/provider"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultCallPacing is the minimum spacing between call placements, keeping
// the batch inside provider rate limits.
const DefaultCallPacing = time.Second

// Service orchestrates lead reactivation calls.
type Service struct {
	store    leadstore.Store
	provider provider.VoiceProvider
	analyzer *analysis.Analyzer
	seen     dedupe.SeenSet
	builder  ParamsBuilder
	preCall  PreCallHook
	pacer    *rate.Limiter
}

// Option customizes a Service.
type Option func(*Service)

// WithPreCallHook installs a pre-call processing strategy.
func WithPreCallHook(hook PreCallHook) Option {
	return func(s *Service) { s.preCall = hook }
}

// WithCallPacing sets the spacing between call placements.
func WithCallPacing(d time.Duration) Option {
	return func(s *Service) { s.pacer = rate.NewLimiter(rate.Every(d), 1) }
}

// NewService wires the orchestrator. The seen-set may be nil, in which case
// redelivered end-of-call reports are processed again (at-least-once).
func NewService(store leadstore.Store, prov provider.VoiceProvider, analyzer *analysis.Analyzer, seen dedupe.SeenSet, builder ParamsBuilder, opts ...Option) *Service {
	s := &Service{
		store:    store,
		provider: prov,
		analyzer: analyzer,
		seen:     seen,
		builder:  builder,
		pacer:    rate.NewLimiter(rate.Every(DefaultCallPacing), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches the requested leads and places one call per lead, strictly
// sequentially with pacing between placements. An empty id list falls back
// to every lead still in status NEW. Failures for one lead are logged and
// skipped; the batch never aborts. Run returns once every call has been
// initiated; completion arrives later through the webhook path.
func (s *Service) Run(ctx context.Context, leadIDs []string) (RunSummary, error) {
	summary := RunSummary{Requested: len(leadIDs)}

	var (
		leads []domain.Lead
		err   error
	)
	if len(leadIDs) == 0 {
		leads, err = s.store.FetchByStatus(ctx, domain.LeadStatusNew)
	} else {
		leads, err = s.store.Fetch(ctx, leadIDs)
	}
	if err != nil {
		return summary, err
	}
	summary.Loaded = len(leads)
	if len(leads) == 0 {
		logger.Base().Info("no leads found for run", zap.Int("requested", len(leadIDs)))
		return summary, nil
	}

	for _, lead := range leads {
		if s.preCall != nil {
			if err := s.preCall(ctx, &lead); err != nil {
				logger.Base().Warn("pre-call processing failed, skipping lead",
					zap.String("lead_id", lead.ID), zap.Error(err))
				summary.Skipped++
				continue
			}
		}

		params := s.builder.Build(lead)
		if params.PhoneNumber == "" {
			logger.Base().Warn("lead has no phone number, skipping",
				zap.String("lead_id", lead.ID))
			summary.Skipped++
			continue
		}

		if err := s.pacer.Wait(ctx); err != nil {
			return summary, err
		}

		callRef, err := s.provider.PlaceCall(ctx, params)
		if err != nil {
			logger.Base().Error("call placement failed, skipping lead",
				zap.String("lead_id", lead.ID),
				zap.String("provider", s.provider.Name()),
				zap.Error(err))
			summary.Skipped++
			continue
		}

		logger.Base().Info("call placed",
			zap.String("lead_id", lead.ID),
			zap.String("call_ref", callRef),
			zap.String("provider", s.provider.Name()))
		summary.Called++
	}

	return summary, nil
}

// HandleEndOfCall runs the post-call pipeline for one end-of-call payload:
// extract the outcome, drop duplicates, analyze the transcript, and commit
// the reconciled update to the lead store. Analysis failure degrades the
// update rather than failing it; extraction and store failures propagate to
// the webhook boundary.
func (s *Service) HandleEndOfCall(ctx context.Context, body []byte) error {
	outcome, err := s.provider.ExtractOutcome(body)
	if err != nil {
		return err
	}

	leadID := outcome.LeadID()
	if leadID == "" {
		return &domain.MalformedPayloadError{Msg: "end-of-call report carries no lead id variable"}
	}

	recorded := false
	if s.seen != nil {
		duplicate, err := s.seen.Seen(ctx, outcome.CallID)
		if err != nil {
			// Dedupe is best-effort; losing it degrades to at-least-once.
			logger.Base().Warn("seen-set unavailable, processing without dedupe",
				zap.String("call_id", outcome.CallID), zap.Error(err))
		} else if duplicate {
			logger.Base().Info("duplicate end-of-call report dropped",
				zap.String("call_id", outcome.CallID),
				zap.String("lead_id", leadID))
			return nil
		} else {
			recorded = true
		}
	}

	var result *domain.CallAnalysis
	if s.analyzer != nil {
		a, err := s.analyzer.Analyze(ctx, outcome.LeadName(), outcome.Transcript)
		if err != nil {
			logger.Base().Warn("transcript analysis failed, updating CRM without interest fields",
				zap.String("call_id", outcome.CallID),
				zap.String("lead_id", leadID),
				zap.Error(err))
		} else {
			result = &a
		}
	}

	updates := Reconcile(outcome, result)
	if err := s.store.Update(ctx, leadID, updates); err != nil {
		// Release the call id so the provider's redelivery is not dropped
		// as a duplicate while the outcome remains uncommitted.
		if recorded {
			if ferr := s.seen.Forget(ctx, outcome.CallID); ferr != nil {
				logger.Base().Warn("failed to release call id from seen-set, redelivery may be dropped",
					zap.String("call_id", outcome.CallID), zap.Error(ferr))
			}
		}
		return err
	}

	logger.Base().Info("lead reconciled",
		zap.String("lead_id", leadID),
		zap.String("call_id", outcome.CallID),
		zap.Bool("analyzed", result != nil))
	return nil
}
