package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/techzoneai/revive-voice-service/internal/analysis"
	"github.com/techzoneai/revive-voice-service/internal/config"
	"github.com/techzoneai/revive-voice-service/internal/dedupe"
	"github.com/techzoneai/revive-voice-service/internal/leadstore"
	"github.com/techzoneai/revive-voice-service/internal/provider"
	"github.com/techzoneai/revive-voice-service/internal/services/call"
	"github.com/techzoneai/revive-voice-service/internal/tools"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// HandlerManager wires the lead store, voice provider, analyzer and call
// service, and registers every route.
type HandlerManager struct {
	config   *config.Config
	service  *call.Service
	provider provider.VoiceProvider
	registry *tools.Registry
}

// NewHandlerManager creates and initializes all handlers and services.
func NewHandlerManager(cfg *config.Config) (*HandlerManager, error) {
	store, err := buildLeadStore(cfg)
	if err != nil {
		return nil, err
	}

	prov, callCfg, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	var analyzer *analysis.Analyzer
	if cfg.OpenAIAPIKey != "" {
		analyzer = analysis.NewAnalyzer(analysis.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	} else {
		logger.Base().Warn("openai api key not configured, transcripts will not be analyzed")
	}

	seen := buildSeenSet(cfg)

	// The agent only needs the appointment-booking tool for this campaign.
	registry := tools.NewRegistry(map[string]tools.Func{
		"bookAppointment": tools.BookAppointment(tools.LoggedCalendar{}),
	})

	service := call.NewService(store, prov, analyzer, seen,
		call.NewStandardParamsBuilder(callCfg),
		call.WithCallPacing(cfg.CallPacing),
	)

	return &HandlerManager{
		config:   cfg,
		service:  service,
		provider: prov,
		registry: registry,
	}, nil
}

// SetupAllRoutes sets up all routes with middleware.
func (hm *HandlerManager) SetupAllRoutes(router *mux.Router) {
	router.Use(LoggingMiddleware)
	router.Use(ValidationMiddleware)
	if hm.config.EnableCORS {
		router.Use(CORSMiddleware)
	}

	NewTriggerHandler(hm.service).SetupTriggerRoutes(router)
	NewWebhookHandler(hm.service, hm.provider, hm.registry).SetupWebhookRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	logger.Base().Info("all application routes registered")
}

func buildLeadStore(cfg *config.Config) (leadstore.Store, error) {
	switch cfg.LeadStore {
	case config.LeadStoreAirtable:
		if cfg.AirtableToken == "" || cfg.AirtableBaseID == "" || cfg.AirtableTableName == "" {
			return nil, fmt.Errorf("airtable lead store requires AIRTABLE_ACCESS_TOKEN, AIRTABLE_BASE_ID and AIRTABLE_TABLE_NAME")
		}
		return leadstore.NewAirtableStore(cfg.AirtableToken, cfg.AirtableBaseID, cfg.AirtableTableName), nil
	case config.LeadStoreHubSpot:
		if cfg.HubSpotAccessToken == "" {
			return nil, fmt.Errorf("hubspot lead store requires HUBSPOT_API_KEY")
		}
		return leadstore.NewHubSpotStore(cfg.HubSpotAccessToken), nil
	default:
		return nil, fmt.Errorf("unknown lead store %q", cfg.LeadStore)
	}
}

func buildProvider(cfg *config.Config) (provider.VoiceProvider, call.CallConfig, error) {
	switch cfg.Provider {
	case config.ProviderVapi:
		if cfg.VapiAPIKey == "" {
			return nil, call.CallConfig{}, fmt.Errorf("vapi provider requires VAPI_API_KEY")
		}
		return provider.NewVapiProvider(cfg.VapiAPIKey, cfg.VapiWebhookSecret), call.CallConfig{
			AgentID:      cfg.VapiAssistantID,
			FromNumberID: cfg.VapiPhoneNumberID,
		}, nil
	case config.ProviderRetell:
		if cfg.RetellAPIKey == "" {
			return nil, call.CallConfig{}, fmt.Errorf("retell provider requires RETELL_API_KEY")
		}
		return provider.NewRetellProvider(cfg.RetellAPIKey), call.CallConfig{
			AgentID:      cfg.RetellAgentID,
			FromNumberID: cfg.RetellFromNumber,
		}, nil
	default:
		return nil, call.CallConfig{}, fmt.Errorf("unknown voice provider %q", cfg.Provider)
	}
}

func buildSeenSet(cfg *config.Config) dedupe.SeenSet {
	if cfg.RedisAddr == "" {
		logger.Base().Info("redis not configured, using in-process end-of-call dedupe")
		return dedupe.NewMemorySeenSet(dedupe.DefaultTTL)
	}
	seen, err := dedupe.NewRedisSeenSet(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, dedupe.DefaultTTL)
	if err != nil {
		logger.Base().Warn("failed to initialize redis seen-set, falling back to in-process dedupe",
			zap.Error(err))
		return dedupe.NewMemorySeenSet(dedupe.DefaultTTL)
	}
	logger.Base().Info("redis end-of-call dedupe initialized", zap.String("addr", cfg.RedisAddr))
	return seen
}
