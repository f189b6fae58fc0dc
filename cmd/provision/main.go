// Command provision creates or updates the provider-side voice assistant
// with the campaign's agent prompt. Run it once per environment after
// changing the prompt; the server never mutates provider-side configuration.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/techzoneai/revive-voice-service/internal/analysis"
	"github.com/techzoneai/revive-voice-service/internal/config"
	"github.com/techzoneai/revive-voice-service/internal/provider"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

const assistantName = "Lead Reactivation Agent"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("info: .env file not found or skipped: %v", err)
	}

	if _, err := logger.Init(os.Getenv("LOG_ENV")); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.LoadFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Provider {
	case config.ProviderVapi:
		if cfg.VapiAPIKey == "" {
			logger.Base().Fatal("vapi provisioning requires VAPI_API_KEY")
		}
		p := provider.NewVapiProvider(cfg.VapiAPIKey, cfg.VapiWebhookSecret)
		id, err := p.ProvisionAssistant(ctx, cfg.VapiAssistantID, assistantName, analysis.AgentPrompt)
		if err != nil {
			logger.Base().Fatal("assistant provisioning failed", zap.Error(err))
		}
		logger.Base().Info("vapi assistant provisioned", zap.String("assistant_id", id))

	case config.ProviderRetell:
		if cfg.RetellAPIKey == "" {
			logger.Base().Fatal("retell provisioning requires RETELL_API_KEY")
		}
		p := provider.NewRetellProvider(cfg.RetellAPIKey)
		if err := p.ProvisionAgentPrompt(ctx, cfg.RetellLLMID, analysis.AgentPrompt); err != nil {
			logger.Base().Fatal("agent prompt provisioning failed", zap.Error(err))
		}
		logger.Base().Info("retell agent prompt provisioned", zap.String("llm_id", cfg.RetellLLMID))

	default:
		logger.Base().Fatal("unknown voice provider", zap.String("provider", cfg.Provider))
	}
}
