package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg := LoadFromEnv()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ProviderVapi, cfg.Provider)
	assert.Equal(t, LeadStoreAirtable, cfg.LeadStore)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, time.Second, cfg.CallPacing)
	assert.True(t, cfg.EnableCORS)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("VOICE_PROVIDER", ProviderRetell)
	t.Setenv("LEAD_STORE", LeadStoreHubSpot)
	t.Setenv("RETELL_LLM_ID", "llm_1")
	t.Setenv("CALL_PACING", "2s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ENABLE_CORS", "false")

	cfg := LoadFromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderRetell, cfg.Provider)
	assert.Equal(t, LeadStoreHubSpot, cfg.LeadStore)
	assert.Equal(t, "llm_1", cfg.RetellLLMID)
	assert.Equal(t, 2*time.Second, cfg.CallPacing)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.EnableCORS)
}

func TestLoadFromEnvIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("CALL_PACING", "soon")
	t.Setenv("REDIS_DB", "three")
	t.Setenv("ENABLE_CORS", "yep")

	cfg := LoadFromEnv()

	assert.Equal(t, time.Second, cfg.CallPacing)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.True(t, cfg.EnableCORS)
}
