// Package config loads service configuration from the environment. The .env
// file is loaded in main for local development using godotenv.Load().
package config

import (
	"os"
	"strconv"
	"time"
)

// Provider and lead-store selector values.
const (
	ProviderVapi   = "vapi"
	ProviderRetell = "retell"

	LeadStoreAirtable = "airtable"
	LeadStoreHubSpot  = "hubspot"
)

// Config holds the application configuration.
type Config struct {
	Port string

	// Provider selects the active voice vendor: "vapi" or "retell".
	Provider string
	// LeadStore selects the CRM backend: "airtable" or "hubspot".
	LeadStore string

	// Vapi configuration
	VapiAPIKey        string
	VapiAssistantID   string
	VapiPhoneNumberID string
	VapiWebhookSecret string

	// Retell configuration. The LLM id is only needed by the provisioning
	// command, which updates the prompt on the LLM backing the agent.
	RetellAPIKey     string
	RetellAgentID    string
	RetellFromNumber string
	RetellLLMID      string

	// Airtable configuration
	AirtableToken     string
	AirtableBaseID    string
	AirtableTableName string

	// HubSpot configuration
	HubSpotAccessToken string

	// OpenAI configuration for transcript analysis
	OpenAIAPIKey string
	OpenAIModel  string

	// Redis configuration for end-of-call deduplication. Empty addr falls
	// back to the in-process seen-set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CallPacing is the spacing between sequential call placements.
	CallPacing time.Duration

	EnableCORS bool
}

// LoadFromEnv builds the configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		Port: getEnvOrDefault("PORT", "8000"),

		Provider:  getEnvOrDefault("VOICE_PROVIDER", ProviderVapi),
		LeadStore: getEnvOrDefault("LEAD_STORE", LeadStoreAirtable),

		VapiAPIKey:        getEnvOrDefault("VAPI_API_KEY", ""),
		VapiAssistantID:   getEnvOrDefault("VAPI_ASSISTANT_ID", ""),
		VapiPhoneNumberID: getEnvOrDefault("VAPI_PHONE_ID", ""),
		VapiWebhookSecret: getEnvOrDefault("VAPI_WEBHOOK_SECRET", ""),

		RetellAPIKey:     getEnvOrDefault("RETELL_API_KEY", ""),
		RetellAgentID:    getEnvOrDefault("RETELL_AGENT_ID", ""),
		RetellFromNumber: getEnvOrDefault("RETELL_FROM_NUMBER", ""),
		RetellLLMID:      getEnvOrDefault("RETELL_LLM_ID", ""),

		AirtableToken:     getEnvOrDefault("AIRTABLE_ACCESS_TOKEN", ""),
		AirtableBaseID:    getEnvOrDefault("AIRTABLE_BASE_ID", ""),
		AirtableTableName: getEnvOrDefault("AIRTABLE_TABLE_NAME", ""),

		HubSpotAccessToken: getEnvOrDefault("HUBSPOT_API_KEY", ""),

		OpenAIAPIKey: getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsIntOrDefault("REDIS_DB", 0),

		CallPacing: getEnvAsDurationOrDefault("CALL_PACING", time.Second),

		EnableCORS: getEnvAsBoolOrDefault("ENABLE_CORS", true),
	}
}

// getEnvOrDefault gets environment variable or returns default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default.
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault gets environment variable as bool or returns default.
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault gets environment variable as duration or returns default.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
