package config

// ReasoningConfig holds the OpenRouter chat-completion settings
type ReasoningConfig struct {
	APIKey      string  `json:"-"` // Never serialize
	BaseURL     string  `json:"baseUrl"`
	Model       string  `json:"model"`
	Referer     string  `json:"referer"`
	AppTitle    string  `json:"appTitle"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	TimeoutMS   int     `json:"timeoutMs"`
}

// DefaultReasoningConfig reads the reasoning settings from the environment
func DefaultReasoningConfig() ReasoningConfig {
	return ReasoningConfig{
		APIKey:      getEnv("OPENROUTER_API_KEY", ""),
		BaseURL:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:       getEnv("OPENROUTER_MODEL", "@preset/invisinsights"),
		Referer:     getEnv("OPENROUTER_REFERER", "http://localhost"),
		AppTitle:    getEnv("OPENROUTER_TITLE", "InvisInsights"),
		Temperature: getEnvFloat("OPENROUTER_TEMPERATURE", 0.2),
		TopP:        getEnvFloat("OPENROUTER_TOP_P", 0.8),
		TimeoutMS:   getEnvInt("OPENROUTER_TIMEOUT_MS", 30000),
	}
}

// IsEnabled returns true if the reasoning API is configured
func (c ReasoningConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// CompletionsEndpoint returns the chat completions URL
func (c ReasoningConfig) CompletionsEndpoint() string {
	return c.BaseURL + "/chat/completions"
}
