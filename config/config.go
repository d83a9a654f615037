package config

// Config structure
type Config struct {
	LLMProvider string `json:"llmProvider"` // "OpenAI", "OpenRouter" or "Anthropic"
	APIKey      string `json:"apiKey"`
	BaseURL     string `json:"baseUrl"`
	ModelName   string `json:"modelName"`
	MaxTokens   int    `json:"maxTokens"`

	DataCacheDir    string `json:"dataCacheDir"`    // root for extracted templates and template records
	ExportDir       string `json:"exportDir"`       // generated .pptx files
	MaxUploadMB     int    `json:"maxUploadMb"`     // advisory upload bound, enforced by the caller
	CleanupMaxAgeHr int    `json:"cleanupMaxAgeHr"` // template records older than this are purged
	DetailedLog     bool   `json:"detailedLog"`
	Language        string `json:"language"`
}

// Defaults returns the configuration used when no config file exists yet.
func Defaults() Config {
	return Config{
		LLMProvider:     "OpenAI",
		ModelName:       "gpt-3.5-turbo",
		MaxTokens:       3000,
		MaxUploadMB:     10,
		CleanupMaxAgeHr: 24,
		Language:        "en",
	}
}
