package model

import "time"

// Config holds the complete stipcheck configuration
type Config struct {
	Document     DocumentConfig    `yaml:"document"`
	LLM          LLMConfig         `yaml:"llm"`
	Cache        CacheConfig       `yaml:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency"`
	Output       OutputConfig      `yaml:"output"`

	// RoutesFile optionally overrides the built-in category route table
	RoutesFile string `yaml:"routes_file,omitempty"`
}

// DocumentConfig controls document text extraction
type DocumentConfig struct {
	FirstPage      int           `yaml:"first_page"` // 1-indexed, 0 means from the start
	LastPage       int           `yaml:"last_page"`  // Inclusive, 0 means to the end; clamped past EOF
	PDFToText      string        `yaml:"pdftotext"`  // External extractor binary
	ExtractTimeout time.Duration `yaml:"extract_timeout"`
}

// LLMConfig holds oracle provider configuration
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"` // Prefer env vars over the config file
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`

	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// CacheConfig controls oracle response caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Dir     string        `yaml:"dir,omitempty"` // Disk tier location; empty keeps the cache memory-only
}

// RateLimitConfig throttles oracle calls
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// ConcurrencyConfig controls batch processing parallelism.
// Within one document the requirement loop is always sequential.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	Dir     string `yaml:"dir,omitempty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{
			PDFToText:      "pdftotext",
			ExtractTimeout: 2 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1.0,
			BurstSize:         2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
