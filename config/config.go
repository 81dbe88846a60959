package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Price source names accepted in pricing.order
const (
	SourceMarketplace = "marketplace"
	SourceReference   = "reference"
	SourceWeb         = "web"
	SourceEstimate    = "estimate"
	SourceLinks       = "links"
)

// Vision provider defaults
const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Vision    VisionConfig
	Search    SearchConfig
	Reference ReferenceConfig
	Pricing   PricingConfig
	Image     ImageConfig
	History   HistoryConfig
	Dataset   DatasetConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionConfig holds vision-language API configuration
type VisionConfig struct {
	Provider string        `mapstructure:"provider"` // "gemini" or "openai"
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SearchConfig holds web search API configuration
type SearchConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	EngineID    string        `mapstructure:"engine_id"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ResultCount int           `mapstructure:"result_count"`
}

// Enabled reports whether search credentials are configured
func (s SearchConfig) Enabled() bool {
	return s.APIKey != "" && s.EngineID != ""
}

// ReferenceConfig holds the reference spec-site scrape configuration
type ReferenceConfig struct {
	SiteName      string        `mapstructure:"site_name"`
	Label         string        `mapstructure:"label"`
	PriceSelector string        `mapstructure:"price_selector"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// PricingConfig holds price cascade configuration
type PricingConfig struct {
	Order              []string `mapstructure:"order"`
	MarketplaceDomains []string `mapstructure:"marketplace_domains"`
	LocalGlyph         string   `mapstructure:"local_glyph"`
	WebGlyphs          []string `mapstructure:"web_glyphs"`
	Country            string   `mapstructure:"country"`
	CurrencyCode       string   `mapstructure:"currency_code"`
	ConversionRate     float64  `mapstructure:"conversion_rate"`
	// ConversionCurrency is the currency ConversionRate converts from
	ConversionCurrency string   `mapstructure:"conversion_currency"`
}

// ImageConfig holds limits for uploaded images and the capture size used by the page
type ImageConfig struct {
	MaxBytes     int `mapstructure:"max_bytes"`
	TargetWidth  int `mapstructure:"target_width"`
	TargetHeight int `mapstructure:"target_height"`
}

// HistoryConfig holds scan history configuration
type HistoryConfig struct {
	Type     string `mapstructure:"type"` // "none", "memory", "sqlite" or "postgres"
	DSN      string `mapstructure:"dsn"`
	Capacity int    `mapstructure:"capacity"`
}

// DatasetConfig holds configuration for the dataset crawler command
type DatasetConfig struct {
	SerpAPIKey        string        `mapstructure:"serpapi_key"`
	SerpAPIBaseURL    string        `mapstructure:"serpapi_base_url"`
	DataDir           string        `mapstructure:"data_dir"`
	MaxImagesPerModel int           `mapstructure:"max_images_per_model"`
	MinImagesPerModel int           `mapstructure:"min_images_per_model"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
	LookupPrices      bool          `mapstructure:"lookup_prices"`
}

// Load loads the server configuration from environment variables and config files
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadCrawler loads the configuration for the dataset crawler.
// The vision API key is not required there.
func LoadCrawler() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := validateCrawler(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/prodscan/")

	// PRODSCAN_VISION_API_KEY -> vision.api_key
	v.SetEnvPrefix("PRODSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	applyProviderDefaults(&config.Vision)

	return &config, nil
}

// applyProviderDefaults swaps the Gemini defaults for OpenAI ones when the openai
// provider is selected without an explicit endpoint or model
func applyProviderDefaults(vision *VisionConfig) {
	if vision.Provider != "openai" {
		return
	}
	if vision.BaseURL == defaultGeminiBaseURL {
		// Empty lets the SDK use its own endpoint
		vision.BaseURL = ""
	}
	if vision.Model == defaultGeminiModel {
		vision.Model = defaultOpenAIModel
	}
}

// setDefaults sets default configuration values.
// Secrets get empty defaults so AutomaticEnv picks them up during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "2502")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Vision defaults
	v.SetDefault("vision.provider", "gemini")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", defaultGeminiBaseURL)
	v.SetDefault("vision.model", defaultGeminiModel)
	v.SetDefault("vision.timeout", "10s")

	// Search defaults
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("search.timeout", "10s")
	v.SetDefault("search.result_count", 5)

	// Reference site defaults
	v.SetDefault("reference.site_name", "gsmarena")
	v.SetDefault("reference.label", "GSM Arena")
	v.SetDefault("reference.price_selector", `td[data-spec="price"]`)
	v.SetDefault("reference.user_agent", "Mozilla/5.0")
	v.SetDefault("reference.timeout", "10s")

	// Pricing defaults
	v.SetDefault("pricing.order", []string{SourceMarketplace, SourceReference, SourceWeb, SourceEstimate, SourceLinks})
	v.SetDefault("pricing.marketplace_domains", []string{"shopee.co.th", "lazada.co.th"})
	v.SetDefault("pricing.local_glyph", "฿")
	v.SetDefault("pricing.web_glyphs", []string{"฿", "$", "€", "£"})
	v.SetDefault("pricing.country", "Thailand")
	v.SetDefault("pricing.currency_code", "THB")
	v.SetDefault("pricing.conversion_rate", 0.0)
	v.SetDefault("pricing.conversion_currency", "EUR")

	// Image defaults
	v.SetDefault("image.max_bytes", 10<<20) // 10 MiB
	v.SetDefault("image.target_width", 640)
	v.SetDefault("image.target_height", 480)

	// History defaults
	v.SetDefault("history.type", "none")
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.capacity", 1000)

	// Dataset crawler defaults
	v.SetDefault("dataset.serpapi_key", "")
	v.SetDefault("dataset.serpapi_base_url", "https://serpapi.com/search.json")
	v.SetDefault("dataset.data_dir", "image_data_serpapi")
	v.SetDefault("dataset.max_images_per_model", 10)
	v.SetDefault("dataset.min_images_per_model", 5)
	v.SetDefault("dataset.requests_per_second", 0.5)
	v.SetDefault("dataset.download_timeout", "10s")
	v.SetDefault("dataset.max_retries", 3)
	v.SetDefault("dataset.retry_base_delay", "1s")
	v.SetDefault("dataset.lookup_prices", true)
}

// validate validates the server configuration
func validate(config *Config) error {
	if config.Vision.APIKey == "" {
		return fmt.Errorf("vision API key is required (set PRODSCAN_VISION_API_KEY)")
	}

	if config.Vision.Provider != "gemini" && config.Vision.Provider != "openai" {
		return fmt.Errorf("vision provider must be 'gemini' or 'openai', got: %s", config.Vision.Provider)
	}

	if config.Image.MaxBytes <= 0 {
		return fmt.Errorf("image max_bytes must be positive, got: %d", config.Image.MaxBytes)
	}

	if err := validatePricing(config.Pricing); err != nil {
		return err
	}

	return validateHistory(config.History)
}

// validateCrawler validates the dataset crawler configuration
func validateCrawler(config *Config) error {
	if config.Dataset.SerpAPIKey == "" {
		return fmt.Errorf("SerpAPI key is required (set PRODSCAN_DATASET_SERPAPI_KEY)")
	}

	if config.Dataset.MaxImagesPerModel <= 0 {
		return fmt.Errorf("dataset max_images_per_model must be positive, got: %d", config.Dataset.MaxImagesPerModel)
	}

	if config.Dataset.MinImagesPerModel > config.Dataset.MaxImagesPerModel {
		return fmt.Errorf("dataset min_images_per_model (%d) exceeds max_images_per_model (%d)",
			config.Dataset.MinImagesPerModel, config.Dataset.MaxImagesPerModel)
	}

	if config.Dataset.RequestsPerSecond <= 0 {
		return fmt.Errorf("dataset requests_per_second must be positive, got: %v", config.Dataset.RequestsPerSecond)
	}

	return validatePricing(config.Pricing)
}

func validatePricing(pricing PricingConfig) error {
	if len(pricing.Order) == 0 {
		return fmt.Errorf("pricing order must name at least one source")
	}

	for _, name := range pricing.Order {
		switch name {
		case SourceMarketplace, SourceReference, SourceWeb, SourceEstimate, SourceLinks:
		default:
			return fmt.Errorf("unknown price source in pricing order: %s", name)
		}
	}

	if pricing.ConversionRate < 0 {
		return fmt.Errorf("pricing conversion_rate must not be negative, got: %v", pricing.ConversionRate)
	}

	if pricing.ConversionRate > 0 && len(pricing.ConversionCurrency) != 3 {
		return fmt.Errorf("pricing conversion_currency must be a 3-letter currency code, got: %q", pricing.ConversionCurrency)
	}

	return nil
}

func validateHistory(history HistoryConfig) error {
	switch history.Type {
	case "none", "memory":
		return nil
	case "sqlite", "postgres":
		if history.DSN == "" {
			return fmt.Errorf("history DSN is required when history type is '%s'", history.Type)
		}
		return nil
	default:
		return fmt.Errorf("history type must be 'none', 'memory', 'sqlite' or 'postgres', got: %s", history.Type)
	}
}
