package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Acquire AcquireConfig
	LLM     LLMConfig
	Invoice InvoiceConfig
}

// AcquireConfig holds text-acquisition configuration
type AcquireConfig struct {
	Tesseract          string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang      string // default "eng"
	TessdataDir        string
	UpscaleThresholdPx int     // upscale images whose smaller dimension is below this
	UpscaleFactor      float64 // default 2.0
}

// LLMConfig holds interpretation-engine configuration
type LLMConfig struct {
	Provider    string // "openai" | "gemini"
	Model       string
	APIKey      string
	BaseURL     string // OpenAI-compatible endpoints only (e.g. DeepSeek)
	Temperature float32
	Timeout     time.Duration
}

// InvoiceConfig holds validation configuration
type InvoiceConfig struct {
	ReconcileTolerance float64 // currency units, default 0.01
	DefaultCurrency    string  // ISO 4217, default "USD"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Acquire: AcquireConfig{
			Tesseract:          getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:      getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:        getEnv("TESSDATA_PREFIX", ""),
			UpscaleThresholdPx: getEnvAsInt("OCR_UPSCALE_THRESHOLD_PX", 2000),
			UpscaleFactor:      getEnvAsFloat64("OCR_UPSCALE_FACTOR", 2.0),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			Model:       getEnv("LLM_MODEL", ""),
			APIKey:      getEnv("LLM_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Invoice: InvoiceConfig{
			ReconcileTolerance: getEnvAsFloat64("RECONCILE_TOLERANCE", 0.01),
			DefaultCurrency:    getEnv("DEFAULT_CURRENCY", "USD"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "LLM_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.Provider != "openai" && c.LLM.Provider != "gemini" {
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai or gemini", ErrInvalidInput)
	}
	if c.Invoice.ReconcileTolerance < 0 {
		return NewAppError("CONFIG_ERROR", "RECONCILE_TOLERANCE must be >= 0", ErrInvalidInput)
	}
	return nil
}
