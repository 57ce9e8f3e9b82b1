package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

type Config struct {
	// Supabase (identity store)
	SupabaseURL string
	SupabaseKey string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Gemini API
	GeminiAPIKey     string
	GeminiAPIBaseURL string

	// Session
	SessionSecret string

	// Database (optional, used for boot-time migrations only)
	DatabaseURL string

	// Server
	Port         string
	Environment  string
	BaseURL      string
	ClientURL    string
	DataDir      string
	GeneratedDir string
}

func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiAPIBaseURL: getEnv("GEMINI_API_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/"),

		SessionSecret: getEnv("SESSION_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		BaseURL:      getEnv("BASE_URL", ""),
		ClientURL:    getEnv("CLIENT_URL", "http://localhost:5173"),
		DataDir:      getEnv("DATA_DIR", "data"),
		GeneratedDir: getEnv("GENERATED_DIR", "generated"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate collects every missing required variable so the boot failure
// reports them all at once instead of one per restart.
func (c *Config) Validate() error {
	required := map[string]string{
		"SUPABASE_URL":         c.SupabaseURL,
		"SUPABASE_KEY":         c.SupabaseKey,
		"GOOGLE_CLIENT_ID":     c.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": c.GoogleClientSecret,
		"SESSION_SECRET":       c.SessionSecret,
		"GEMINI_API_KEY":       c.GeminiAPIKey,
	}

	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction controls cookie security attributes and gin mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ServerBaseURL is the externally visible origin of this server, used to
// build the OAuth callback URL.
func (c *Config) ServerBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return "http://localhost:" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
