package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// AuthSettings configuration for serve-mode authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// IndexSettings configuration for markdown discovery and sectionizing
type IndexSettings struct {
	Depth       int      `mapstructure:"depth"` // negative = unbounded
	Extensions  []string `mapstructure:"extensions"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
	Parallelism int      `mapstructure:"parallelism"`
	Pretty      bool     `mapstructure:"pretty"`
}

// SearchSettings configuration for the persisted section search index
type SearchSettings struct {
	IndexDir   string `mapstructure:"index_dir"`
	MaxResults int    `mapstructure:"max_results"`
}

// Settings application settings
type Settings struct {
	Transport string         `mapstructure:"transport"`
	Host      string         `mapstructure:"host"`
	Port      int            `mapstructure:"port"`
	Auth      AuthSettings   `mapstructure:"auth"`
	Index     IndexSettings  `mapstructure:"index"`
	Search    SearchSettings `mapstructure:"search"`
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("transport", "stdio")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("auth.type", AuthTypeNone)

	// Indexing defaults
	v.SetDefault("index.depth", -1)
	v.SetDefault("index.extensions", []string{"md", "markdown"})
	v.SetDefault("index.max_file_size", int64(2*1024*1024)) // 2MB
	v.SetDefault("index.parallelism", 4)
	v.SetDefault("index.pretty", true)

	// Search defaults
	v.SetDefault("search.index_dir", DefaultIndexBaseDir())
	v.SetDefault("search.max_results", 20)

	// Environment variables
	v.SetEnvPrefix("MDSECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("auth.type", "MDSECT_AUTH_TYPE")
	_ = v.BindEnv("auth.basic.username", "MDSECT_AUTH_BASIC_USERNAME")
	_ = v.BindEnv("auth.basic.password", "MDSECT_AUTH_BASIC_PASSWORD")
	_ = v.BindEnv("auth.api_keys", "MDSECT_AUTH_API_KEYS")

	// Indexing env var bindings
	_ = v.BindEnv("index.depth", "MDSECT_INDEX_DEPTH")
	_ = v.BindEnv("index.extensions", "MDSECT_INDEX_EXTENSIONS")
	_ = v.BindEnv("index.max_file_size", "MDSECT_INDEX_MAX_FILE_SIZE")
	_ = v.BindEnv("index.parallelism", "MDSECT_INDEX_PARALLELISM")
	_ = v.BindEnv("index.pretty", "MDSECT_INDEX_PRETTY")

	// Search env var bindings
	_ = v.BindEnv("search.index_dir", "MDSECT_SEARCH_INDEX_DIR")
	_ = v.BindEnv("search.max_results", "MDSECT_SEARCH_MAX_RESULTS")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("transport", flags.Lookup("transport"))
		_ = v.BindPFlag("host", flags.Lookup("host"))
		_ = v.BindPFlag("port", flags.Lookup("port"))
		_ = v.BindPFlag("auth.type", flags.Lookup("auth-type"))
		_ = v.BindPFlag("auth.basic.username", flags.Lookup("auth-basic-username"))
		_ = v.BindPFlag("auth.basic.password", flags.Lookup("auth-basic-password"))
		_ = v.BindPFlag("auth.api_keys", flags.Lookup("auth-api-keys"))

		// Indexing CLI flags
		_ = v.BindPFlag("index.depth", flags.Lookup("depth"))
		_ = v.BindPFlag("index.extensions", flags.Lookup("extensions"))
		_ = v.BindPFlag("index.max_file_size", flags.Lookup("max-file-size"))
		_ = v.BindPFlag("index.parallelism", flags.Lookup("parallelism"))
		_ = v.BindPFlag("index.pretty", flags.Lookup("pretty"))

		// Search CLI flags
		_ = v.BindPFlag("search.index_dir", flags.Lookup("index-dir"))
		_ = v.BindPFlag("search.max_results", flags.Lookup("max-results"))
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of API keys if provided via env var as comma-separated string
	apiKeysEnv := os.Getenv("MDSECT_AUTH_API_KEYS")
	if apiKeysEnv != "" {
		if len(settings.Auth.APIKeys) == 0 || (len(settings.Auth.APIKeys) == 1 && strings.Contains(settings.Auth.APIKeys[0], ",")) {
			settings.Auth.APIKeys = strings.Split(apiKeysEnv, ",")
		}
	}

	// Trim spaces from API keys
	for i := range settings.Auth.APIKeys {
		settings.Auth.APIKeys[i] = strings.TrimSpace(settings.Auth.APIKeys[i])
	}

	// Handle explicit parsing of extensions if provided via env var as comma-separated string
	extensionsEnv := os.Getenv("MDSECT_INDEX_EXTENSIONS")
	if extensionsEnv != "" {
		if len(settings.Index.Extensions) == 0 || (len(settings.Index.Extensions) == 1 && strings.Contains(settings.Index.Extensions[0], ",")) {
			settings.Index.Extensions = strings.Split(extensionsEnv, ",")
		}
	}

	// Trim spaces from extensions
	for i := range settings.Index.Extensions {
		settings.Index.Extensions[i] = strings.TrimSpace(settings.Index.Extensions[i])
	}

	// Filter out empty extensions
	settings.Index.Extensions = filterEmptyStrings(settings.Index.Extensions)

	// Expand home directory in index_dir
	settings.Search.IndexDir = expandHomeDir(settings.Search.IndexDir)

	return &settings, nil
}

// DefaultIndexBaseDir returns the default base directory for the section index
func DefaultIndexBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mdsect"
	}
	return filepath.Join(home, ".mdsect")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks for conflicting configurations.
// Returns an error if the settings contain mutually exclusive or incomplete auth config.
func ValidateSettings(s *Settings) error {
	// Validate transport type
	switch s.Transport {
	case "stdio", "sse":
		// valid
	default:
		return errors.New("transport must be 'stdio' or 'sse', got: " + s.Transport)
	}

	hasBasicCreds := s.Auth.Basic.Username != "" || s.Auth.Basic.Password != ""
	hasAPIKeys := len(s.Auth.APIKeys) > 0

	switch s.Auth.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if s.Auth.Basic.Username == "" || s.Auth.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + s.Auth.Type)
	}

	// Validate indexing settings
	if err := validateIndexSettings(&s.Index); err != nil {
		return err
	}

	if s.Search.MaxResults <= 0 {
		return errors.New("max-results must be positive")
	}

	return nil
}

// validateIndexSettings validates the markdown indexing configuration
func validateIndexSettings(i *IndexSettings) error {
	if len(i.Extensions) == 0 {
		return errors.New("at least one markdown extension is required (extensions)")
	}

	if i.MaxFileSize <= 0 {
		return errors.New("max-file-size must be positive")
	}

	if i.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got: %d", i.Parallelism)
	}

	return nil
}
