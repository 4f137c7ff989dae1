package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"

	"github.com/thinko/swinelink/internal/domain"
)

const (
	DefaultBaseURL = "https://api.porkbun.com/api/json/v3"
	DefaultPort    = "3000"
	DefaultTimeout = 30 * time.Second

	// KeyringService is the OS keychain service holding the credentials.
	KeyringService = "swinelink"
	KeyringAPIKey  = "porkbun-apikey"
	KeyringSecret  = "porkbun-secretapikey"

	placeholderAPIKey    = "your_api_key_here"
	placeholderSecretKey = "your_secret_key_here"
)

// Config holds all application configuration
type Config struct {
	// Porkbun
	APIKey    string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration

	// Local state
	StateFile string
	DataDir   string

	// HTTP server
	Port          string
	HTTPAPIKeys   []string
	ManagementKey string

	// CLI output defaults
	Debug              bool
	FriendlyText       bool
	BasicText          bool
	HideRateLimitInfo  bool
	AcceptPriceWarning bool
	HideLinks          bool
	OnlyTLDs           string

	// ConfigFile is the user config file that was read, empty when none.
	ConfigFile string
	// CredentialSource names where the API key came from.
	CredentialSource string
}

// Loader reads configuration from the environment, the user config file,
// the OS keychain and a project .env file, in that order of precedence.
// It never writes output.
type Loader struct {
	HomeDir    string
	DotEnvPath string
	Getenv     func(string) string
	UseKeyring bool
}

// NewLoader returns a Loader for the current user and working directory.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		HomeDir:    home,
		DotEnvPath: ".env",
		Getenv:     os.Getenv,
		UseKeyring: os.Getenv("SWINELINK_NO_KEYRING") != "true",
	}
}

// Load loads configuration using NewLoader
func Load() (*Config, error) {
	return NewLoader().Load()
}

// UserConfigPaths lists the user config files, preferred first.
func (l *Loader) UserConfigPaths() []string {
	return []string{
		filepath.Join(l.HomeDir, ".config", "swinelink", "swinelink.conf"),
		filepath.Join(l.HomeDir, ".swinelink"),
	}
}

// Load resolves every setting. Missing credentials are not an error here;
// call Validate before talking to the API.
func (l *Loader) Load() (*Config, error) {
	src := &sources{getenv: l.Getenv}
	if src.getenv == nil {
		src.getenv = os.Getenv
	}

	// Missing files are fine
	if l.DotEnvPath != "" {
		if env, err := godotenv.Read(l.DotEnvPath); err == nil {
			src.dotenv = env
		}
	}

	cfg := &Config{}
	for _, path := range l.UserConfigPaths() {
		conf, err := godotenv.Read(path)
		if err == nil {
			src.user = conf
			cfg.ConfigFile = path
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.APIKey, cfg.CredentialSource = src.lookup("PORKBUN_API_KEY")
	cfg.SecretKey, _ = src.lookup("PORKBUN_SECRET_KEY")
	if l.UseKeyring {
		l.fillFromKeyring(cfg, src)
	}

	cfg.BaseURL = strings.TrimRight(src.get("PORKBUN_BASE_URL", DefaultBaseURL), "/")
	cfg.Port = src.get("PORT", DefaultPort)
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %s", cfg.Port)
	}

	timeout := src.get("SWINELINK_TIMEOUT", "")
	cfg.Timeout = DefaultTimeout
	if timeout != "" {
		d, err := parseTimeout(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SWINELINK_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	cfg.StateFile = src.get("SWINELINK_STATE_FILE", "")
	if cfg.StateFile == "" {
		cfg.StateFile = l.defaultStateFile()
	}
	cfg.DataDir = filepath.Dir(cfg.StateFile)

	cfg.ManagementKey = src.get("SWINELINK_MANAGEMENT_KEY", "")
	for _, key := range strings.Split(src.get("SWINELINK_API_KEYS", ""), ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			cfg.HTTPAPIKeys = append(cfg.HTTPAPIKeys, key)
		}
	}

	cfg.Debug = src.bool("SWINELINK_DEBUG")
	cfg.FriendlyText = src.bool("SWINELINK_FRIENDLY_TEXT")
	cfg.BasicText = src.bool("SWINELINK_BASIC_TEXT")
	cfg.HideRateLimitInfo = src.bool("SWINELINK_HIDE_RATELIMIT_INFO")
	cfg.AcceptPriceWarning = src.bool("SWINELINK_ACCEPT_PRICE_WARNING")
	cfg.HideLinks = src.bool("SWINELINK_HIDE_LINKS")
	cfg.OnlyTLDs = src.get("SWINELINK_ONLY_TLDS", "")

	return cfg, nil
}

// fillFromKeyring fills credentials the environment and user config file
// left empty. It outranks only the project .env file.
func (l *Loader) fillFromKeyring(cfg *Config, src *sources) {
	if cfg.CredentialSource == "dotenv" || cfg.APIKey == "" || cfg.APIKey == placeholderAPIKey {
		if v, err := keyring.Get(KeyringService, KeyringAPIKey); err == nil && v != "" {
			cfg.APIKey = v
			cfg.CredentialSource = "keyring"
		}
	}
	_, secretSource := src.lookup("PORKBUN_SECRET_KEY")
	if secretSource == "dotenv" || cfg.SecretKey == "" || cfg.SecretKey == placeholderSecretKey {
		if v, err := keyring.Get(KeyringService, KeyringSecret); err == nil && v != "" {
			cfg.SecretKey = v
		}
	}
}

func (l *Loader) defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = filepath.Join(l.HomeDir, ".config")
	}
	return filepath.Join(dir, "swinelink", "state.json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIKey == "" || c.APIKey == placeholderAPIKey {
		return fmt.Errorf("%w: PORKBUN_API_KEY is not set (run 'swinelink config init' or 'swinelink config login')", domain.ErrMissingCredentials)
	}
	if c.SecretKey == "" || c.SecretKey == placeholderSecretKey {
		return fmt.Errorf("%w: PORKBUN_SECRET_KEY is not set (run 'swinelink config init' or 'swinelink config login')", domain.ErrMissingCredentials)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("PORKBUN_BASE_URL is required")
	}
	return nil
}

// Redacted returns the settings for display with secrets masked.
func (c *Config) Redacted() map[string]string {
	configFile := c.ConfigFile
	if configFile == "" {
		configFile = "(none)"
	}
	return map[string]string{
		"PORKBUN_API_KEY":          mask(c.APIKey),
		"PORKBUN_SECRET_KEY":       mask(c.SecretKey),
		"PORKBUN_BASE_URL":         c.BaseURL,
		"PORT":                     c.Port,
		"SWINELINK_STATE_FILE":     c.StateFile,
		"SWINELINK_TIMEOUT":        c.Timeout.String(),
		"SWINELINK_API_KEYS":       strconv.Itoa(len(c.HTTPAPIKeys)) + " configured",
		"SWINELINK_MANAGEMENT_KEY": mask(c.ManagementKey),
		"config_file":              configFile,
		"credential_source":        c.CredentialSource,
	}
}

// InitUserConfig writes a template user config file. It returns the path
// and false when a file is already there; existing files are never touched.
func (l *Loader) InitUserConfig() (string, bool, error) {
	path := l.UserConfigPaths()[0]
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	template := "# Swinelink Configuration\n" +
		"# Get your API credentials from: https://porkbun.com/account/api\n\n" +
		"PORKBUN_API_KEY=" + placeholderAPIKey + "\n" +
		"PORKBUN_SECRET_KEY=" + placeholderSecretKey + "\n" +
		"PORKBUN_BASE_URL=" + DefaultBaseURL + "\n" +
		"PORT=" + DefaultPort + "\n"

	if err := os.WriteFile(path, []byte(template), 0600); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}

// SaveCredentials stores the API credentials in the OS keychain.
func SaveCredentials(apiKey, secretKey string) error {
	if err := keyring.Set(KeyringService, KeyringAPIKey, apiKey); err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	if err := keyring.Set(KeyringService, KeyringSecret, secretKey); err != nil {
		return fmt.Errorf("failed to store secret key: %w", err)
	}
	return nil
}

// DeleteCredentials removes the API credentials from the OS keychain.
func DeleteCredentials() error {
	for _, user := range []string{KeyringAPIKey, KeyringSecret} {
		if err := keyring.Delete(KeyringService, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete %s: %w", user, err)
		}
	}
	return nil
}

// sources resolves a key across the environment, user config and .env.
type sources struct {
	getenv func(string) string
	user   map[string]string
	dotenv map[string]string
}

func (s *sources) lookup(key string) (string, string) {
	if v := s.getenv(key); v != "" {
		return v, "env"
	}
	if v := s.user[key]; v != "" {
		return v, "file"
	}
	if v := s.dotenv[key]; v != "" {
		return v, "dotenv"
	}
	return "", ""
}

func (s *sources) get(key, defaultValue string) string {
	if v, _ := s.lookup(key); v != "" {
		return v
	}
	return defaultValue
}

func (s *sources) bool(key string) bool {
	b, _ := strconv.ParseBool(s.get(key, "false"))
	return b
}

// parseTimeout accepts a Go duration or a plain number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be positive")
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}

func mask(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
