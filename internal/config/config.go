// Package config resolves the settings every scenario runs with: where the
// board lives, who to log in as, and how the browser should behave.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL is the public demo instance of the board.
	DefaultBaseURL = "https://animated-gingersnap-8cf7f2.netlify.app/"

	// Public demo credentials. Override with USERNAME / PASSWORD.
	DefaultUsername = "admin"
	DefaultPassword = "password123"

	DefaultStorageStatePath = ".auth/user.json"
	DefaultDatasetPath      = "data/test-cases.json"
	DefaultArtifactsDir     = "test-results"
)

// Config holds all configuration for a suite run
type Config struct {
	BaseURL  string
	Username string
	Password string

	CI       bool
	Headless bool
	SlowMo   time.Duration
	Browser  string

	// DefaultTimeout caps a whole scenario and is the default for browser
	// actions. ExpectTimeout bounds each visibility/text assertion.
	DefaultTimeout time.Duration
	ExpectTimeout  time.Duration

	ViewportWidth  int
	ViewportHeight int

	Workers int
	Retries int

	StorageStatePath string
	SessionMaxAge    time.Duration
	DatasetPath      string
	ArtifactsDir     string
	Screenshots      bool
	MetricsFile      string
	InstallBrowsers  bool

	LogFormat    string
	LogVerbosity int
}

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// GetConfig returns the configuration resolved from the environment and an
// optional .env file in the working directory. The result is computed once.
func GetConfig() (*Config, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Load(".env")
	})
	return loaded, loadErr
}

// Load resolves configuration from environment variables, falling back to
// values in envFile (KEY=VALUE lines) and then to the demo defaults. Existing
// environment variables always take precedence over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		}
	}
	v.AutomaticEnv()

	// any non-empty CI value other than an explicit false counts
	ci := v.GetString("ci")
	isCI := ci != "" && ci != "false" && ci != "0"

	cfg := &Config{
		BaseURL:          strings.TrimSpace(v.GetString("base_url")),
		Username:         v.GetString("username"),
		Password:         v.GetString("password"),
		CI:               isCI,
		Headless:         isCI,
		SlowMo:           time.Duration(v.GetInt("slow_mo")) * time.Millisecond,
		Browser:          strings.ToLower(v.GetString("browser")),
		DefaultTimeout:   time.Duration(v.GetInt("default_timeout")) * time.Millisecond,
		ExpectTimeout:    time.Duration(v.GetInt("expect_timeout")) * time.Millisecond,
		ViewportWidth:    v.GetInt("viewport_width"),
		ViewportHeight:   v.GetInt("viewport_height"),
		Workers:          runtime.GOMAXPROCS(0),
		Retries:          1,
		StorageStatePath: v.GetString("storage_state"),
		SessionMaxAge:    v.GetDuration("session_max_age"),
		DatasetPath:      v.GetString("dataset"),
		ArtifactsDir:     v.GetString("artifacts_dir"),
		Screenshots:      v.GetBool("screenshots"),
		MetricsFile:      v.GetString("metrics_file"),
		InstallBrowsers:  v.GetString("playwright_preinstalled") != "1",
		LogFormat:        v.GetString("log_format"),
		LogVerbosity:     v.GetInt("log_verbosity"),
	}
	if v.IsSet("headless") {
		cfg.Headless = v.GetBool("headless")
	}
	// fail fast in CI: one worker, no retries, unless asked otherwise
	if isCI {
		cfg.Workers = 1
		cfg.Retries = 0
	}
	if v.IsSet("workers") {
		cfg.Workers = v.GetInt("workers")
	}
	if v.IsSet("retries") {
		cfg.Retries = v.GetInt("retries")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("username", DefaultUsername)
	v.SetDefault("password", DefaultPassword)
	v.SetDefault("slow_mo", 0)
	v.SetDefault("browser", "chromium")
	v.SetDefault("default_timeout", 30000)
	v.SetDefault("expect_timeout", 5000)
	v.SetDefault("viewport_width", 1920)
	v.SetDefault("viewport_height", 1080)
	v.SetDefault("storage_state", DefaultStorageStatePath)
	v.SetDefault("session_max_age", 0)
	v.SetDefault("dataset", DefaultDatasetPath)
	v.SetDefault("artifacts_dir", DefaultArtifactsDir)
	v.SetDefault("screenshots", true)
	v.SetDefault("log_format", "default")
	v.SetDefault("log_verbosity", 0)
}

// Validate rejects settings no run could succeed with.
func (c *Config) Validate() error {
	var problems []string
	if c.BaseURL == "" {
		problems = append(problems, "BASE_URL is empty")
	}
	switch c.Browser {
	case "chromium", "firefox", "webkit":
	default:
		problems = append(problems, fmt.Sprintf("BROWSER %q is not one of chromium, firefox, webkit", c.Browser))
	}
	if c.DefaultTimeout <= 0 {
		problems = append(problems, "DEFAULT_TIMEOUT must be positive")
	}
	if c.ExpectTimeout <= 0 {
		problems = append(problems, "EXPECT_TIMEOUT must be positive")
	}
	if c.Workers < 1 {
		problems = append(problems, "WORKERS must be at least 1")
	}
	if c.Retries < 0 {
		problems = append(problems, "RETRIES must not be negative")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		problems = append(problems, "viewport dimensions must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

// URL joins path onto the base URL.
func (c *Config) URL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// UsingDemoCredentials reports whether the public demo login is in use.
func (c *Config) UsingDemoCredentials() bool {
	return c.Username == DefaultUsername && c.Password == DefaultPassword
}

// LogValues returns the settings as logr key/value pairs. The password is
// never included.
func (c *Config) LogValues() []any {
	return []any{
		"base_url", c.BaseURL,
		"username", c.Username,
		"browser", c.Browser,
		"headless", c.Headless,
		"ci", c.CI,
		"workers", c.Workers,
		"retries", c.Retries,
		"default_timeout", c.DefaultTimeout,
		"expect_timeout", c.ExpectTimeout,
		"storage_state", c.StorageStatePath,
		"dataset", c.DatasetPath,
	}
}
