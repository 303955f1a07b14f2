package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"

	"github.com/blazor-tools/btp/internal/errors"
	"github.com/blazor-tools/btp/pkg/blazorpack"
	"github.com/blazor-tools/btp/pkg/intercept"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "btp.json"

	// DefaultListen is the default proxy listen address.
	DefaultListen = "127.0.0.1:8088"

	// DefaultAPIPrefix is the default editor API path prefix.
	DefaultAPIPrefix = "/_btp"

	// DefaultArchiveDir is the default capture directory for the disk backend.
	DefaultArchiveDir = "captures"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "btp"
)

// Archive backends.
const (
	BackendNone = "none"
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Config represents the complete btp.json configuration.
type Config struct {
	// Proxy contains proxy server configuration.
	Proxy ProxyConfig `json:"proxy"`

	// Scope lists host glob patterns to inspect. Empty means every host.
	Scope []string `json:"scope,omitempty"`

	// Preferences holds settings changed at runtime.
	Preferences PreferencesConfig `json:"preferences"`

	// Archive configures capture storage.
	Archive ArchiveConfig `json:"archive"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `json:"tracing"`

	// Codec configures the BlazorPack codec.
	Codec CodecConfig `json:"codec"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ProxyConfig contains proxy server settings.
type ProxyConfig struct {
	// Listen is the address the proxy listens on.
	Listen string `json:"listen,omitempty"`

	// Upstream is the Blazor Server application URL.
	Upstream string `json:"upstream,omitempty"`

	// APIPrefix is the editor API path prefix.
	APIPrefix string `json:"apiPrefix,omitempty"`

	// MaxBodySize limits the bytes read from a body for inspection.
	MaxBodySize int64 `json:"maxBodySize,omitempty"`
}

// PreferencesConfig contains user preferences.
type PreferencesConfig struct {
	// UseWebSocket keeps WebSockets in negotiate responses.
	UseWebSocket bool `json:"useWebSocket"`
}

// ArchiveConfig contains capture storage settings.
type ArchiveConfig struct {
	// Backend is "none", "disk" or "s3".
	Backend string `json:"backend,omitempty"`

	// Dir is the capture directory for the disk backend.
	Dir string `json:"dir,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `json:"endpoint,omitempty"`

	// RatePerSecond caps stored captures per second. Zero is unlimited.
	RatePerSecond float64 `json:"ratePerSecond,omitempty"`

	// Burst is the number of captures allowed above the rate.
	Burst int `json:"burst,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled serves /metrics under the API prefix.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty"`
}

// CodecConfig contains codec settings.
type CodecConfig struct {
	// MaxFrameSize is the largest accepted frame length in bytes.
	MaxFrameSize int `json:"maxFrameSize,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Proxy: ProxyConfig{
			Listen:      DefaultListen,
			APIPrefix:   DefaultAPIPrefix,
			MaxBodySize: blazorpack.DefaultMaxFrameSize,
		},
		Archive: ArchiveConfig{
			Backend: BackendNone,
			Dir:     DefaultArchiveDir,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Codec: CodecConfig{
			MaxFrameSize: blazorpack.DefaultMaxFrameSize,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for btp.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No btp.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'btp prefs' to create one, or pass --config")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithInput(path, -1).
			WithDetail("Failed to parse btp.json: " + err.Error()).
			WithSuggestion("Check that btp.json is valid JSON")
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrNew loads path, or returns defaults bound to path if it does not
// exist yet. Any other failure is returned.
func LoadOrNew(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err == nil {
		return cfg, nil
	}
	if be, ok := err.(*errors.BTPError); ok && be.Code == "E141" {
		cfg = New()
		cfg.configPath = path
		return cfg, nil
	}
	return nil, err
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E122").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E122").WithInput(path, -1).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Proxy.Listen == "" {
		c.Proxy.Listen = DefaultListen
	}
	if c.Proxy.APIPrefix == "" {
		c.Proxy.APIPrefix = DefaultAPIPrefix
	}
	if c.Proxy.MaxBodySize <= 0 {
		c.Proxy.MaxBodySize = blazorpack.DefaultMaxFrameSize
	}
	if c.Archive.Backend == "" {
		c.Archive.Backend = BackendNone
	}
	if c.Archive.Dir == "" {
		c.Archive.Dir = DefaultArchiveDir
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Codec.MaxFrameSize <= 0 {
		c.Codec.MaxFrameSize = blazorpack.DefaultMaxFrameSize
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Proxy.Upstream != "" {
		if _, err := c.UpstreamURL(); err != nil {
			return err
		}
	}
	if _, err := c.ScopeMatcher(); err != nil {
		return err
	}
	switch c.Archive.Backend {
	case BackendNone, BackendDisk:
	case BackendS3:
		if c.Archive.Bucket == "" {
			return errors.New("E100").
				WithDetail("archive.bucket is required for the s3 backend")
		}
	default:
		return errors.New("E100").
			WithDetail(`archive.backend is "` + c.Archive.Backend + `"; want "none", "disk" or "s3"`)
	}
	return nil
}

// UpstreamURL parses Proxy.Upstream.
func (c *Config) UpstreamURL() (*url.URL, error) {
	u, err := url.Parse(c.Proxy.Upstream)
	if err != nil {
		return nil, errors.New("E080").Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("E080").
			WithSuggestion("Set proxy.upstream to e.g. http://localhost:5000")
	}
	return u, nil
}

// ScopeMatcher compiles Scope.
func (c *Config) ScopeMatcher() (intercept.Scope, error) {
	s, err := intercept.NewScope(c.Scope...)
	if err != nil {
		return intercept.Scope{}, errors.New("E121").Wrap(err)
	}
	return s, nil
}

// ArchiveDir returns the absolute disk archive directory.
func (c *Config) ArchiveDir() string {
	if filepath.IsAbs(c.Archive.Dir) || c.Dir() == "" {
		return c.Archive.Dir
	}
	return filepath.Join(c.Dir(), c.Archive.Dir)
}

// Exists reports whether btp.json exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindConfigDir walks up from startDir to the first directory holding btp.json.
func FindConfigDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No btp.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent holding btp.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dir, err := FindConfigDir(wd)
	if err != nil {
		return nil, err
	}
	return Load(dir)
}
