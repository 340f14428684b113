// Package config loads VegaDeck service configuration from TOML files.
//
// The CLI and the HTTP server share one configuration shape: where to
// listen, how to log, which cache and store backends to use, which url
// loaders to enable and how to reach the external vega-lite compiler.
// A file overlays [Default], so deployments only write the sections
// they change:
//
//	[server]
//	listen = ":9090"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[loaders]
//	elasticsearch = "http://localhost:9200"
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultListen is the address the HTTP server binds to.
	DefaultListen = ":8080"

	// DefaultReadTimeout bounds reading one request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds writing one response. Normalization can
	// wait on remote data sources, so this is generous.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultShutdownTimeout is how long in-flight requests get to
	// finish after a termination signal.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultMaxBodyBytes caps inbound specification payloads (4 MiB).
	DefaultMaxBodyBytes = 4 << 20

	// DefaultMongoDatabase is the database saved specs live in when the
	// mongo store backend is selected.
	DefaultMongoDatabase = "vegadeck"
)

// Cache backend names accepted in the [cache] section.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Store backend names accepted in the [store] section.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// ValidCacheBackends is the set of supported cache backends.
var ValidCacheBackends = map[string]bool{
	CacheNone:   true,
	CacheMemory: true,
	CacheFile:   true,
	CacheRedis:  true,
}

// ValidStoreBackends is the set of supported spec store backends.
var ValidStoreBackends = map[string]bool{
	StoreMemory: true,
	StoreMongo:  true,
}

// ValidLogLevels is the set of supported log levels.
var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidLogFormats is the set of supported log output formats.
var ValidLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// =============================================================================
// Configuration Sections
// =============================================================================

// Duration wraps time.Duration so TOML files can write "30s" or "5m".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Cache     CacheConfig     `toml:"cache"`
	Store     StoreConfig     `toml:"store"`
	Loaders   LoadersConfig   `toml:"loaders"`
	Compiler  CompilerConfig  `toml:"compiler"`
	Normalize NormalizeConfig `toml:"normalize"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen          string   `toml:"listen"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// CacheConfig selects the backend for fetched-resource caching. The
// file backend needs a directory, the redis backend an address.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects where saved specifications live.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// LoadersConfig configures the url loader registry. An empty
// elasticsearch endpoint leaves the loader on its default cluster
// address; allow_urls controls whether specifications may fetch
// arbitrary HTTP documents.
type LoadersConfig struct {
	Elasticsearch string `toml:"elasticsearch"`
	EMSManifest   string `toml:"ems_manifest"`
	AllowURLs     bool   `toml:"allow_urls"`
}

// CompilerConfig configures the external vega-lite compiler. The
// command may carry arguments ("npx vl2vg"); empty uses the
// conventional vl2vg binary.
type CompilerConfig struct {
	Command string `toml:"command"`
}

// NormalizeConfig carries pipeline defaults that deployments may tune.
type NormalizeConfig struct {
	DefaultColor  string `toml:"default_color"`
	DefaultScheme string `toml:"default_scheme"`
	SkipData      bool   `toml:"skip_data"`
}

// =============================================================================
// Loading and Validation
// =============================================================================

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:          DefaultListen,
			ReadTimeout:     Duration(DefaultReadTimeout),
			WriteTimeout:    Duration(DefaultWriteTimeout),
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
		},
		Store: StoreConfig{
			Backend:  StoreMemory,
			Database: DefaultMongoDatabase,
		},
		Loaders: LoadersConfig{
			AllowURLs: true,
		},
	}
}

// Load reads a TOML file and overlays it onto the defaults. Sections
// absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks enum fields and backend-specific requirements.
func (c *Config) Validate() error {
	if !ValidLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %q (use \"debug\", \"info\", \"warn\" or \"error\")", c.Log.Level)
	}
	if !ValidLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %q (use \"text\" or \"json\")", c.Log.Format)
	}
	if !ValidCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache backend: %q (use \"none\", \"memory\", \"file\" or \"redis\")", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		return fmt.Errorf("cache backend %q needs cache.dir", CacheFile)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend %q needs cache.redis_addr", CacheRedis)
	}
	if !ValidStoreBackends[c.Store.Backend] {
		return fmt.Errorf("invalid store backend: %q (use \"memory\" or \"mongo\")", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo && c.Store.MongoURI == "" {
		return fmt.Errorf("store backend %q needs store.mongo_uri", StoreMongo)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}
