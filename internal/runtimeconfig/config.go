package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrDefaultLanguageRequired  = errors.New("cms config: default language is required")
	ErrDefaultLanguageUnknown   = errors.New("cms config: default language must be one of the configured languages")
	ErrLanguageCodeRequired     = errors.New("cms config: language code is required")
	ErrLanguageDuplicate        = errors.New("cms config: language codes must be unique")
	ErrNamespacePrefixRequired  = errors.New("cms config: apps namespace prefix is required")
	ErrNamespacePrefixInvalid   = errors.New("cms config: apps namespace prefix must not contain ':' or '-'")
	ErrStorageDriverUnknown     = errors.New("cms config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("cms config: storage dsn is required for sql drivers")
	ErrCacheProviderUnknown     = errors.New("cms config: cache provider is invalid")
	ErrCacheRedisAddrRequired   = errors.New("cms config: redis address is required for the redis cache provider")
	ErrRegionCacheRequiresCache = errors.New("cms config: region cache feature requires cache to be enabled")
	ErrMenuKeyRequired          = errors.New("cms config: menu key is required")
	ErrLoggingProviderRequired  = errors.New("cms config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown   = errors.New("cms config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("cms config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("cms config: logging format is invalid")
)

// Config aggregates the runtime settings of the page tree, application
// routing and region rendering modules.
type Config struct {
	DefaultLanguage string         `yaml:"default_language"`
	Languages       []Language     `yaml:"languages"`
	Site            SiteConfig     `yaml:"site"`
	Apps            AppsConfig     `yaml:"apps"`
	Storage         StorageConfig  `yaml:"storage"`
	Cache           CacheConfig    `yaml:"cache"`
	Menus           []MenuConfig   `yaml:"menus"`
	Templates       TemplateConfig `yaml:"templates"`
	Logging         LoggingConfig  `yaml:"logging"`
	Features        Features       `yaml:"features"`
}

// Language is one configured site language. Declaration order defines the
// fallback order used by reverse lookups.
type Language struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// SiteConfig captures public site settings.
type SiteConfig struct {
	BaseURL string `yaml:"base_url"`
}

// AppsConfig captures application mounting settings.
type AppsConfig struct {
	// NamespacePrefix names the outer per-language namespace, rendered as
	// "<prefix>-<language>".
	NamespacePrefix string `yaml:"namespace_prefix"`
}

// StorageConfig selects the persistence driver.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
	Provider   string        `yaml:"provider"`
	RedisAddr  string        `yaml:"redis_addr"`
	RegionTTL  time.Duration `yaml:"region_ttl"`
}

// MenuConfig declares a menu key pages may be assigned to.
type MenuConfig struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
}

// TemplateConfig locates page and plugin templates.
type TemplateConfig struct {
	Dir      string   `yaml:"dir"`
	Snippets []string `yaml:"snippets"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger      bool `yaml:"logger"`
	RegionCache bool `yaml:"region_cache"`
}

// DefaultConfig returns a single-language in-memory setup.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage: "en",
		Languages: []Language{
			{Code: "en", Name: "English"},
		},
		Apps: AppsConfig{
			NamespacePrefix: "apps",
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
			Provider:   "memory",
			RegionTTL:  5 * time.Minute,
		},
		Menus: []MenuConfig{
			{Key: "main", Title: "Main"},
			{Key: "footer", Title: "Footer"},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// LanguageCodes returns the configured language codes in declaration order.
func (cfg Config) LanguageCodes() []string {
	codes := make([]string, 0, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		codes = append(codes, lang.Code)
	}
	return codes
}

// MenuKeys returns the configured menu keys in declaration order.
func (cfg Config) MenuKeys() []string {
	keys := make([]string, 0, len(cfg.Menus))
	for _, menu := range cfg.Menus {
		keys = append(keys, menu.Key)
	}
	return keys
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLanguage) == "" {
		return ErrDefaultLanguageRequired
	}
	seen := map[string]struct{}{}
	for _, lang := range cfg.Languages {
		code := strings.TrimSpace(lang.Code)
		if code == "" {
			return ErrLanguageCodeRequired
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: %s", ErrLanguageDuplicate, code)
		}
		seen[code] = struct{}{}
	}
	if _, ok := seen[cfg.DefaultLanguage]; !ok {
		return fmt.Errorf("%w: %s", ErrDefaultLanguageUnknown, cfg.DefaultLanguage)
	}

	prefix := strings.TrimSpace(cfg.Apps.NamespacePrefix)
	if prefix == "" {
		return ErrNamespacePrefixRequired
	}
	if strings.ContainsAny(prefix, ":-") {
		return fmt.Errorf("%w: %s", ErrNamespacePrefixInvalid, prefix)
	}

	switch driver := normalize(cfg.Storage.Driver); driver {
	case "memory":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if cfg.Features.RegionCache && !cfg.Cache.Enabled {
		return ErrRegionCacheRequiresCache
	}
	if cfg.Cache.Enabled {
		switch normalize(cfg.Cache.Provider) {
		case "", "memory":
		case "redis":
			if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
				return ErrCacheRedisAddrRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheProviderUnknown, cfg.Cache.Provider)
		}
	}

	for _, menu := range cfg.Menus {
		if strings.TrimSpace(menu.Key) == "" {
			return ErrMenuKeyRequired
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "console" && provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := normalize(cfg.Logging.Level); level != "" && !slices.Contains(supportedLevels, level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := normalize(cfg.Logging.Format); provider == "gologger" && format != "" && !slices.Contains(supportedFormats, format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

var (
	supportedLevels  = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal"}
	supportedFormats = []string{"json", "console", "pretty"}
)

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
