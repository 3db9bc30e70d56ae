package feincms

import "github.com/goliatone/go-feincms/internal/runtimeconfig"

var (
	ErrDefaultLanguageRequired  = runtimeconfig.ErrDefaultLanguageRequired
	ErrDefaultLanguageUnknown   = runtimeconfig.ErrDefaultLanguageUnknown
	ErrLanguageCodeRequired     = runtimeconfig.ErrLanguageCodeRequired
	ErrLanguageDuplicate        = runtimeconfig.ErrLanguageDuplicate
	ErrNamespacePrefixRequired  = runtimeconfig.ErrNamespacePrefixRequired
	ErrNamespacePrefixInvalid   = runtimeconfig.ErrNamespacePrefixInvalid
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrCacheProviderUnknown     = runtimeconfig.ErrCacheProviderUnknown
	ErrCacheRedisAddrRequired   = runtimeconfig.ErrCacheRedisAddrRequired
	ErrRegionCacheRequiresCache = runtimeconfig.ErrRegionCacheRequiresCache
	ErrMenuKeyRequired          = runtimeconfig.ErrMenuKeyRequired
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	Language       = runtimeconfig.Language
	SiteConfig     = runtimeconfig.SiteConfig
	AppsConfig     = runtimeconfig.AppsConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	MenuConfig     = runtimeconfig.MenuConfig
	TemplateConfig = runtimeconfig.TemplateConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

// DefaultConfig returns a single-language in-memory configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}

// ParseConfig decodes YAML bytes over the defaults.
func ParseConfig(raw []byte) (Config, error) {
	return runtimeconfig.Parse(raw)
}
