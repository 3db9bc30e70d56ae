package i18n

import "slices"

// Config lists the site languages. Default is the primary language pages
// are translated from.
type Config struct {
	Default   string
	Languages []string
}

// FromModuleConfig builds a Config from the runtime language settings.
func FromModuleConfig(defaultLanguage string, languages []string) Config {
	cfg := Config{Default: defaultLanguage, Languages: slices.Clone(languages)}
	if defaultLanguage != "" && !slices.Contains(cfg.Languages, defaultLanguage) {
		cfg.Languages = append([]string{defaultLanguage}, cfg.Languages...)
	}
	return cfg
}

// Supported reports whether code is a configured language.
func (c Config) Supported(code string) bool {
	return slices.Contains(c.Languages, code)
}
