package domain

// KeyPrefix namespaces every key lectio writes to the KV store.
const KeyPrefix = "lectio:"

// BibleConfig holds translation settings shared by the services.
type BibleConfig struct {
	DefaultTranslation string
	Translations       []string
	MaxSearchLimit     int
}

// DefaultBibleConfig returns the Russian translations the client ships with.
func DefaultBibleConfig() BibleConfig {
	return BibleConfig{
		DefaultTranslation: "rst",
		Translations:       []string{"rst", "nrt", "cars"},
		MaxSearchLimit:     50,
	}
}

// HasTranslation reports whether code is one of the configured translations.
func (c BibleConfig) HasTranslation(code string) bool {
	for _, t := range c.Translations {
		if t == code {
			return true
		}
	}
	return false
}
