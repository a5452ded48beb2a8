// internal/stages/resolve-identifiers/config.go
package resolveidentifiers

type Config struct {
	// CatalogFallback resolves ids by name matching when the model output is unusable.
	CatalogFallback bool
}

func LoadConfig() *Config {
	return &Config{
		CatalogFallback: true,
	}
}
