package parser

import (
	"fmt"

	"drawsheet/internal/config"
	"drawsheet/internal/port"
)

// ProviderFactory is a function that creates a VisionBackend from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.VisionBackend, error)

// registry of backend factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a backend factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewBackend creates a VisionBackend from a provider config using the registered factory.
func NewBackend(cfg *config.ParserProviderConfig) (port.VisionBackend, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// BuildBackend creates the configured backend. Only the primary provider is
// required; configuring secondary or tertiary providers opts in to a
// FallbackBackend that calls each of them at most once per request.
func BuildBackend(cfg *config.ParserConfig) (port.VisionBackend, error) {
	configs := []*config.ParserProviderConfig{cfg.PrimaryConfig()}
	if sec := cfg.SecondaryConfig(); sec != nil {
		configs = append(configs, sec)
	}
	if ter := cfg.TertiaryConfig(); ter != nil {
		configs = append(configs, ter)
	}

	backends := make([]port.VisionBackend, 0, len(configs))
	names := make([]string, 0, len(configs))
	for _, pc := range configs {
		b, err := NewBackend(pc)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
		names = append(names, pc.Provider)
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewFallbackBackend(backends, names), nil
}
