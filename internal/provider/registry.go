package provider

import (
	"lexigraph.dev/dictionary/core/config"
)

// New builds the set of provider clients named in cfg.ProvidersEnabled, in
// that order, each wrapped with the shared rate limit. Unknown tags are
// skipped rather than failing startup, since a misconfigured provider list
// should degrade fan-out coverage, not take the service down.
func New(cfg config.Config) []Client {
	clients := make([]Client, 0, len(cfg.ProvidersEnabled))
	for _, tag := range cfg.ProvidersEnabled {
		c := build(tag, cfg)
		if c == nil {
			continue
		}
		clients = append(clients, WithRateLimit(c, cfg.Providers.RequestsPerSecond, cfg.Providers.Burst))
	}
	return clients
}

func build(tag string, cfg config.Config) Client {
	switch tag {
	case "wiktionary":
		return NewWiktionaryClient(cfg.Providers.WiktionaryBaseURL)
	case "apple":
		return NewAppleClient()
	default:
		return nil
	}
}
