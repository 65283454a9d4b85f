package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	domainRepos "github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// ProviderFactory is a constructor function that creates a ProviderRepository
// from the run settings (token, base URL, request timeout).
type ProviderFactory func(settings *entities.Settings) (domainRepos.ProviderRepository, error)

// ProviderRegistry manages all registered Git provider implementations.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory under the given name (e.g. "github").
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// Get returns a configured provider instance for settings.Provider.Type.
func (r *ProviderRegistry) Get(settings *entities.Settings) (domainRepos.ProviderRepository, error) {
	factory, ok := r.providers[settings.Provider.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %q", settings.Provider.Type)
	}

	provider, err := factory(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %q: %w", settings.Provider.Type, err)
	}
	return provider, nil
}

// Names returns the registered provider names in alphabetical order.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
