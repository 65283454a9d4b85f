//go:build unit

package repositories_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	domainRepos "github.com/rios0rios0/onboarding/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/onboarding/internal/infrastructure/repositories"
	doubles "github.com/rios0rios0/onboarding/test/infrastructure/repositorydoubles"
)

func TestProviderRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should build the provider registered for the settings type", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository()
		var received *entities.Settings
		registry := infraRepos.NewProviderRegistry()
		registry.Register("github", func(settings *entities.Settings) (domainRepos.ProviderRepository, error) {
			received = settings
			return provider, nil
		})
		settings := entities.NewDefaultSettings()

		// when
		result, err := registry.Get(settings)

		// then
		require.NoError(t, err)
		assert.Same(t, provider, result)
		assert.Same(t, settings, received)
	})

	t.Run("should fail for an unknown provider type", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewProviderRegistry()
		settings := entities.NewDefaultSettings()
		settings.Provider.Type = "bitbucket"

		// when
		result, err := registry.Get(settings)

		// then
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), `unknown provider type: "bitbucket"`)
	})

	t.Run("should wrap factory failures", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewProviderRegistry()
		registry.Register("gitlab", func(_ *entities.Settings) (domainRepos.ProviderRepository, error) {
			return nil, errors.New("invalid base URL")
		})
		settings := entities.NewDefaultSettings()
		settings.Provider.Type = "gitlab"

		// when
		_, err := registry.Get(settings)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize provider")
		assert.Contains(t, err.Error(), "invalid base URL")
	})

	t.Run("should list registered names in alphabetical order", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewProviderRegistry()
		factory := func(_ *entities.Settings) (domainRepos.ProviderRepository, error) { return nil, nil }
		registry.Register("local", factory)
		registry.Register("github", factory)
		registry.Register("gitlab", factory)

		// when
		names := registry.Names()

		// then
		assert.Equal(t, []string{"github", "gitlab", "local"}, names)
	})
}
