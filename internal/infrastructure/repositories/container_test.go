//go:build unit

package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/onboarding/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/onboarding/internal/infrastructure/repositories"
)

func TestRegisterProviders(t *testing.T) {
	t.Parallel()

	t.Run("should provide the registry, template source and report writer", func(t *testing.T) {
		t.Parallel()

		// given
		container := dig.New()

		// when
		err := infraRepos.RegisterProviders(container)

		// then
		require.NoError(t, err)
		require.NoError(t, container.Invoke(func(
			registry *infraRepos.ProviderRegistry,
			templates domainRepos.TemplateRepository,
			reports domainRepos.ReportRepository,
		) {
			assert.Equal(t, []string{"azuredevops", "github", "gitlab", "local"}, registry.Names())
			assert.NotNil(t, templates)
			assert.NotNil(t, reports)
		}))
	})
}
