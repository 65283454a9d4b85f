package azuredevops

import (
	forgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"

	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// WithForgeDiscovery exports useForgeDiscovery for testing.
func WithForgeDiscovery(
	provider repositories.ProviderRepository,
	forge forgeEntities.RepositoryDiscoverer,
) repositories.ProviderRepository {
	return provider.(*AzureDevOpsProviderRepository).useForgeDiscovery(forge)
}
