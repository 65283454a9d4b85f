package forgediscovery

import (
	"context"
	"fmt"
	"strings"

	forgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

const (
	headsPrefix          = "refs/heads/"
	defaultBranchMissing = "main"
)

// Discoverer lists repositories through a gitforge discoverer and maps them
// onto the audit's Repository. The forge's own pagination and fallbacks
// (GitHub user accounts, GitLab owned projects, Azure DevOps continuation
// tokens) are used as they are.
type Discoverer struct {
	forge        forgeEntities.RepositoryDiscoverer
	providerName string
}

// NewDiscoverer wraps forge; providerName is stamped on every repository so
// the audit keeps its own provider names.
func NewDiscoverer(forge forgeEntities.RepositoryDiscoverer, providerName string) *Discoverer {
	return &Discoverer{forge: forge, providerName: providerName}
}

func (d *Discoverer) DiscoverRepositories(ctx context.Context, org string) ([]entities.Repository, error) {
	found, err := d.forge.DiscoverRepositories(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to discover repositories with %s: %w", d.forge.Name(), err)
	}

	repos := make([]entities.Repository, 0, len(found))
	for _, repo := range found {
		repos = append(repos, ToRepository(repo, d.providerName))
	}
	return repos, nil
}

// ToRepository maps a forge repository. Azure DevOps repositories are owned
// by their project, everything else by the organization or group.
func ToRepository(repo forgeEntities.Repository, providerName string) entities.Repository {
	owner := repo.Organization
	if repo.Project != "" {
		owner = repo.Project
	}

	defaultBranch := strings.TrimPrefix(repo.DefaultBranch, headsPrefix)
	if defaultBranch == "" {
		defaultBranch = defaultBranchMissing
	}

	return entities.Repository{
		ID:            repo.ID,
		Owner:         owner,
		Name:          repo.Name,
		DefaultBranch: defaultBranch,
		RemoteURL:     repo.RemoteURL,
		ProviderName:  providerName,
	}
}
