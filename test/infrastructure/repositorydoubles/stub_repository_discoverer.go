//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	forgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// StubRepositoryDiscoverer is a gitforge RepositoryDiscoverer returning a
// fixed repository list.
type StubRepositoryDiscoverer struct {
	Repositories []forgeEntities.Repository
	Err          error
	Orgs         []string
}

func (s *StubRepositoryDiscoverer) Name() string { return "stub" }

func (s *StubRepositoryDiscoverer) DiscoverRepositories(
	_ context.Context,
	org string,
) ([]forgeEntities.Repository, error) {
	s.Orgs = append(s.Orgs, org)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Repositories, nil
}
