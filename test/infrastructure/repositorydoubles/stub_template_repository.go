//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// StubTemplateRepository implements repositories.TemplateRepository with fixed content.
type StubTemplateRepository struct {
	mu sync.Mutex

	Content    []byte
	FetchErr   error
	FetchCalls int
	LastURL    string
}

var _ repositories.TemplateRepository = (*StubTemplateRepository)(nil)

func (s *StubTemplateRepository) Fetch(
	_ context.Context,
	workflow entities.WorkflowSettings,
) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FetchCalls++
	s.LastURL = workflow.TemplateURL
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	return s.Content, nil
}
