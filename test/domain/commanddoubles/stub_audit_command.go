//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/onboarding/internal/domain/commands"
	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

// StubAuditCommand is a stub implementation of commands.Audit.
type StubAuditCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Report           *entities.AuditReport
	LastSettings     *entities.Settings
}

var _ commands.Audit = (*StubAuditCommand)(nil)

func (s *StubAuditCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
) (*entities.AuditReport, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	return s.Report, nil
}
