//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// SpyReportRepository implements repositories.ReportRepository and records
// the reports it was asked to write.
type SpyReportRepository struct {
	WriteErr error
	Reports  []*entities.AuditReport
}

var _ repositories.ReportRepository = (*SpyReportRepository)(nil)

func (s *SpyReportRepository) Write(
	_ context.Context,
	_ *entities.Settings,
	report *entities.AuditReport,
) error {
	s.Reports = append(s.Reports, report)
	return s.WriteErr
}

// LastReport returns the most recent report, or nil.
func (s *SpyReportRepository) LastReport() *entities.AuditReport {
	if len(s.Reports) == 0 {
		return nil
	}
	return s.Reports[len(s.Reports)-1]
}
