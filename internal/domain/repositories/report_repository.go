package repositories

import (
	"context"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

// ReportRepository persists the result of an audit run.
type ReportRepository interface {
	Write(ctx context.Context, settings *entities.Settings, report *entities.AuditReport) error
}
