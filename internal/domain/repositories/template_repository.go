package repositories

import (
	"context"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

// TemplateRepository fetches the canonical workflow file content from
// workflow.TemplateURL.
type TemplateRepository interface {
	Fetch(ctx context.Context, workflow entities.WorkflowSettings) ([]byte, error)
}
