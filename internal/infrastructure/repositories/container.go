package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/onboarding/internal/domain/repositories"
	adoRepo "github.com/rios0rios0/onboarding/internal/infrastructure/repositories/azuredevops"
	ghRepo "github.com/rios0rios0/onboarding/internal/infrastructure/repositories/github"
	localRepo "github.com/rios0rios0/onboarding/internal/infrastructure/repositories/gitlocal"
	glRepo "github.com/rios0rios0/onboarding/internal/infrastructure/repositories/gitlab"
	reportRepo "github.com/rios0rios0/onboarding/internal/infrastructure/repositories/report"
	tplRepo "github.com/rios0rios0/onboarding/internal/infrastructure/repositories/workflowtemplate"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register provider registry with all provider factories
	if err := container.Provide(func() *ProviderRegistry {
		reg := NewProviderRegistry()
		reg.Register("github", ghRepo.NewGitHubProviderRepository)
		reg.Register("gitlab", glRepo.NewGitLabProviderRepository)
		reg.Register("azuredevops", adoRepo.NewAzureDevOpsProviderRepository)
		reg.Register("local", localRepo.NewLocalProviderRepository)
		return reg
	}); err != nil {
		return err
	}

	// Workflow template source
	if err := container.Provide(func() (domainRepos.TemplateRepository, error) {
		templates, err := tplRepo.NewHTTPTemplateRepository()
		if err != nil {
			return nil, err
		}
		return templates, nil
	}); err != nil {
		return err
	}

	// Report writer, with object storage upload
	if err := container.Provide(func() domainRepos.ReportRepository {
		return reportRepo.NewCSVReportRepository(reportRepo.NewMinioUploader())
	}); err != nil {
		return err
	}

	return nil
}
