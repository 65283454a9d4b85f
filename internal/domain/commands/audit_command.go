package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/onboarding/internal/infrastructure/repositories"
)

// Audit is the interface for the audit command.
type Audit interface {
	Execute(ctx context.Context, settings *entities.Settings) (*entities.AuditReport, error)
}

// AuditCommand orchestrates the onboarding audit:
// discover repositories -> scan tracked branches -> remediate -> report.
type AuditCommand struct {
	providerRegistry   *infraRepos.ProviderRegistry
	templateRepository repositories.TemplateRepository
	reportRepository   repositories.ReportRepository
}

// NewAuditCommand creates a new AuditCommand.
func NewAuditCommand(
	providerRegistry *infraRepos.ProviderRegistry,
	templateRepository repositories.TemplateRepository,
	reportRepository repositories.ReportRepository,
) *AuditCommand {
	return &AuditCommand{
		providerRegistry:   providerRegistry,
		templateRepository: templateRepository,
		reportRepository:   reportRepository,
	}
}

// Execute audits every repository of the configured organization and writes
// the report. Any error returned here is fatal for the run; remediation
// failures never surface here.
func (it *AuditCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
) (*entities.AuditReport, error) {
	startedAt := time.Now()

	provider, err := it.providerRegistry.Get(settings)
	if err != nil {
		return nil, err
	}

	logger.Infof("Discovering repositories in %q (%s)...", settings.Organization, provider.Name())
	repos, err := provider.DiscoverRepositories(ctx, settings.Organization)
	if err != nil {
		return nil, fmt.Errorf("failed to discover repositories in %q: %w", settings.Organization, err)
	}
	logger.Infof("Found %d repositories in %q", len(repos), settings.Organization)

	auditor := &repositoryAuditor{
		scanner:     NewTreeScanner(provider, settings.Workflow),
		remediation: NewRemediationWorkflow(provider, it.templateRepository, settings),
		branches:    settings.Branches,
		remediate:   settings.Remediation.Enabled,
	}

	records, metrics, err := auditor.auditAll(ctx, repos, settings.Concurrency)
	if err != nil {
		return nil, err
	}

	report := &entities.AuditReport{
		Organization: settings.Organization,
		Branches:     settings.Branches,
		Metrics:      metrics,
		Records:      records,
		Duration:     time.Since(startedAt),
	}
	logSummary(report)

	if writeErr := it.reportRepository.Write(ctx, settings, report); writeErr != nil {
		return nil, fmt.Errorf("failed to write report: %w", writeErr)
	}

	return report, nil
}

// repositoryAuditor holds everything needed to audit a single repository.
type repositoryAuditor struct {
	scanner     *TreeScanner
	remediation *RemediationWorkflow
	branches    []string
	remediate   bool
}

// auditAll processes repositories with at most `workers` in flight. Records
// keep the discovery order whatever the completion order is. The first error
// cancels the remaining work.
func (it *repositoryAuditor) auditAll(
	ctx context.Context,
	repos []entities.Repository,
	workers int,
) ([]entities.OnboardingRecord, entities.FleetMetrics, error) {
	records := make([]entities.OnboardingRecord, len(repos))

	var (
		mu      sync.Mutex
		metrics entities.FleetMetrics
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(workers, 1))

	for i, repo := range repos {
		group.Go(func() error {
			if ctxErr := groupCtx.Err(); ctxErr != nil {
				return ctxErr
			}

			record, err := it.audit(groupCtx, repo)
			if err != nil {
				return err
			}

			records[i] = record
			mu.Lock()
			metrics.Add(record)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, entities.FleetMetrics{}, err
	}
	return records, metrics, nil
}

func (it *repositoryAuditor) audit(
	ctx context.Context,
	repo entities.Repository,
) (entities.OnboardingRecord, error) {
	record := entities.OnboardingRecord{Repository: repo}

	for _, branch := range it.branches {
		found, err := it.scanner.Scan(ctx, repo, branch)
		if err != nil {
			return record, fmt.Errorf("failed to scan %s on branch %q: %w", repo.FullName(), branch, err)
		}

		if found {
			logger.Infof("[%s] workflow file found on %q", repo.FullName(), branch)
			record.OnboardedBranches = append(record.OnboardedBranches, branch)
			continue
		}

		logger.Infof("[%s] workflow file missing on %q", repo.FullName(), branch)
		record.NotOnboardedBranches = append(record.NotOnboardedBranches, branch)

		if it.remediate && it.remediation.Remediate(ctx, repo, branch) {
			record.PullRequestSubmitted = true
			record.PullRequests++
		}
	}

	record.Classify(len(it.branches))
	logger.Debugf("[%s] classified as %s", repo.FullName(), record.Status())
	return record, nil
}

func logSummary(report *entities.AuditReport) {
	m := report.Metrics
	logger.Info("Onboarding Metrics:")
	logger.Infof("Total Repositories: %d", m.Total)
	logger.Infof("Onboarded Repositories: %d", m.FullyOnboarded)
	logger.Infof("Partially Onboarded Repositories: %d", m.PartiallyOnboarded)
	logger.Infof("Not Onboarded Repositories: %d", m.NotOnboarded())
	logger.Infof("Pull Requests Submitted: %d", m.PullRequestsSubmitted)
	logger.Infof("Skipped Repositories: %d", m.Skipped)
	logger.Infof("Execution Time: %s", report.Duration.Round(time.Millisecond))
}
