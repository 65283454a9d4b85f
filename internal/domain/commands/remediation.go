package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// RemediationWorkflow opens a pull request adding the workflow file to a
// branch that lacks it. Every step checks the current state first, so running
// it again creates neither a second branch nor a second pull request.
//
// Remediate is the only place in the audit where errors are absorbed: any
// failure is logged and reported as "no pull request created".
type RemediationWorkflow struct {
	provider  repositories.ProviderRepository
	branches  *BranchManager
	templates repositories.TemplateRepository
	workflow  entities.WorkflowSettings
	dryRun    bool
}

// NewRemediationWorkflow creates a workflow bound to one provider and run configuration.
func NewRemediationWorkflow(
	provider repositories.ProviderRepository,
	templates repositories.TemplateRepository,
	settings *entities.Settings,
) *RemediationWorkflow {
	return &RemediationWorkflow{
		provider:  provider,
		branches:  NewBranchManager(provider),
		templates: templates,
		workflow:  settings.Workflow,
		dryRun:    settings.Remediation.DryRun,
	}
}

// Remediate returns true only when a new pull request was created by this call.
func (it *RemediationWorkflow) Remediate(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) bool {
	log := logger.WithFields(logger.Fields{
		"repository": repo.FullName(),
		"branch":     branch,
	})

	created, err := it.remediate(ctx, repo, branch, log)
	if err == nil {
		return created
	}

	if errors.Is(err, entities.ErrBaseBranchMissing) {
		log.Warn(err.Error())
		return false
	}
	log.Errorf("Failed to create pull request for %s on branch %s: %v", repo.Name, branch, err)
	return false
}

func (it *RemediationWorkflow) remediate(
	ctx context.Context,
	repo entities.Repository,
	branch string,
	log *logger.Entry,
) (bool, error) {
	newBranch := it.workflow.RemediationBranch(branch)

	if it.dryRun {
		log.Infof(
			"[dry-run] Would add %s to %s via branch %s",
			it.workflow.TargetPath(), branch, newBranch,
		)
		return false, nil
	}

	if err := it.ensureBranch(ctx, repo, branch, newBranch, log); err != nil {
		return false, err
	}

	content, err := it.templates.Fetch(ctx, it.workflow)
	if err != nil {
		return false, fmt.Errorf("failed to fetch workflow template: %w", err)
	}

	if writeErr := it.writeWorkflowFile(ctx, repo, newBranch, content, log); writeErr != nil {
		return false, writeErr
	}

	return it.ensurePullRequest(ctx, repo, branch, newBranch, log)
}

func (it *RemediationWorkflow) ensureBranch(
	ctx context.Context,
	repo entities.Repository,
	baseBranch, newBranch string,
	log *logger.Entry,
) error {
	_, exists, err := it.branches.GetRef(ctx, repo, newBranch)
	if err != nil {
		return err
	}
	if exists {
		log.Infof("Branch %s already exists in repository %s", newBranch, repo.Name)
		return nil
	}
	return it.branches.CreateBranch(ctx, repo, baseBranch, newBranch)
}

// writeWorkflowFile commits the template on the remediation branch. An
// existing file is updated through its hash, and left alone when it already
// holds the template bytes.
func (it *RemediationWorkflow) writeWorkflowFile(
	ctx context.Context,
	repo entities.Repository,
	newBranch string,
	content []byte,
	log *logger.Entry,
) error {
	target := it.workflow.TargetPath()

	existing, found, err := it.provider.GetFileContent(ctx, repo, target, newBranch)
	if err != nil {
		return fmt.Errorf("failed to read %q on %q: %w", target, newBranch, err)
	}

	input := entities.FileWriteInput{
		Path:    target,
		Branch:  newBranch,
		Content: content,
		Message: it.workflow.CommitMessage(),
	}
	if found {
		if bytes.Equal(existing.Content, content) {
			log.Debugf("%s on %s already matches the template", target, newBranch)
			return nil
		}
		input.PriorHash = existing.Hash
	}

	if writeErr := it.provider.CreateOrUpdateFile(ctx, repo, input); writeErr != nil {
		return fmt.Errorf("failed to write %q on %q: %w", target, newBranch, writeErr)
	}
	return nil
}

func (it *RemediationWorkflow) ensurePullRequest(
	ctx context.Context,
	repo entities.Repository,
	baseBranch, newBranch string,
	log *logger.Entry,
) (bool, error) {
	open, err := it.provider.ListOpenPullRequests(ctx, repo, newBranch, baseBranch)
	if err != nil {
		return false, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(open) > 0 {
		log.Infof(
			"A pull request already exists for %s:%s to %s in repository %s",
			repo.Owner, newBranch, baseBranch, repo.Name,
		)
		return false, nil
	}

	pr, err := it.provider.CreatePullRequest(ctx, repo, entities.PullRequestInput{
		SourceBranch: newBranch,
		TargetBranch: baseBranch,
		Title:        it.workflow.CommitMessage(),
		Description: fmt.Sprintf(
			"This PR adds the %s workflow file to the %s branch.", it.workflow.FileName, baseBranch,
		),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create pull request: %w", err)
	}

	url := ""
	if pr != nil {
		url = pr.URL
	}
	log.Infof("Created pull request to add workflow file to %s on branch %s %s", repo.Name, baseBranch, url)
	return true, nil
}
