package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// BranchManager resolves and creates branch references. Nothing is cached:
// two lookups of the same branch may observe different commits.
type BranchManager struct {
	provider repositories.ProviderRepository
}

// NewBranchManager creates a BranchManager on top of a provider.
func NewBranchManager(provider repositories.ProviderRepository) *BranchManager {
	return &BranchManager{provider: provider}
}

// GetRef returns the commit the branch points at, or found=false when the
// branch does not exist.
func (it *BranchManager) GetRef(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (string, bool, error) {
	commit, found, err := it.provider.GetBranchCommit(ctx, repo, branch)
	if err != nil {
		return "", false, fmt.Errorf("failed to get ref of branch %q: %w", branch, err)
	}
	return commit, found, nil
}

// CreateBranch creates newBranch at the current tip of baseBranch. A missing
// base branch yields an error wrapping entities.ErrBaseBranchMissing.
func (it *BranchManager) CreateBranch(
	ctx context.Context,
	repo entities.Repository,
	baseBranch, newBranch string,
) error {
	commit, found, err := it.GetRef(ctx, repo, baseBranch)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf(
			"%w: %s in repository %s", entities.ErrBaseBranchMissing, baseBranch, repo.Name,
		)
	}

	if createErr := it.provider.CreateBranch(ctx, repo, newBranch, commit); createErr != nil {
		return fmt.Errorf("failed to create branch %q from %q: %w", newBranch, baseBranch, createErr)
	}
	return nil
}
