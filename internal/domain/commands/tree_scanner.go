package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// TreeScanner looks for the workflow file anywhere below the search root of
// a branch. It only reads from the provider.
type TreeScanner struct {
	provider repositories.ProviderRepository
	fileName string
	root     string
}

// NewTreeScanner creates a scanner for the configured workflow file.
func NewTreeScanner(
	provider repositories.ProviderRepository,
	workflow entities.WorkflowSettings,
) *TreeScanner {
	return &TreeScanner{
		provider: provider,
		fileName: workflow.FileName,
		root:     workflow.SearchRoot,
	}
}

// Scan reports whether the workflow file exists under the search root at the
// tip of branch. A missing root directory means the file is absent.
func (it *TreeScanner) Scan(ctx context.Context, repo entities.Repository, branch string) (bool, error) {
	return it.search(ctx, repo, branch, it.root)
}

// search walks depth-first and returns on the first match, leaving later
// siblings and unexplored subtrees unread.
func (it *TreeScanner) search(
	ctx context.Context,
	repo entities.Repository,
	ref, dir string,
) (bool, error) {
	entries, found, err := it.provider.ListTreeEntries(ctx, repo, dir, ref)
	if err != nil {
		return false, fmt.Errorf("failed to list %q at %q: %w", dir, ref, err)
	}
	if !found {
		return false, nil
	}

	for _, entry := range entries {
		if entry.IsFile() && entry.Name == it.fileName {
			return true, nil
		}
		if !entry.IsDirectory() {
			continue
		}
		match, searchErr := it.search(ctx, repo, ref, entry.Path)
		if searchErr != nil || match {
			return match, searchErr
		}
	}

	return false, nil
}
