package repositories

import (
	"context"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

// ProviderRepository abstracts a Git hosting service (GitHub, GitLab, a local
// clone). Lookups that can legitimately miss return found=false with a nil
// error; every non-nil error is a real failure.
type ProviderRepository interface {
	// Name returns the provider identifier (e.g. "github", "gitlab").
	Name() string

	// DiscoverRepositories lists every repository of an organization or group,
	// paging until an empty page is returned.
	DiscoverRepositories(ctx context.Context, org string) ([]entities.Repository, error)

	// ListTreeEntries returns the direct children of a directory at a ref.
	ListTreeEntries(
		ctx context.Context, repo entities.Repository, path, ref string,
	) ([]entities.TreeEntry, bool, error)

	// GetBranchCommit returns the commit a branch currently points at.
	GetBranchCommit(ctx context.Context, repo entities.Repository, branch string) (string, bool, error)

	// CreateBranch creates a branch at the given commit. It fails with
	// entities.ErrBranchAlreadyExists when the branch is already there.
	CreateBranch(ctx context.Context, repo entities.Repository, name, commit string) error

	// GetFileContent reads a file and its version hash at a ref.
	GetFileContent(
		ctx context.Context, repo entities.Repository, path, ref string,
	) (*entities.FileContent, bool, error)

	// CreateOrUpdateFile commits a single file to a branch.
	CreateOrUpdateFile(ctx context.Context, repo entities.Repository, input entities.FileWriteInput) error

	// ListOpenPullRequests returns open pull requests from head into base.
	ListOpenPullRequests(
		ctx context.Context, repo entities.Repository, head, base string,
	) ([]entities.PullRequest, error)

	// CreatePullRequest creates a pull/merge request on the hosting service.
	CreatePullRequest(
		ctx context.Context, repo entities.Repository, input entities.PullRequestInput,
	) (*entities.PullRequest, error)
}
