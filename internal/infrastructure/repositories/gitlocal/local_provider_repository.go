package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

const (
	providerName = "local"
	remoteName   = "origin"
)

// LocalProviderRepository audits a clone on disk. Branches are read from the
// object database without touching the worktree; remote-tracking branches
// are used when no local branch of that name exists. It cannot remediate.
type LocalProviderRepository struct{}

// NewLocalProviderRepository creates the read-only local provider.
func NewLocalProviderRepository(_ *entities.Settings) (repositories.ProviderRepository, error) {
	return &LocalProviderRepository{}, nil
}

func (p *LocalProviderRepository) Name() string { return providerName }

// DiscoverRepositories treats org as a path and returns the single repository
// found there.
func (p *LocalProviderRepository) DiscoverRepositories(
	_ context.Context,
	org string,
) ([]entities.Repository, error) {
	absPath, err := filepath.Abs(org)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", org, err)
	}

	repository, err := open(absPath)
	if err != nil {
		return nil, err
	}

	repo := entities.Repository{
		ID:           absPath,
		Name:         filepath.Base(absPath),
		ProviderName: providerName,
	}
	if head, headErr := repository.Head(); headErr == nil && head.Name().IsBranch() {
		repo.DefaultBranch = head.Name().Short()
	}
	if remote, remoteErr := repository.Remote(remoteName); remoteErr == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			repo.RemoteURL = urls[0]
		}
	}

	return []entities.Repository{repo}, nil
}

func (p *LocalProviderRepository) ListTreeEntries(
	_ context.Context,
	repo entities.Repository,
	dir, ref string,
) ([]entities.TreeEntry, bool, error) {
	repository, err := open(repo.ID)
	if err != nil {
		return nil, false, err
	}

	hash, found, err := resolveBranch(repository, ref)
	if err != nil || !found {
		return nil, false, err
	}

	commit, err := repository.CommitObject(hash)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	root, err := commit.Tree()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}

	tree, err := root.Tree(dir)
	if err != nil {
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %q: %w", dir, err)
	}

	entries := make([]entities.TreeEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		entries = append(entries, entities.TreeEntry{
			Path: path.Join(dir, entry.Name),
			Name: entry.Name,
			Type: toEntryType(entry.Mode),
		})
	}
	return entries, true, nil
}

func toEntryType(mode filemode.FileMode) entities.EntryType {
	switch {
	case mode == filemode.Dir:
		return entities.EntryTypeDirectory
	case mode.IsFile() && mode != filemode.Symlink:
		return entities.EntryTypeFile
	default:
		return entities.EntryTypeOther
	}
}

func (p *LocalProviderRepository) GetBranchCommit(
	_ context.Context,
	repo entities.Repository,
	branch string,
) (string, bool, error) {
	repository, err := open(repo.ID)
	if err != nil {
		return "", false, err
	}

	hash, found, err := resolveBranch(repository, branch)
	if err != nil || !found {
		return "", false, err
	}
	return hash.String(), true, nil
}

func (p *LocalProviderRepository) CreateBranch(
	_ context.Context, _ entities.Repository, _, _ string,
) error {
	return entities.ErrReadOnlyProvider
}

func (p *LocalProviderRepository) GetFileContent(
	_ context.Context, _ entities.Repository, _, _ string,
) (*entities.FileContent, bool, error) {
	return nil, false, entities.ErrReadOnlyProvider
}

func (p *LocalProviderRepository) CreateOrUpdateFile(
	_ context.Context, _ entities.Repository, _ entities.FileWriteInput,
) error {
	return entities.ErrReadOnlyProvider
}

func (p *LocalProviderRepository) ListOpenPullRequests(
	_ context.Context, _ entities.Repository, _, _ string,
) ([]entities.PullRequest, error) {
	return nil, entities.ErrReadOnlyProvider
}

func (p *LocalProviderRepository) CreatePullRequest(
	_ context.Context, _ entities.Repository, _ entities.PullRequestInput,
) (*entities.PullRequest, error) {
	return nil, entities.ErrReadOnlyProvider
}

func open(repoPath string) (*git.Repository, error) {
	//nolint:exhaustruct // only DetectDotGit matters here
	repository, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %q: %w", repoPath, err)
	}
	return repository, nil
}

// resolveBranch looks up refs/heads/<branch>, then refs/remotes/origin/<branch>.
func resolveBranch(repository *git.Repository, branch string) (plumbing.Hash, bool, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(branch),
		plumbing.NewRemoteReferenceName(remoteName, branch),
	}

	for _, name := range candidates {
		ref, err := repository.Reference(name, true)
		if err == nil {
			return ref.Hash(), true, nil
		}
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, false, fmt.Errorf("failed to resolve %q: %w", name, err)
		}
	}

	return plumbing.ZeroHash, false, nil
}
