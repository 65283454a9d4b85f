//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
)

// ErrHashMismatch is returned by CreateOrUpdateFile when PriorHash does not
// match the current file version, like a hosting service rejecting a stale update.
var ErrHashMismatch = errors.New("file hash does not match")

// InMemoryProviderRepository implements repositories.ProviderRepository on
// top of an in-memory commit graph. Configure it with AddFile/AddBranch, then
// inspect the call-tracking fields to verify behavior. Safe for concurrent use.
type InMemoryProviderRepository struct {
	mu sync.Mutex

	// --- identity ---
	ProviderName string

	// --- DiscoverRepositories ---
	Repositories   []entities.Repository
	DiscoverErr    error
	DiscoveredOrgs []string

	// --- ListTreeEntries ---
	ListTreeErr   error
	ListTreeCalls []string // "<repo>@<ref>:<dir>"

	// --- CreateBranch ---
	CreateBranchErr   error
	CreatedBranches   []string // "<repo>:<name>"
	CreateBranchCalls int

	// --- CreateOrUpdateFile ---
	WriteErr    error
	WriteInputs []entities.FileWriteInput

	// --- ListOpenPullRequests ---
	ListPRErr error

	// --- CreatePullRequest ---
	CreatePRErr error
	PRInputs    []entities.PullRequestInput

	commits      map[string]map[string][]byte      // commit -> path -> content
	branches     map[string]map[string]string      // repo -> branch -> commit
	pullRequests map[string][]entities.PullRequest // repo -> pull requests
	nextCommit   int
}

var _ repositories.ProviderRepository = (*InMemoryProviderRepository)(nil)

// NewInMemoryProviderRepository creates an empty provider serving the given repositories.
func NewInMemoryProviderRepository(repos ...entities.Repository) *InMemoryProviderRepository {
	return &InMemoryProviderRepository{
		ProviderName: "memory",
		Repositories: repos,
		commits:      make(map[string]map[string][]byte),
		branches:     make(map[string]map[string]string),
		pullRequests: make(map[string][]entities.PullRequest),
	}
}

// AddBranch creates an empty branch unless it already exists.
func (p *InMemoryProviderRepository) AddBranch(repo entities.Repository, branch string) *InMemoryProviderRepository {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.branchesOf(repo)[branch]; !ok {
		p.branchesOf(repo)[branch] = p.commitLocked(nil, "", nil)
	}
	return p
}

// AddFile commits a file on a branch, creating the branch if needed.
func (p *InMemoryProviderRepository) AddFile(
	repo entities.Repository,
	branch, filePath string,
	content []byte,
) *InMemoryProviderRepository {
	p.AddBranch(repo, branch)

	p.mu.Lock()
	defer p.mu.Unlock()

	parent := p.commits[p.branchesOf(repo)[branch]]
	p.branchesOf(repo)[branch] = p.commitLocked(parent, filePath, content)
	return p
}

// AddPullRequest registers an already open pull request.
func (p *InMemoryProviderRepository) AddPullRequest(repo entities.Repository, pr entities.PullRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pullRequests[repo.FullName()] = append(p.pullRequests[repo.FullName()], pr)
}

// HasBranch reports whether the branch exists.
func (p *InMemoryProviderRepository) HasBranch(repo entities.Repository, branch string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.branchesOf(repo)[branch]
	return ok
}

// FileAt returns the content of a file at the tip of a branch.
func (p *InMemoryProviderRepository) FileAt(repo entities.Repository, branch, filePath string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	commit, ok := p.branchesOf(repo)[branch]
	if !ok {
		return nil, false
	}
	content, ok := p.commits[commit][filePath]
	return content, ok
}

// PullRequests returns every pull request of the repository.
func (p *InMemoryProviderRepository) PullRequests(repo entities.Repository) []entities.PullRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entities.PullRequest(nil), p.pullRequests[repo.FullName()]...)
}

func (p *InMemoryProviderRepository) Name() string { return p.ProviderName }

func (p *InMemoryProviderRepository) DiscoverRepositories(
	_ context.Context, org string,
) ([]entities.Repository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DiscoveredOrgs = append(p.DiscoveredOrgs, org)
	return p.Repositories, p.DiscoverErr
}

// ListTreeEntries lists the direct children of dir, sorted by name. A
// directory exists when at least one file lives below it.
func (p *InMemoryProviderRepository) ListTreeEntries(
	_ context.Context, repo entities.Repository, dir, ref string,
) ([]entities.TreeEntry, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ListTreeCalls = append(p.ListTreeCalls, fmt.Sprintf("%s@%s:%s", repo.FullName(), ref, dir))
	if p.ListTreeErr != nil {
		return nil, false, p.ListTreeErr
	}

	commit, ok := p.branchesOf(repo)[ref]
	if !ok {
		return nil, false, nil
	}

	prefix := strings.TrimSuffix(dir, "/") + "/"
	children := make(map[string]entities.EntryType)
	for filePath := range p.commits[commit] {
		rest, found := strings.CutPrefix(filePath, prefix)
		if !found {
			continue
		}
		name, _, nested := strings.Cut(rest, "/")
		if nested {
			children[name] = entities.EntryTypeDirectory
		} else if _, seen := children[name]; !seen {
			children[name] = entities.EntryTypeFile
		}
	}
	if len(children) == 0 {
		return nil, false, nil
	}

	entries := make([]entities.TreeEntry, 0, len(children))
	for name, entryType := range children {
		entries = append(entries, entities.TreeEntry{
			Path: path.Join(dir, name),
			Name: name,
			Type: entryType,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, true, nil
}

func (p *InMemoryProviderRepository) GetBranchCommit(
	_ context.Context, repo entities.Repository, branch string,
) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	commit, ok := p.branchesOf(repo)[branch]
	return commit, ok, nil
}

func (p *InMemoryProviderRepository) CreateBranch(
	_ context.Context, repo entities.Repository, name, commit string,
) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.CreateBranchCalls++
	if p.CreateBranchErr != nil {
		return p.CreateBranchErr
	}
	if _, exists := p.branchesOf(repo)[name]; exists {
		return entities.ErrBranchAlreadyExists
	}
	if _, known := p.commits[commit]; !known {
		return fmt.Errorf("unknown commit %q", commit)
	}

	p.branchesOf(repo)[name] = commit
	p.CreatedBranches = append(p.CreatedBranches, repo.FullName()+":"+name)
	return nil
}

func (p *InMemoryProviderRepository) GetFileContent(
	_ context.Context, repo entities.Repository, filePath, ref string,
) (*entities.FileContent, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	commit, ok := p.branchesOf(repo)[ref]
	if !ok {
		return nil, false, nil
	}
	content, ok := p.commits[commit][filePath]
	if !ok {
		return nil, false, nil
	}
	return &entities.FileContent{Path: filePath, Content: content, Hash: blobHash(commit, filePath)}, true, nil
}

func (p *InMemoryProviderRepository) CreateOrUpdateFile(
	_ context.Context, repo entities.Repository, input entities.FileWriteInput,
) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.WriteInputs = append(p.WriteInputs, input)
	if p.WriteErr != nil {
		return p.WriteErr
	}

	commit, ok := p.branchesOf(repo)[input.Branch]
	if !ok {
		return fmt.Errorf("branch %q not found", input.Branch)
	}
	files := p.commits[commit]
	if _, exists := files[input.Path]; exists {
		if input.PriorHash != blobHash(commit, input.Path) {
			return ErrHashMismatch
		}
	} else if input.PriorHash != "" {
		return ErrHashMismatch
	}

	p.branchesOf(repo)[input.Branch] = p.commitLocked(files, input.Path, input.Content)
	return nil
}

func (p *InMemoryProviderRepository) ListOpenPullRequests(
	_ context.Context, repo entities.Repository, head, base string,
) ([]entities.PullRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ListPRErr != nil {
		return nil, p.ListPRErr
	}
	var open []entities.PullRequest
	for _, pr := range p.pullRequests[repo.FullName()] {
		if pr.Status == "open" && pr.SourceBranch == head && pr.TargetBranch == base {
			open = append(open, pr)
		}
	}
	return open, nil
}

func (p *InMemoryProviderRepository) CreatePullRequest(
	_ context.Context, repo entities.Repository, input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.PRInputs = append(p.PRInputs, input)
	if p.CreatePRErr != nil {
		return nil, p.CreatePRErr
	}

	id := len(p.pullRequests[repo.FullName()]) + 1
	pr := entities.PullRequest{
		ID:           id,
		Title:        input.Title,
		URL:          fmt.Sprintf("https://example.test/%s/pull/%d", repo.FullName(), id),
		Status:       "open",
		SourceBranch: input.SourceBranch,
		TargetBranch: input.TargetBranch,
	}
	p.pullRequests[repo.FullName()] = append(p.pullRequests[repo.FullName()], pr)
	return &pr, nil
}

func (p *InMemoryProviderRepository) branchesOf(repo entities.Repository) map[string]string {
	branches, ok := p.branches[repo.FullName()]
	if !ok {
		branches = make(map[string]string)
		p.branches[repo.FullName()] = branches
	}
	return branches
}

// commitLocked stores a new commit made of parent plus one file change.
func (p *InMemoryProviderRepository) commitLocked(parent map[string][]byte, filePath string, content []byte) string {
	files := make(map[string][]byte, len(parent)+1)
	for k, v := range parent {
		files[k] = v
	}
	if filePath != "" {
		files[filePath] = content
	}

	p.nextCommit++
	id := fmt.Sprintf("%040x", p.nextCommit)
	p.commits[id] = files
	return id
}

func blobHash(commit, filePath string) string {
	return commit[len(commit)-8:] + ":" + filePath
}
