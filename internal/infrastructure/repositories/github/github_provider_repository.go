package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v66/github"
	forgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
	forgeGitHub "github.com/rios0rios0/gitforge/pkg/providers/infrastructure/github"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
	"github.com/rios0rios0/onboarding/internal/infrastructure/repositories/forgediscovery"
)

const (
	providerName = "github"
	perPage      = 100
	headsPrefix  = "refs/heads/"
)

// GitHubProviderRepository implements repositories.ProviderRepository for GitHub.
// Repository discovery on github.com goes through gitforge; reads and writes
// at a given ref use go-github directly.
type GitHubProviderRepository struct {
	client     *gh.Client
	discoverer *forgediscovery.Discoverer
}

// NewGitHubProviderRepository creates a GitHub provider from the run settings.
// A base URL switches the client to a GitHub Enterprise Server instance.
func NewGitHubProviderRepository(settings *entities.Settings) (repositories.ProviderRepository, error) {
	//nolint:exhaustruct // only the timeout is customised
	httpClient := &http.Client{Timeout: settings.RequestTimeout}
	client := gh.NewClient(httpClient).WithAuthToken(settings.Provider.Token)

	if baseURL := settings.Provider.BaseURL; baseURL != "" {
		enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
		}
		client = enterprise
		return newGitHubProviderRepository(client), nil
	}

	return newGitHubProviderRepository(client).
		useForgeDiscovery(forgeGitHub.NewProvider(settings.Provider.Token)), nil
}

func newGitHubProviderRepository(client *gh.Client) *GitHubProviderRepository {
	return &GitHubProviderRepository{client: client}
}

func (p *GitHubProviderRepository) Name() string { return providerName }

// useForgeDiscovery hands DiscoverRepositories over to forge. gitforge only
// talks to github.com, so Enterprise servers keep the go-github listing.
func (p *GitHubProviderRepository) useForgeDiscovery(
	forge forgeEntities.RepositoryDiscoverer,
) *GitHubProviderRepository {
	p.discoverer = forgediscovery.NewDiscoverer(forge, providerName)
	return p
}

// DiscoverRepositories lists all repositories in a GitHub organization,
// falling back to a user account when no organization has that name.
func (p *GitHubProviderRepository) DiscoverRepositories(
	ctx context.Context,
	org string,
) ([]entities.Repository, error) {
	if p.discoverer != nil {
		return p.discoverer.DiscoverRepositories(ctx, org)
	}

	var allRepos []entities.Repository
	opts := &gh.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: gh.ListOptions{PerPage: perPage, Page: 1},
	}

	for {
		repos, resp, err := p.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			if isNotFound(resp, err) && opts.Page == 1 {
				return p.discoverUserRepos(ctx, org)
			}
			return nil, fmt.Errorf("failed to list repos for %q: %w", org, err)
		}
		if len(repos) == 0 {
			break
		}

		for _, r := range repos {
			allRepos = append(allRepos, toRepository(r, org))
		}
		opts.Page++
	}

	return allRepos, nil
}

func (p *GitHubProviderRepository) discoverUserRepos(
	ctx context.Context,
	user string,
) ([]entities.Repository, error) {
	var allRepos []entities.Repository
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: gh.ListOptions{PerPage: perPage, Page: 1},
	}

	for {
		repos, _, err := p.client.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repos for %q: %w", user, err)
		}
		if len(repos) == 0 {
			break
		}

		for _, r := range repos {
			allRepos = append(allRepos, toRepository(r, user))
		}
		opts.Page++
	}

	return allRepos, nil
}

func toRepository(r *gh.Repository, fallbackOwner string) entities.Repository {
	owner := r.GetOwner().GetLogin()
	if owner == "" {
		owner = fallbackOwner
	}
	defaultBranch := "main"
	if r.DefaultBranch != nil {
		defaultBranch = *r.DefaultBranch
	}
	return entities.Repository{
		ID:            strconv.FormatInt(r.GetID(), 10),
		Owner:         owner,
		Name:          r.GetName(),
		DefaultBranch: defaultBranch,
		RemoteURL:     r.GetCloneURL(),
		ProviderName:  providerName,
	}
}

func (p *GitHubProviderRepository) ListTreeEntries(
	ctx context.Context,
	repo entities.Repository,
	path, ref string,
) ([]entities.TreeEntry, bool, error) {
	file, dir, resp, err := p.client.Repositories.GetContents(
		ctx, repo.Owner, repo.Name, path,
		&gh.RepositoryContentGetOptions{Ref: ref},
	)
	if err != nil {
		if isNotFound(resp, err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get contents of %q: %w", path, err)
	}
	if file != nil {
		// the path is a file, so there is no directory to walk
		return nil, false, nil
	}

	entries := make([]entities.TreeEntry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, entities.TreeEntry{
			Path: item.GetPath(),
			Name: item.GetName(),
			Type: toEntryType(item.GetType()),
		})
	}
	return entries, true, nil
}

func toEntryType(contentType string) entities.EntryType {
	switch contentType {
	case "file":
		return entities.EntryTypeFile
	case "dir":
		return entities.EntryTypeDirectory
	default:
		return entities.EntryTypeOther
	}
}

func (p *GitHubProviderRepository) GetBranchCommit(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (string, bool, error) {
	ref, resp, err := p.client.Git.GetRef(ctx, repo.Owner, repo.Name, headsPrefix+branch)
	if err != nil {
		if isNotFound(resp, err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get ref %q: %w", branch, err)
	}
	return ref.GetObject().GetSHA(), true, nil
}

func (p *GitHubProviderRepository) CreateBranch(
	ctx context.Context,
	repo entities.Repository,
	name, commit string,
) error {
	refName := headsPrefix + name
	_, resp, err := p.client.Git.CreateRef(
		ctx, repo.Owner, repo.Name,
		&gh.Reference{
			Ref:    &refName,
			Object: &gh.GitObject{SHA: &commit},
		},
	)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity &&
			strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("%w: %s", entities.ErrBranchAlreadyExists, name)
		}
		return fmt.Errorf("failed to create ref %q: %w", refName, err)
	}
	return nil
}

func (p *GitHubProviderRepository) GetFileContent(
	ctx context.Context,
	repo entities.Repository,
	path, ref string,
) (*entities.FileContent, bool, error) {
	file, _, resp, err := p.client.Repositories.GetContents(
		ctx, repo.Owner, repo.Name, path,
		&gh.RepositoryContentGetOptions{Ref: ref},
	)
	if err != nil {
		if isNotFound(resp, err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get file %q: %w", path, err)
	}
	if file == nil {
		return nil, false, fmt.Errorf("path %q is a directory, not a file", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode file content: %w", err)
	}

	return &entities.FileContent{
		Path:    file.GetPath(),
		Content: []byte(content),
		Hash:    file.GetSHA(),
	}, true, nil
}

// CreateOrUpdateFile commits the file through the contents API. The client
// base64-encodes Content; PriorHash is sent as the blob SHA for updates.
func (p *GitHubProviderRepository) CreateOrUpdateFile(
	ctx context.Context,
	repo entities.Repository,
	input entities.FileWriteInput,
) error {
	//nolint:exhaustruct // author and committer default to the token owner
	opts := &gh.RepositoryContentFileOptions{
		Message: &input.Message,
		Content: input.Content,
		Branch:  &input.Branch,
	}

	var err error
	if input.PriorHash == "" {
		_, _, err = p.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, input.Path, opts)
	} else {
		opts.SHA = &input.PriorHash
		_, _, err = p.client.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, input.Path, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to commit %q: %w", input.Path, err)
	}
	return nil
}

func (p *GitHubProviderRepository) ListOpenPullRequests(
	ctx context.Context,
	repo entities.Repository,
	head, base string,
) ([]entities.PullRequest, error) {
	prs, _, err := p.client.PullRequests.List(
		ctx, repo.Owner, repo.Name,
		&gh.PullRequestListOptions{
			State:       "open",
			Head:        repo.Owner + ":" + head,
			Base:        base,
			ListOptions: gh.ListOptions{PerPage: perPage},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}

	result := make([]entities.PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, toPullRequest(pr))
	}
	return result, nil
}

func (p *GitHubProviderRepository) CreatePullRequest(
	ctx context.Context,
	repo entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	sourceBranch := strings.TrimPrefix(input.SourceBranch, headsPrefix)
	targetBranch := strings.TrimPrefix(input.TargetBranch, headsPrefix)

	maintainerCanModify := true
	//nolint:exhaustruct // Minimal NewPullRequest initialization with required fields only
	pr, _, err := p.client.PullRequests.Create(
		ctx, repo.Owner, repo.Name,
		&gh.NewPullRequest{
			Title:               &input.Title,
			Head:                &sourceBranch,
			Base:                &targetBranch,
			Body:                &input.Description,
			MaintainerCanModify: &maintainerCanModify,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	created := toPullRequest(pr)
	return &created, nil
}

func toPullRequest(pr *gh.PullRequest) entities.PullRequest {
	return entities.PullRequest{
		ID:           pr.GetNumber(),
		Title:        pr.GetTitle(),
		URL:          pr.GetHTMLURL(),
		Status:       pr.GetState(),
		SourceBranch: pr.GetHead().GetRef(),
		TargetBranch: pr.GetBase().GetRef(),
	}
}

// isNotFound tells a 404 apart from every other failure.
func isNotFound(resp *gh.Response, err error) bool {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode == http.StatusNotFound
	}
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
