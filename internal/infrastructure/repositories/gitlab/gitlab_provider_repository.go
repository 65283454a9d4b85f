package gitlab

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	forgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
	forgeGitLab "github.com/rios0rios0/gitforge/pkg/providers/infrastructure/gitlab"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
	"github.com/rios0rios0/onboarding/internal/infrastructure/repositories/forgediscovery"
)

const (
	providerName = "gitlab"
	perPage      = 100
	stateOpened  = "opened"
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// GitLabProviderRepository implements repositories.ProviderRepository for GitLab.
// Organizations map to groups and pull requests to merge requests.
// Discovery on gitlab.com goes through gitforge.
type GitLabProviderRepository struct {
	client     *gl.Client
	discoverer *forgediscovery.Discoverer
}

// NewGitLabProviderRepository creates a GitLab provider from the run settings.
func NewGitLabProviderRepository(settings *entities.Settings) (repositories.ProviderRepository, error) {
	options := []gl.ClientOptionFunc{
		//nolint:exhaustruct // only the timeout is customised
		gl.WithHTTPClient(&http.Client{Timeout: settings.RequestTimeout}),
	}
	selfHosted := settings.Provider.BaseURL != ""
	if selfHosted {
		options = append(options, gl.WithBaseURL(settings.Provider.BaseURL))
	}

	client, err := gl.NewClient(settings.Provider.Token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	provider := newGitLabProviderRepository(client)
	if !selfHosted {
		provider.useForgeDiscovery(forgeGitLab.NewProvider(settings.Provider.Token))
	}
	return provider, nil
}

func newGitLabProviderRepository(client *gl.Client) *GitLabProviderRepository {
	return &GitLabProviderRepository{client: client}
}

func (p *GitLabProviderRepository) Name() string { return providerName }

// useForgeDiscovery hands DiscoverRepositories over to forge. gitforge only
// talks to gitlab.com, so self-hosted instances keep the group listing.
func (p *GitLabProviderRepository) useForgeDiscovery(
	forge forgeEntities.RepositoryDiscoverer,
) *GitLabProviderRepository {
	p.discoverer = forgediscovery.NewDiscoverer(forge, providerName)
	return p
}

// projectID prefers the numeric project ID, which survives subgroup nesting
// that a discovered owner may not carry.
func projectID(repo entities.Repository) interface{} {
	if id, err := strconv.ParseInt(repo.ID, 10, 64); err == nil {
		return id
	}
	return repo.Owner + "/" + repo.Name
}

// DiscoverRepositories lists all projects in a GitLab group, subgroups included.
func (p *GitLabProviderRepository) DiscoverRepositories(
	ctx context.Context,
	group string,
) ([]entities.Repository, error) {
	if p.discoverer != nil {
		return p.discoverer.DiscoverRepositories(ctx, group)
	}
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var allRepos []entities.Repository
	opts := &gl.ListGroupProjectsOptions{
		ListOptions:      gl.ListOptions{PerPage: perPage},
		IncludeSubGroups: gl.Ptr(true),
	}

	for {
		projects, resp, err := p.client.Groups.ListGroupProjects(
			group, opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects for %q: %w", group, err)
		}
		if len(projects) == 0 {
			break
		}

		for _, proj := range projects {
			owner := group
			if proj.Namespace != nil && proj.Namespace.FullPath != "" {
				owner = proj.Namespace.FullPath
			}
			defaultBranch := "main"
			if proj.DefaultBranch != "" {
				defaultBranch = proj.DefaultBranch
			}
			allRepos = append(allRepos, entities.Repository{
				ID:            strconv.FormatInt(proj.ID, 10),
				Owner:         owner,
				Name:          proj.Path,
				DefaultBranch: defaultBranch,
				RemoteURL:     proj.HTTPURLToRepo,
				ProviderName:  providerName,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

func (p *GitLabProviderRepository) ListTreeEntries(
	ctx context.Context,
	repo entities.Repository,
	path, ref string,
) ([]entities.TreeEntry, bool, error) {
	if p.client == nil {
		return nil, false, errClientNotInitialized
	}

	var entries []entities.TreeEntry
	opts := &gl.ListTreeOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Path:        gl.Ptr(path),
		Ref:         gl.Ptr(ref),
	}

	for {
		nodes, resp, err := p.client.Repositories.ListTree(projectID(repo), opts, gl.WithContext(ctx))
		if err != nil {
			if isNotFound(resp) {
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("failed to list tree %q: %w", path, err)
		}

		for _, node := range nodes {
			entries = append(entries, entities.TreeEntry{
				Path: node.Path,
				Name: node.Name,
				Type: toEntryType(node.Type),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return entries, true, nil
}

func toEntryType(nodeType string) entities.EntryType {
	switch nodeType {
	case "blob":
		return entities.EntryTypeFile
	case "tree":
		return entities.EntryTypeDirectory
	default:
		return entities.EntryTypeOther
	}
}

func (p *GitLabProviderRepository) GetBranchCommit(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (string, bool, error) {
	if p.client == nil {
		return "", false, errClientNotInitialized
	}

	b, resp, err := p.client.Branches.GetBranch(projectID(repo), branch, gl.WithContext(ctx))
	if err != nil {
		if isNotFound(resp) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get branch %q: %w", branch, err)
	}
	if b.Commit == nil {
		return "", false, fmt.Errorf("branch %q has no commit", branch)
	}
	return b.Commit.ID, true, nil
}

func (p *GitLabProviderRepository) CreateBranch(
	ctx context.Context,
	repo entities.Repository,
	name, commit string,
) error {
	if p.client == nil {
		return errClientNotInitialized
	}

	_, resp, err := p.client.Branches.CreateBranch(projectID(repo), &gl.CreateBranchOptions{
		Branch: gl.Ptr(name),
		Ref:    gl.Ptr(commit),
	}, gl.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusBadRequest &&
			strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("%w: %s", entities.ErrBranchAlreadyExists, name)
		}
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

// GetFileContent returns the file with its last commit ID as hash, which is
// what GitLab checks on update.
func (p *GitLabProviderRepository) GetFileContent(
	ctx context.Context,
	repo entities.Repository,
	path, ref string,
) (*entities.FileContent, bool, error) {
	if p.client == nil {
		return nil, false, errClientNotInitialized
	}

	file, resp, err := p.client.RepositoryFiles.GetFile(
		projectID(repo), path,
		&gl.GetFileOptions{Ref: gl.Ptr(ref)},
		gl.WithContext(ctx),
	)
	if err != nil {
		if isNotFound(resp) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get file %q: %w", path, err)
	}

	content := []byte(file.Content)
	if file.Encoding == "base64" {
		decoded, decodeErr := base64.StdEncoding.DecodeString(file.Content)
		if decodeErr != nil {
			return nil, false, fmt.Errorf("failed to decode file content: %w", decodeErr)
		}
		content = decoded
	}

	return &entities.FileContent{
		Path:    file.FilePath,
		Content: content,
		Hash:    file.LastCommitID,
	}, true, nil
}

func (p *GitLabProviderRepository) CreateOrUpdateFile(
	ctx context.Context,
	repo entities.Repository,
	input entities.FileWriteInput,
) error {
	if p.client == nil {
		return errClientNotInitialized
	}

	pid := projectID(repo)
	content := string(input.Content)

	var err error
	if input.PriorHash == "" {
		_, _, err = p.client.RepositoryFiles.CreateFile(pid, input.Path, &gl.CreateFileOptions{
			Branch:        gl.Ptr(input.Branch),
			Content:       gl.Ptr(content),
			CommitMessage: gl.Ptr(input.Message),
		}, gl.WithContext(ctx))
	} else {
		_, _, err = p.client.RepositoryFiles.UpdateFile(pid, input.Path, &gl.UpdateFileOptions{
			Branch:        gl.Ptr(input.Branch),
			Content:       gl.Ptr(content),
			CommitMessage: gl.Ptr(input.Message),
			LastCommitID:  gl.Ptr(input.PriorHash),
		}, gl.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("failed to commit %q: %w", input.Path, err)
	}
	return nil
}

func (p *GitLabProviderRepository) ListOpenPullRequests(
	ctx context.Context,
	repo entities.Repository,
	head, base string,
) ([]entities.PullRequest, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(
		projectID(repo),
		&gl.ListProjectMergeRequestsOptions{
			SourceBranch: gl.Ptr(head),
			TargetBranch: gl.Ptr(base),
			State:        gl.Ptr(stateOpened),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests: %w", err)
	}

	result := make([]entities.PullRequest, 0, len(mrs))
	for _, mr := range mrs {
		result = append(result, entities.PullRequest{
			ID:           int(mr.IID),
			Title:        mr.Title,
			URL:          mr.WebURL,
			Status:       mr.State,
			SourceBranch: mr.SourceBranch,
			TargetBranch: mr.TargetBranch,
		})
	}
	return result, nil
}

func (p *GitLabProviderRepository) CreatePullRequest(
	ctx context.Context,
	repo entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	mr, _, err := p.client.MergeRequests.CreateMergeRequest(
		projectID(repo),
		&gl.CreateMergeRequestOptions{
			Title:              gl.Ptr(input.Title),
			Description:        gl.Ptr(input.Description),
			SourceBranch:       gl.Ptr(input.SourceBranch),
			TargetBranch:       gl.Ptr(input.TargetBranch),
			RemoveSourceBranch: gl.Ptr(true),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create merge request: %w", err)
	}

	return &entities.PullRequest{
		ID:           int(mr.IID),
		Title:        mr.Title,
		URL:          mr.WebURL,
		Status:       mr.State,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
	}, nil
}

func isNotFound(resp *gl.Response) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound
}
