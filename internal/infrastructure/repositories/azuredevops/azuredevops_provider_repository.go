package azuredevops

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"

	forgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
	forgeADO "github.com/rios0rios0/gitforge/pkg/providers/infrastructure/azuredevops"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/domain/repositories"
	"github.com/rios0rios0/onboarding/internal/infrastructure/repositories/forgediscovery"
)

const (
	providerName = "azuredevops"
	headsPrefix  = "refs/heads/"
	zeroObjectID = "0000000000000000000000000000000000000000"
	statusActive = "active"
)

// AzureDevOpsProviderRepository implements repositories.ProviderRepository for
// Azure DevOps. An organization spans projects; the project becomes the
// repository owner. Discovery goes through gitforge, files are committed
// through the pushes API.
type AzureDevOpsProviderRepository struct {
	client        *client
	discoverer    *forgediscovery.Discoverer
	collectionURL string
}

// NewAzureDevOpsProviderRepository creates the provider for settings.Organization,
// or for the collection at settings.Provider.BaseURL when set.
func NewAzureDevOpsProviderRepository(settings *entities.Settings) (repositories.ProviderRepository, error) {
	if settings.Provider.BaseURL == "" && settings.Organization == "" {
		return nil, fmt.Errorf("an organization or base URL is required for %s", providerName)
	}
	provider := &AzureDevOpsProviderRepository{
		client: newClient(
			settings.Provider.BaseURL, settings.Organization, settings.Provider.Token, settings.RequestTimeout,
		),
		collectionURL: strings.TrimSuffix(settings.Provider.BaseURL, "/"),
	}
	return provider.useForgeDiscovery(forgeADO.NewProvider(settings.Provider.Token)), nil
}

func (p *AzureDevOpsProviderRepository) useForgeDiscovery(
	forge forgeEntities.RepositoryDiscoverer,
) *AzureDevOpsProviderRepository {
	p.discoverer = forgediscovery.NewDiscoverer(forge, providerName)
	return p
}

func (p *AzureDevOpsProviderRepository) Name() string { return providerName }

func repoEndpoint(repo entities.Repository, suffix string) string {
	return fmt.Sprintf("/%s/_apis/git/repositories/%s%s", url.PathEscape(repo.Owner), url.PathEscape(repo.ID), suffix)
}

func branchVersion(query url.Values, branch string) {
	query.Set("versionDescriptor.version", branch)
	query.Set("versionDescriptor.versionType", "branch")
}

// DiscoverRepositories lists the repositories of every project through
// gitforge, which follows the continuation tokens. A configured base URL
// replaces the organization name as discovery target.
func (p *AzureDevOpsProviderRepository) DiscoverRepositories(
	ctx context.Context,
	org string,
) ([]entities.Repository, error) {
	target := org
	if p.collectionURL != "" {
		target = p.collectionURL
	}
	return p.discoverer.DiscoverRepositories(ctx, target)
}

// ListTreeEntries lists one level below dir. The API includes dir itself in
// the answer, which is skipped; a blob at dir means there is no directory.
func (p *AzureDevOpsProviderRepository) ListTreeEntries(
	ctx context.Context,
	repo entities.Repository,
	dir, ref string,
) ([]entities.TreeEntry, bool, error) {
	scope := "/" + strings.Trim(dir, "/")
	query := url.Values{
		"scopePath":      {scope},
		"recursionLevel": {"OneLevel"},
		"api-version":    {apiVersion},
	}
	branchVersion(query, ref)

	var result listResponse[item]
	if err := p.client.get(ctx, repoEndpoint(repo, "/items?"+query.Encode()), &result); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to list items at %q: %w", dir, err)
	}

	entries := make([]entities.TreeEntry, 0, len(result.Value))
	for _, it := range result.Value {
		if it.Path == scope {
			if !it.IsFolder {
				return nil, false, nil
			}
			continue
		}
		itemPath := strings.TrimPrefix(it.Path, "/")
		entries = append(entries, entities.TreeEntry{
			Path: itemPath,
			Name: path.Base(itemPath),
			Type: toEntryType(it),
		})
	}
	return entries, true, nil
}

func toEntryType(it item) entities.EntryType {
	switch {
	case it.IsFolder || it.GitObjectType == "tree":
		return entities.EntryTypeDirectory
	case it.GitObjectType == "blob":
		return entities.EntryTypeFile
	default:
		return entities.EntryTypeOther
	}
}

// GetBranchCommit looks the branch up with a prefix filter and keeps the
// exact match only.
func (p *AzureDevOpsProviderRepository) GetBranchCommit(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (string, bool, error) {
	query := url.Values{"filter": {"heads/" + branch}, "api-version": {apiVersion}}

	var result listResponse[ref]
	if err := p.client.get(ctx, repoEndpoint(repo, "/refs?"+query.Encode()), &result); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get ref %q: %w", branch, err)
	}

	for _, r := range result.Value {
		if r.Name == headsPrefix+branch {
			return r.ObjectID, true, nil
		}
	}
	return "", false, nil
}

func (p *AzureDevOpsProviderRepository) CreateBranch(
	ctx context.Context,
	repo entities.Repository,
	name, commit string,
) error {
	body := []map[string]string{{
		"name":        headsPrefix + name,
		"oldObjectId": zeroObjectID,
		"newObjectId": commit,
	}}

	var result listResponse[refUpdateResult]
	endpoint := repoEndpoint(repo, "/refs?api-version="+apiVersion)
	if err := p.client.post(ctx, endpoint, body, &result); err != nil {
		return fmt.Errorf("failed to create ref %q: %w", name, err)
	}

	for _, update := range result.Value {
		if update.Success {
			continue
		}
		if strings.Contains(strings.ToLower(update.UpdateStatus), "exists") {
			return fmt.Errorf("%w: %s", entities.ErrBranchAlreadyExists, name)
		}
		return fmt.Errorf("failed to create ref %q: %s", name, update.UpdateStatus)
	}
	return nil
}

// GetFileContent returns the file with its blob object ID as hash.
func (p *AzureDevOpsProviderRepository) GetFileContent(
	ctx context.Context,
	repo entities.Repository,
	filePath, ref string,
) (*entities.FileContent, bool, error) {
	query := url.Values{
		"path":           {"/" + strings.TrimPrefix(filePath, "/")},
		"includeContent": {"true"},
		"$format":        {"json"},
		"api-version":    {apiVersion},
	}
	branchVersion(query, ref)

	var result item
	if err := p.client.get(ctx, repoEndpoint(repo, "/items?"+query.Encode()), &result); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get file %q: %w", filePath, err)
	}
	if result.IsFolder {
		return nil, false, fmt.Errorf("path %q is a directory, not a file", filePath)
	}

	return &entities.FileContent{
		Path:    strings.TrimPrefix(result.Path, "/"),
		Content: []byte(result.Content),
		Hash:    result.ObjectID,
	}, true, nil
}

// CreateOrUpdateFile pushes one commit on top of the branch tip. PriorHash
// only selects between an "add" and an "edit" change; the push itself is
// guarded by the tip commit.
func (p *AzureDevOpsProviderRepository) CreateOrUpdateFile(
	ctx context.Context,
	repo entities.Repository,
	input entities.FileWriteInput,
) error {
	tip, found, err := p.GetBranchCommit(ctx, repo, input.Branch)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("branch %q not found", input.Branch)
	}

	changeType := "add"
	if input.PriorHash != "" {
		changeType = "edit"
	}

	body := map[string]interface{}{
		"refUpdates": []map[string]string{{
			"name":        headsPrefix + input.Branch,
			"oldObjectId": tip,
		}},
		"commits": []map[string]interface{}{{
			"comment": input.Message,
			"changes": []map[string]interface{}{{
				"changeType": changeType,
				"item":       map[string]string{"path": "/" + strings.TrimPrefix(input.Path, "/")},
				"newContent": map[string]string{
					"content":     base64.StdEncoding.EncodeToString(input.Content),
					"contentType": "base64encoded",
				},
			}},
		}},
	}

	if pushErr := p.client.post(ctx, repoEndpoint(repo, "/pushes?api-version="+apiVersion), body, nil); pushErr != nil {
		return fmt.Errorf("failed to push %q: %w", input.Path, pushErr)
	}
	return nil
}

func (p *AzureDevOpsProviderRepository) ListOpenPullRequests(
	ctx context.Context,
	repo entities.Repository,
	head, base string,
) ([]entities.PullRequest, error) {
	query := url.Values{
		"searchCriteria.sourceRefName": {headsPrefix + head},
		"searchCriteria.targetRefName": {headsPrefix + base},
		"searchCriteria.status":        {statusActive},
		"api-version":                  {apiVersion},
	}

	var result listResponse[pullRequest]
	if err := p.client.get(ctx, repoEndpoint(repo, "/pullrequests?"+query.Encode()), &result); err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}

	prs := make([]entities.PullRequest, 0, len(result.Value))
	for _, pr := range result.Value {
		prs = append(prs, toPullRequest(pr))
	}
	return prs, nil
}

func (p *AzureDevOpsProviderRepository) CreatePullRequest(
	ctx context.Context,
	repo entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	body := map[string]interface{}{
		"sourceRefName": headsPrefix + strings.TrimPrefix(input.SourceBranch, headsPrefix),
		"targetRefName": headsPrefix + strings.TrimPrefix(input.TargetBranch, headsPrefix),
		"title":         input.Title,
		"description":   input.Description,
	}

	var result pullRequest
	if err := p.client.post(ctx, repoEndpoint(repo, "/pullrequests?api-version="+apiVersion), body, &result); err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	created := toPullRequest(result)
	return &created, nil
}

// toPullRequest prefers the web URL over the REST resource URL.
func toPullRequest(pr pullRequest) entities.PullRequest {
	webURL := pr.URL
	if pr.Repository.WebURL != "" {
		webURL = fmt.Sprintf("%s/pullrequest/%d", pr.Repository.WebURL, pr.ID)
	}
	return entities.PullRequest{
		ID:           pr.ID,
		Title:        pr.Title,
		URL:          webURL,
		Status:       pr.Status,
		SourceBranch: strings.TrimPrefix(pr.SourceRefName, headsPrefix),
		TargetBranch: strings.TrimPrefix(pr.TargetRefName, headsPrefix),
	}
}
