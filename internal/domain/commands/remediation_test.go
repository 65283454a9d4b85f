//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/onboarding/internal/domain/commands"
	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/onboarding/test/infrastructure/repositorydoubles"
)

const targetPath = ".github/workflows/polaris.yml"

func newRemediationSettings() *entities.Settings {
	settings := entities.NewDefaultSettings()
	settings.Provider.Token = "test-token"
	settings.Remediation.Enabled = true
	return settings
}

func TestRemediationWorkflowRemediate(t *testing.T) {
	t.Parallel()

	repo := entitybuilders.NewRepositoryBuilder().BuildRepository()
	template := []byte("name: polaris\non: [push]\n")

	t.Run("should create branch, commit the template and open a pull request", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "master", "README.md", []byte("readme"))
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "master")

		// then
		assert.True(t, created)
		assert.Equal(t, []string{"sig-se-demo/webgoat-demo:add-polaris.yml-master"}, provider.CreatedBranches)
		assert.True(t, provider.HasBranch(repo, "add-polaris.yml-master"))

		content, found := provider.FileAt(repo, "add-polaris.yml-master", targetPath)
		require.True(t, found)
		assert.Equal(t, template, content)
		_, onBase := provider.FileAt(repo, "master", targetPath)
		assert.False(t, onBase)

		require.Len(t, provider.PRInputs, 1)
		assert.Equal(t, entities.PullRequestInput{
			SourceBranch: "add-polaris.yml-master",
			TargetBranch: "master",
			Title:        "Add polaris.yml workflow file",
			Description:  "This PR adds the polaris.yml workflow file to the master branch.",
		}, provider.PRInputs[0])
		require.Len(t, provider.WriteInputs, 1)
		assert.Equal(t, "Add polaris.yml workflow file", provider.WriteInputs[0].Message)
		assert.Empty(t, provider.WriteInputs[0].PriorHash)
	})

	t.Run("should be idempotent when invoked twice", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "dev", "README.md", []byte("readme"))
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())
		ctx := context.Background()

		// when
		first := workflow.Remediate(ctx, repo, "dev")
		second := workflow.Remediate(ctx, repo, "dev")

		// then
		assert.True(t, first)
		assert.False(t, second)
		assert.Len(t, provider.CreatedBranches, 1)
		assert.Len(t, provider.PullRequests(repo), 1)
		assert.Len(t, provider.PRInputs, 1)
		assert.Len(t, provider.WriteInputs, 1, "identical content must not be rewritten")
	})

	t.Run("should return false without side effects when the base branch is missing", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme"))
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "master")

		// then
		assert.False(t, created)
		assert.Zero(t, provider.CreateBranchCalls)
		assert.Zero(t, templates.FetchCalls)
		assert.Empty(t, provider.WriteInputs)
		assert.Empty(t, provider.PRInputs)
		assert.False(t, provider.HasBranch(repo, "add-polaris.yml-master"))
	})

	t.Run("should reuse an existing remediation branch and update a stale file", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme")).
			AddFile(repo, "add-polaris.yml-main", targetPath, []byte("outdated"))
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "main")

		// then
		assert.True(t, created)
		assert.Zero(t, provider.CreateBranchCalls)
		require.Len(t, provider.WriteInputs, 1)
		assert.NotEmpty(t, provider.WriteInputs[0].PriorHash)
		content, _ := provider.FileAt(repo, "add-polaris.yml-main", targetPath)
		assert.Equal(t, template, content)
	})

	t.Run("should not open a second pull request when one is already open", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme"))
		provider.AddPullRequest(repo, entities.PullRequest{
			ID:           7,
			Status:       "open",
			SourceBranch: "add-polaris.yml-main",
			TargetBranch: "main",
		})
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "main")

		// then
		assert.False(t, created)
		assert.Empty(t, provider.PRInputs)
	})

	t.Run("should ignore closed pull requests from the same branch", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme"))
		provider.AddPullRequest(repo, entities.PullRequest{
			ID:           3,
			Status:       "closed",
			SourceBranch: "add-polaris.yml-main",
			TargetBranch: "main",
		})
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "main")

		// then
		assert.True(t, created)
		assert.Len(t, provider.PRInputs, 1)
	})

	t.Run("should absorb template fetch failures", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme"))
		templates := &doubles.StubTemplateRepository{FetchErr: errors.New("404 Not Found")}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "main")

		// then
		assert.False(t, created)
		assert.Empty(t, provider.WriteInputs)
		assert.Empty(t, provider.PRInputs)
	})

	t.Run("should absorb pull request creation failures", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme"))
		provider.CreatePRErr = errors.New("permission denied")
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "main")

		// then
		assert.False(t, created)
		assert.Len(t, provider.PRInputs, 1)
	})

	t.Run("should absorb file write failures", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme"))
		provider.WriteErr = errors.New("conflict")
		templates := &doubles.StubTemplateRepository{Content: template}
		workflow := commands.NewRemediationWorkflow(provider, templates, newRemediationSettings())

		// when
		created := workflow.Remediate(context.Background(), repo, "main")

		// then
		assert.False(t, created)
		assert.Empty(t, provider.PRInputs)
	})

	t.Run("should only log the plan in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		provider := doubles.NewInMemoryProviderRepository(repo).
			AddFile(repo, "main", "README.md", []byte("readme"))
		templates := &doubles.StubTemplateRepository{Content: template}
		settings := newRemediationSettings()
		settings.Remediation.DryRun = true
		workflow := commands.NewRemediationWorkflow(provider, templates, settings)

		// when
		created := workflow.Remediate(context.Background(), repo, "main")

		// then
		assert.False(t, created)
		assert.Zero(t, provider.CreateBranchCalls)
		assert.Zero(t, templates.FetchCalls)
		assert.Empty(t, provider.PRInputs)
		assert.False(t, provider.HasBranch(repo, "add-polaris.yml-main"))
		assert.True(t, provider.HasBranch(repo, "main"))
	})
}
