package entities

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	forgeHelpers "github.com/rios0rios0/gitforge/pkg/config/domain/helpers"
	forgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGitHub      = "github"
	ProviderGitLab      = "gitlab"
	ProviderAzureDevOps = "azuredevops"
	ProviderLocal       = "local"

	appName = "onboarding"

	DefaultOrganization   = "sig-se-demo"
	DefaultWorkflowFile   = "polaris.yml"
	DefaultSearchRoot     = ".github"
	DefaultTargetDir      = ".github/workflows"
	DefaultTemplateURL    = "https://raw.githubusercontent.com/sig-se-demo/webgoat-demo/main/.github/workflows/polaris.yml"
	DefaultReportPath     = "./onboarding_metrics.csv"
	DefaultRequestTimeout = 30 * time.Second
)

// DefaultBranches are the tracked branches when none are configured.
//
//nolint:gochecknoglobals // read-only defaults
var DefaultBranches = []string{"main", "master", "dev"}

// Settings is the immutable run configuration. It is loaded once at startup
// and handed to every component by pointer; nothing mutates it afterwards.
type Settings struct {
	Provider       ProviderSettings    `yaml:"provider"`
	Organization   string              `yaml:"organization"`
	Workflow       WorkflowSettings    `yaml:"workflow"`
	Branches       []string            `yaml:"branches"`
	Remediation    RemediationSettings `yaml:"remediation"`
	Report         ReportSettings      `yaml:"report"`
	Concurrency    int                 `yaml:"concurrency"`
	RequestTimeout time.Duration       `yaml:"request_timeout"`
}

// ProviderSettings selects the Git hosting service.
type ProviderSettings struct {
	Type    string `yaml:"type"`     // "github", "gitlab", "azuredevops" or "local"
	Token   string `yaml:"token"`    // Inline, ${ENV_VAR}, or file path
	BaseURL string `yaml:"base_url"` // GitHub Enterprise, self-hosted GitLab or Azure DevOps Server URL
}

// WorkflowSettings describes the workflow file being audited.
type WorkflowSettings struct {
	FileName        string `yaml:"file_name"`
	SearchRoot      string `yaml:"search_root"`
	TargetDir       string `yaml:"target_dir"`
	TemplateURL     string `yaml:"template_url"`
	TemplateRetries int    `yaml:"template_retries"`
}

// TargetPath is where remediation writes the workflow file.
func (w WorkflowSettings) TargetPath() string {
	return path.Join(w.TargetDir, w.FileName)
}

// RemediationBranch is the deterministic branch name used to remediate the
// given source branch, so re-runs target the same branch.
func (w WorkflowSettings) RemediationBranch(sourceBranch string) string {
	return fmt.Sprintf("add-%s-%s", w.FileName, sourceBranch)
}

// CommitMessage is used both for the file commit and as the PR title.
func (w WorkflowSettings) CommitMessage() string {
	return fmt.Sprintf("Add %s workflow file", w.FileName)
}

// RemediationSettings toggles pull request creation.
type RemediationSettings struct {
	Enabled bool `yaml:"enabled"`
	DryRun  bool `yaml:"dry_run"`
}

// ReportSettings controls where the CSV report goes.
type ReportSettings struct {
	Path   string         `yaml:"path"`
	Upload UploadSettings `yaml:"upload"`
}

// UploadSettings points at an S3-compatible bucket receiving a copy of the report.
type UploadSettings struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Object    string `yaml:"object"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Enabled reports whether an upload target is configured.
func (u UploadSettings) Enabled() bool {
	return u.Endpoint != "" && u.Bucket != ""
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewDefaultSettings returns the settings used when no config file exists.
func NewDefaultSettings() *Settings {
	branches := make([]string, len(DefaultBranches))
	copy(branches, DefaultBranches)

	return &Settings{
		Provider:     ProviderSettings{Type: ProviderGitHub},
		Organization: DefaultOrganization,
		Workflow: WorkflowSettings{
			FileName:    DefaultWorkflowFile,
			SearchRoot:  DefaultSearchRoot,
			TargetDir:   DefaultTargetDir,
			TemplateURL: DefaultTemplateURL,
		},
		Branches:       branches,
		Report:         ReportSettings{Path: DefaultReportPath},
		Concurrency:    1,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// NewSettings reads a configuration file on top of the defaults, expanding
// environment variables and resolving token file paths. The result is not
// validated so CLI overrides can still be applied; call Validate afterwards.
func NewSettings(configPath string) (*Settings, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}

	settings := NewDefaultSettings()
	if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Provider.Token = ResolveToken(settings.Provider.Token)
	settings.Report.Upload.AccessKey = ResolveToken(settings.Report.Upload.AccessKey)
	settings.Report.Upload.SecretKey = ResolveToken(settings.Report.Upload.SecretKey)

	return settings, nil
}

// FindConfigFile searches `.`, `.config`, `configs`, `$HOME` and
// `$HOME/.config` for an onboarding configuration file.
func FindConfigFile() (string, error) {
	path, err := forgeHelpers.FindConfigFile(appName)
	if err != nil {
		return "", fmt.Errorf("%w in default locations", err)
	}
	return path, nil
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// ResolveTokenFromEnv returns the conventional token variable for a provider.
func ResolveTokenFromEnv(providerType string) string {
	return forgeHelpers.ResolveTokenFromEnv(ServiceTypeOf(providerType))
}

// ServiceTypeOf maps a provider type onto the hosting service it talks to.
func ServiceTypeOf(providerType string) forgeEntities.ServiceType {
	switch providerType {
	case ProviderGitHub:
		return forgeEntities.GITHUB
	case ProviderGitLab:
		return forgeEntities.GITLAB
	case ProviderAzureDevOps:
		return forgeEntities.AZUREDEVOPS
	default:
		return forgeEntities.UNKNOWN
	}
}

// Validate checks for required configuration values.
func (s *Settings) Validate() error {
	switch s.Provider.Type {
	case ProviderGitHub, ProviderGitLab, ProviderAzureDevOps:
		if s.Provider.Token == "" {
			return fmt.Errorf(
				"provider.token is required for %q (set inline, via ${ENV_VAR}, as file path, or export %s)",
				s.Provider.Type, forgeHelpers.TokenEnvHint(ServiceTypeOf(s.Provider.Type)),
			)
		}
		if s.Organization == "" {
			return errors.New("organization is required")
		}
	case ProviderLocal:
	case "":
		return errors.New("provider.type is required")
	default:
		return fmt.Errorf("unknown provider type: %q", s.Provider.Type)
	}

	if err := s.validateWorkflow(); err != nil {
		return err
	}

	if len(s.Branches) == 0 {
		return errors.New("branches must have at least one entry")
	}
	seen := make(map[string]bool, len(s.Branches))
	for i, branch := range s.Branches {
		if strings.TrimSpace(branch) == "" {
			return fmt.Errorf("branches[%d] is empty", i)
		}
		if seen[branch] {
			return fmt.Errorf("branches[%d] %q is listed twice", i, branch)
		}
		seen[branch] = true
	}

	if s.Report.Path == "" {
		return errors.New("report.path is required")
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}

	return nil
}

func (s *Settings) validateWorkflow() error {
	if s.Workflow.FileName == "" {
		return errors.New("workflow.file_name is required")
	}
	if strings.Contains(s.Workflow.FileName, "/") {
		return fmt.Errorf("workflow.file_name %q must be a file name, not a path", s.Workflow.FileName)
	}
	if s.Workflow.SearchRoot == "" {
		return errors.New("workflow.search_root is required")
	}
	if s.Remediation.Enabled {
		if s.Workflow.TargetDir == "" {
			return errors.New("workflow.target_dir is required when remediation is enabled")
		}
		if s.Workflow.TemplateURL == "" {
			return errors.New("workflow.template_url is required when remediation is enabled")
		}
		if s.Workflow.FileName != DefaultWorkflowFile && s.Workflow.TemplateURL == DefaultTemplateURL {
			return fmt.Errorf(
				"workflow.template_url must be set for %q, the default template is %s",
				s.Workflow.FileName, DefaultWorkflowFile,
			)
		}
	}
	if s.Workflow.TemplateRetries < 0 {
		return errors.New("workflow.template_retries must not be negative")
	}
	return nil
}
