package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/onboarding/internal/domain/commands"
	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

// AuditController runs the organization-wide audit.
type AuditController struct {
	command commands.Audit
}

// NewAuditController creates a new AuditController.
func NewAuditController(command commands.Audit) *AuditController {
	return &AuditController{command: command}
}

// GetBind returns the Cobra command metadata for the audit controller.
func (it *AuditController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "audit",
		Short: "Audit every repository of an organization for the workflow file",
		Long: `Discover every repository of an organization, check whether the workflow
file exists on each tracked branch, optionally open pull requests adding it
where it is missing, and write the results to a CSV report.

Configuration is read from --config or auto-detected (.onboarding.yaml).
Flags override the config file.`,
	}
}

// AddFlags adds audit-specific flags to the given Cobra command.
func (it *AuditController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("org", "",
		"Organization (or GitLab group) to audit (default: "+entities.DefaultOrganization+")")
	cmd.Flags().String("provider", "",
		"Git provider: github, gitlab, azuredevops")
	cmd.Flags().Bool("remediate", false,
		"Open pull requests adding the workflow file where it is missing")
	cmd.Flags().String("template-url", "",
		"URL of the workflow file committed by remediation (required with --file)")
	cmd.Flags().IntP("concurrency", "j", 0,
		"Number of repositories audited in parallel (default: 1)")
	addReportFlags(cmd)
}

// Execute loads the settings, applies flag overrides and runs the audit.
func (it *AuditController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		settings.Provider.Type, _ = flags.GetString("provider")
	}
	if flags.Changed("org") {
		settings.Organization, _ = flags.GetString("org")
	}
	if flags.Changed("remediate") {
		settings.Remediation.Enabled, _ = flags.GetBool("remediate")
	}
	if flags.Changed("template-url") {
		settings.Workflow.TemplateURL, _ = flags.GetString("template-url")
	}
	if flags.Changed("concurrency") {
		settings.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("token") {
		settings.Provider.Token, _ = flags.GetString("token")
	}
	if settings.Provider.Token == "" {
		settings.Provider.Token = entities.ResolveTokenFromEnv(settings.Provider.Type)
	}
	applyCommonOverrides(cmd, settings)

	if validateErr := settings.Validate(); validateErr != nil {
		return fmt.Errorf("invalid configuration: %w", validateErr)
	}

	if _, execErr := it.command.Execute(cmd.Context(), settings); execErr != nil {
		return fmt.Errorf("audit failed: %w", execErr)
	}
	return nil
}
