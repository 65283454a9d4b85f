package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/onboarding/internal/domain/commands"
	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

// LocalController audits a single clone on disk (standalone local mode).
type LocalController struct {
	command commands.Audit
}

// NewLocalController creates a new LocalController.
func NewLocalController(command commands.Audit) *LocalController {
	return &LocalController{command: command}
}

// GetBind returns the Cobra command metadata for the local controller.
func (it *LocalController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "local [path]",
		Short: "Audit a local repository for the workflow file",
		Long: `Check a local Git repository for the workflow file on each tracked branch.
Local and remote-tracking branches are read without touching the worktree.
Nothing is remediated in this mode.`,
	}
}

// AddFlags adds local-specific flags to the given Cobra command.
func (it *LocalController) AddFlags(cmd *cobra.Command) {
	addReportFlags(cmd)
}

// Execute runs the audit against the repository at the given path.
func (it *LocalController) Execute(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	repoDir := "."
	if len(args) > 0 {
		repoDir = args[0]
	}

	settings.Provider = entities.ProviderSettings{Type: entities.ProviderLocal}
	settings.Organization = repoDir
	settings.Remediation.Enabled = false
	applyCommonOverrides(cmd, settings)

	if validateErr := settings.Validate(); validateErr != nil {
		return fmt.Errorf("invalid configuration: %w", validateErr)
	}

	if _, execErr := it.command.Execute(cmd.Context(), settings); execErr != nil {
		return fmt.Errorf("local audit failed: %w", execErr)
	}
	return nil
}
