package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

// loadSettings reads --config, or the first config file found in the default
// locations, or falls back to the built-in defaults.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		found, err := entities.FindConfigFile()
		if err != nil {
			logger.Infof("No config file found, using defaults")
			return entities.NewDefaultSettings(), nil
		}
		configPath = found
	}

	logger.Infof("Using config file: %s", configPath)
	return entities.NewSettings(configPath)
}

// applyCommonOverrides copies the flags shared by every subcommand onto the
// loaded settings. Only flags set explicitly on the command line win.
func applyCommonOverrides(cmd *cobra.Command, settings *entities.Settings) {
	flags := cmd.Flags()

	if verbose, _ := flags.GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	if flags.Changed("dry-run") {
		settings.Remediation.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("branches") {
		settings.Branches, _ = flags.GetStringSlice("branches")
	}
	if flags.Changed("file") {
		settings.Workflow.FileName, _ = flags.GetString("file")
	}
	if flags.Changed("output") {
		settings.Report.Path, _ = flags.GetString("output")
	}
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("branches", nil,
		"Tracked branches, in report order (default: main,master,dev)")
	cmd.Flags().String("file", "",
		"Workflow file name to look for (default: "+entities.DefaultWorkflowFile+")")
	cmd.Flags().StringP("output", "o", "",
		"Report path (default: "+entities.DefaultReportPath+")")
}
