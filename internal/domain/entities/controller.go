package entities

import "github.com/spf13/cobra"

// ControllerBind holds the Cobra metadata a controller is mounted with.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is a CLI entry point exposed as a subcommand. Errors returned by
// Execute end the process with a non-zero status.
type Controller interface {
	GetBind() ControllerBind
	AddFlags(command *cobra.Command)
	Execute(command *cobra.Command, arguments []string) error
}
