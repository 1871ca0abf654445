package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/tui"
)

var setupEnvPath string

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run interactive setup wizard",
	Long:  "Run the interactive setup wizard to connect the agent to a WAHA gateway and a completion API, and to pick the trigger word.",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&setupEnvPath, "env", ".env", "path of the .env file to write")
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := tui.RunSetup(setupEnvPath)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	// Show the resulting configuration after setup
	fmt.Println()
	return tui.ShowStatus(cfg, nil)
}
