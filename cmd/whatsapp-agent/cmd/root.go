package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "whatsapp-agent",
	Short: "AI auto-responder for WhatsApp via a WAHA gateway",
	Long:  `whatsapp-agent receives webhook events from a WAHA gateway and answers trigger-prefixed messages with AI-generated replies, sent back to the chat they came from.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(versionCmd)
}
