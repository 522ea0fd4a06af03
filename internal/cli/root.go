package cli

import (
	"github.com/spf13/cobra"
)

var (
	serverAddress string
	conn          *client

	version = "dev"
)

// SetVersion sets the version reported by "architect version".
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "architect",
	Short: "Client for the architect-engine daemon",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		conn = newClient(serverAddress)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "http://localhost:7420", "engine daemon address")
	rootCmd.AddCommand(registerCmd, tasksCmd, runCmd, authCmd, versionCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println(version)
		return nil
	},
}
