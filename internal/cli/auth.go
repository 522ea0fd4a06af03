package cli

import (
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage credentials used by remote plugin sources",
}

var authLoginCmd = &cobra.Command{
	Use:   "login [provider] [token]",
	Short: "Store a bearer token for a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return conn.setToken(args[0], args[1])
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [provider]",
	Short: "Remove a provider's stored token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return conn.deleteToken(args[0])
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status [provider]",
	Short: "Report whether a provider has a token configured",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := conn.authStatus(args[0])
		if err != nil {
			return err
		}
		if status.Configured {
			cmd.Printf("%s: configured\n", status.Provider)
		} else {
			cmd.Printf("%s: not configured\n", status.Provider)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
}
