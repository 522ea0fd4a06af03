package cli

import (
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [name] [path]",
	Short: "Register a project with the engine",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := conn.registerProject(args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("registered %q at %s (%d tasks, %d sub-projects)\n",
			proj.Name, proj.Directory, len(proj.Tasks), len(proj.SubProjects))
		return nil
	},
}
