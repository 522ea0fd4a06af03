package cli

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks [project]",
	Short: "List a project's registered tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := conn.listTasks(args[0])
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.Phase != "" {
				cmd.Printf("%s\t[%s]\t%s\n", t.ID, t.Phase, t.Description)
			} else {
				cmd.Printf("%s\t\t%s\n", t.ID, t.Description)
			}
		}
		return nil
	},
}
