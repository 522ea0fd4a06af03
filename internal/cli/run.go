package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [project] [task] [args...]",
	Short: "Execute a task and stream its events",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, taskID, taskArgs := args[0], args[1], args[2:]

		executionID, err := conn.runTask(project, taskID, taskArgs)
		if err != nil {
			return err
		}
		cmd.Printf("execution %s\n", executionID)

		failed := false
		err = conn.streamExecution(executionID, func(evt streamedEvent) {
			cmd.Println(formatEvent(evt))
			if isOverallFailure(evt) {
				failed = true
			}
		})
		if err != nil {
			return err
		}

		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func formatEvent(evt streamedEvent) string {
	taskID, _ := evt.Event["TaskID"].(string)
	if taskID != "" {
		return fmt.Sprintf("%s %s", evt.ID, taskID)
	}
	return evt.ID
}

// isOverallFailure reports whether evt is the execution-level FAILED
// terminal (empty task id, per the eventbus "overall terminal" convention).
func isOverallFailure(evt streamedEvent) bool {
	taskID, _ := evt.Event["TaskID"].(string)
	return evt.ID == "execution.failed" && taskID == ""
}
