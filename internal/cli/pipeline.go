package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewPipelineCmd создаёт группу команд для наблюдения за pipeline'ом.
func NewPipelineCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Inspect the training pipeline",
	}

	cmd.AddCommand(newPipelineStatusCmd(clientFn, outputFn))

	return cmd
}

func newPipelineStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue and running jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			status, err := client.PipelineStatus()
			if err != nil {
				return err
			}

			out.Print(
				[]string{"RUNNING", "QUEUED", "MAX_CONCURRENT"},
				[][]string{{
					strconv.Itoa(status.RunningCount),
					strconv.Itoa(status.QueueLength),
					strconv.Itoa(status.MaxConcurrent),
				}},
				status,
			)
			return nil
		},
	}
}
