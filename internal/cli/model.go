package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewModelCmd создаёт группу команд для просмотра model registry.
func NewModelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect the model registry",
	}

	cmd.AddCommand(
		newModelShowCmd(clientFn, outputFn),
		newModelVersionCmd(clientFn, outputFn),
	)

	return cmd
}

func newModelShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show MODEL_ID",
		Short: "Show a registry entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			model, err := client.GetModel(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"MODEL_ID", "NAME", "TYPE", "FRAMEWORK", "CREATED"},
				[][]string{{model.ModelID, model.Name, model.ModelType, model.Framework, model.CreatedAt}},
				model,
			)
			return nil
		},
	}
}

func newModelVersionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "version MODEL_ID VERSION_ID",
		Short: "Show a model version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			version, err := client.GetModelVersion(args[0], args[1])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "MODEL_ID", "VERSION", "ARTIFACT", "CREATED"},
				[][]string{{
					version.ID,
					version.ModelID,
					strconv.Itoa(version.Version),
					version.ArtifactPath,
					version.CreatedAt,
				}},
				version,
			)
			return nil
		},
	}
}
