package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewDataCmd создаёт группу команд для управления обучающими данными.
func NewDataCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage training data",
	}

	cmd.AddCommand(
		newDataAddCmd(clientFn, outputFn),
		newDataListCmd(clientFn, outputFn),
	)

	return cmd
}

func newDataAddCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var modelID string
	var label string
	var payload []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a training data point",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateDataPointRequest{
				ModelID: modelID,
				Label:   label,
			}
			if len(payload) > 0 {
				req.Payload = make(map[string]any, len(payload))
				for _, kv := range payload {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid payload format %q, expected KEY=VALUE", kv)
					}
					req.Payload[parts[0]] = parts[1]
				}
			}

			dp, err := client.CreateDataPoint(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Data point added: %s", dp.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelID, "model-id", "", "Model ID (required)")
	cmd.Flags().StringVar(&label, "label", "", "Data point label")
	cmd.Flags().StringSliceVar(&payload, "payload", nil, "Payload field as KEY=VALUE (repeatable)")
	cmd.MarkFlagRequired("model-id")

	return cmd
}

func newDataListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var modelID string
	var labels []string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List training data points",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			points, err := client.ListData(ListDataOpts{
				ModelID: modelID,
				Labels:  labels,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "MODEL_ID", "LABEL", "CREATED"}
			rows := make([][]string, len(points))
			for i, dp := range points {
				rows[i] = []string{dp.ID, dp.ModelID, dp.Label, dp.CreatedAt}
			}

			out.Print(headers, rows, points)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelID, "model-id", "", "Filter by model ID")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "Filter by label (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}
