package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewJobCmd создаёт группу команд для управления training jobs.
func NewJobCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage training jobs",
	}

	cmd.AddCommand(
		newJobListCmd(clientFn, outputFn),
		newJobCreateCmd(clientFn, outputFn),
		newJobShowCmd(clientFn, outputFn),
		newJobSubmitCmd(clientFn, outputFn),
		newJobCancelCmd(clientFn, outputFn),
		newJobProgressCmd(clientFn, outputFn),
		newJobCompleteCmd(clientFn, outputFn),
	)

	return cmd
}

func jobRow(j *JobResponse) []string {
	return []string{
		j.ID,
		j.ModelID,
		j.Status,
		strconv.Itoa(j.Progress) + "%",
		fmt.Sprintf("%d/%d", j.CurrentEpoch, j.TotalEpochs),
		j.CreatedAt,
	}
}

var jobHeaders = []string{"ID", "MODEL_ID", "STATUS", "PROGRESS", "EPOCH", "CREATED"}

func newJobListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var modelID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List training jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			jobs, err := client.ListJobs(ListJobsOpts{
				ModelID: modelID,
				Status:  status,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, len(jobs))
			for i := range jobs {
				rows[i] = jobRow(&jobs[i])
			}

			out.Print(jobHeaders, rows, jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelID, "model-id", "", "Filter by model ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, COMPLETED, FAILED, CANCELLED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newJobCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var modelID string
	var dataPointIDs []string
	var labels []string
	var modelType string
	var framework string
	var totalEpochs int
	var createdBy string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a training job (PENDING, not submitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateJobRequest{
				ModelID:      modelID,
				DataPointIDs: dataPointIDs,
				TotalEpochs:  totalEpochs,
				CreatedBy:    createdBy,
			}
			if len(labels) > 0 {
				req.DataQuery = map[string]any{"labels": labels}
			}
			if modelType != "" || framework != "" {
				req.Config = map[string]any{}
				if modelType != "" {
					req.Config["model_type"] = modelType
				}
				if framework != "" {
					req.Config["framework"] = framework
				}
			}

			job, err := client.CreateJob(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job created: %s", job.ID))
			out.Print(jobHeaders, [][]string{jobRow(job)}, job)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelID, "model-id", "", "Model ID (required)")
	cmd.Flags().StringSliceVar(&dataPointIDs, "data-point", nil, "Explicit data point ID (repeatable)")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "Data query label (repeatable)")
	cmd.Flags().StringVar(&modelType, "model-type", "", "Model type (transformer, cnn, ...)")
	cmd.Flags().StringVar(&framework, "framework", "", "Training framework (pytorch, tensorflow, ...)")
	cmd.Flags().IntVar(&totalEpochs, "epochs", 0, "Total training epochs")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Job owner")
	cmd.MarkFlagRequired("model-id")

	return cmd
}

func newJobShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.GetJob(args[0])
			if err != nil {
				return err
			}

			headers := append(jobHeaders, "VERSION_ID", "ERROR")
			row := append(jobRow(job), job.ResultVersionID, job.Error)
			out.Print(headers, [][]string{row}, job)
			return nil
		},
	}
}

func newJobSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "submit ID",
		Short: "Submit a job to the pipeline queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.SubmitJob(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job submitted: %s", job.ID))
			return nil
		},
	}
}

func newJobCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.CancelJob(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Cancel requested: %s", job.ID))
			return nil
		},
	}
}

func newJobProgressCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var progress int
	var currentEpoch int
	var totalEpochs int
	var metrics []string

	cmd := &cobra.Command{
		Use:   "progress ID",
		Short: "Report training progress (external trainer callback)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			parsed, err := parseMetrics(metrics)
			if err != nil {
				return err
			}

			job, err := client.ReportProgress(args[0], ReportProgressRequest{
				Progress:     progress,
				CurrentEpoch: currentEpoch,
				TotalEpochs:  totalEpochs,
				Metrics:      parsed,
			})
			if err != nil {
				return err
			}

			out.Print(jobHeaders, [][]string{jobRow(job)}, job)
			return nil
		},
	}

	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100)")
	cmd.Flags().IntVar(&currentEpoch, "epoch", 0, "Current epoch")
	cmd.Flags().IntVar(&totalEpochs, "total-epochs", 0, "Total epochs")
	cmd.Flags().StringSliceVar(&metrics, "metric", nil, "Training metric as NAME=VALUE (repeatable)")

	return cmd
}

func newJobCompleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var failed bool
	var errText string
	var artifactPath string
	var trainingMetrics []string
	var validationMetrics []string

	cmd := &cobra.Command{
		Use:   "complete ID",
		Short: "Report training result (external trainer callback)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			training, err := parseMetrics(trainingMetrics)
			if err != nil {
				return err
			}
			validation, err := parseMetrics(validationMetrics)
			if err != nil {
				return err
			}

			job, err := client.CompleteJob(args[0], CompleteJobRequest{
				Success:           !failed,
				Error:             errText,
				TrainingMetrics:   training,
				ValidationMetrics: validation,
				ArtifactPath:      artifactPath,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job finished: %s (%s)", job.ID, job.Status))
			return nil
		},
	}

	cmd.Flags().BoolVar(&failed, "failed", false, "Mark the job as FAILED")
	cmd.Flags().StringVar(&errText, "error", "", "Error message for a failed job")
	cmd.Flags().StringVar(&artifactPath, "artifact", "", "Path to the trained model artifact")
	cmd.Flags().StringSliceVar(&trainingMetrics, "training-metric", nil, "Training metric as NAME=VALUE (repeatable)")
	cmd.Flags().StringSliceVar(&validationMetrics, "validation-metric", nil, "Validation metric as NAME=VALUE (repeatable)")

	return cmd
}

// parseMetrics разбирает пары NAME=VALUE в карту метрик.
func parseMetrics(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	metrics := make(map[string]float64, len(pairs))
	for _, kv := range pairs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid metric format %q, expected NAME=VALUE", kv)
		}
		value, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid metric value %q: %w", kv, err)
		}
		metrics[parts[0]] = value
	}
	return metrics, nil
}
