package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/allscreenshots/allscreenshots-sdk-go"
)

func newJobCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect and manage asynchronous capture jobs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List recent jobs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				jobs, err := a.client.ListJobs(cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(jobs)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show the state of a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				job, err := a.client.GetJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printJSON(job)
			},
		},
		&cobra.Command{
			Use:   "cancel <id>",
			Short: "Cancel a queued or running job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				job, err := a.client.CancelJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printJSON(job)
			},
		},
		newJobWaitCommand(a),
		newJobResultCommand(a),
	)
	return cmd
}

func newJobWaitCommand(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait <id>",
		Short: "Wait until a job completes, fails or is cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Debug().Str("job_id", args[0]).Dur("timeout", timeout).Msg("waiting for job")

			job, err := a.client.WaitForJob(cmd.Context(), args[0], allscreenshots.WithWaitTimeout(timeout))
			if job != nil {
				if perr := a.printJSON(job); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "wait-timeout", 5*time.Minute, "give up after this long")
	return cmd
}

func newJobResultCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "result <id>",
		Short: "Download the image of a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := a.client.GetJobResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, image, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.logger.Info().Str("job_id", args[0]).Str("file", output).Int("bytes", len(image)).Msg("result saved")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the image to")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
