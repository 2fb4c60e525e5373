package main

import (
	"github.com/spf13/cobra"
)

func newUsageCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show account usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usage, err := a.client.GetUsage(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(usage)
		},
	}
}

func newQuotaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the remaining quota of the current period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quota, err := a.client.GetQuotaStatus(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(quota)
		},
	}
}

func newSchedulesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage scheduled captures",
	}

	var limit int
	history := &cobra.Command{
		Use:   "history <id>",
		Short: "Show past runs of a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lim *int
			if cmd.Flags().Changed("limit") {
				lim = &limit
			}
			h, err := a.client.GetScheduleHistory(cmd.Context(), args[0], lim)
			if err != nil {
				return err
			}
			return a.printJSON(h)
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List schedules",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := a.client.ListSchedules(cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(list)
			},
		},
		&cobra.Command{
			Use:   "trigger <id>",
			Short: "Run a schedule now",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.client.TriggerSchedule(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printJSON(s)
			},
		},
		history,
	)
	return cmd
}
