package main

import (
	"fmt"
	"text/tabwriter"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect client workout schedules",
}

var scheduleWeekCmd = &cobra.Command{
	Use:   "week <client-id>",
	Short: "Print the client's resolved week",
	Long: `Print which division the client trains on each weekday.

The source column says whether the week comes from the saved schedule or was
derived from the day hints on the client's active workouts.`,
	Args: cobra.ExactArgs(1),
	RunE: runScheduleWeek,
}

func init() {
	scheduleCmd.AddCommand(scheduleWeekCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleWeek(cmd *cobra.Command, args []string) error {
	clientID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}
	ctx := cmd.Context()
	store, err := current.openStore(ctx)
	if err != nil {
		return err
	}

	schedules := service.NewScheduleService(store, current.calendar(), current.logger)
	week, err := schedules.Week(ctx, clientID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "source\t%s\n", week.Source)
	for _, day := range domain.Weekdays {
		label := "rest"
		if l := week.Days[day]; l != nil {
			label = string(*l)
		}
		fmt.Fprintf(w, "%s\t%s\n", day, label)
	}
	return w.Flush()
}
