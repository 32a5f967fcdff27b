package main

import (
	"fmt"

	"alcyxob/ecofit/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var gamificationCmd = &cobra.Command{
	Use:   "gamification",
	Short: "Inspect client XP, levels and streaks",
}

var gamificationShowCmd = &cobra.Command{
	Use:   "show <client-id>",
	Short: "Print a client's level and streak summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runGamificationShow,
}

func init() {
	gamificationCmd.AddCommand(gamificationShowCmd)
	rootCmd.AddCommand(gamificationCmd)
}

func runGamificationShow(cmd *cobra.Command, args []string) error {
	clientID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}
	ctx := cmd.Context()
	store, err := current.openStore(ctx)
	if err != nil {
		return err
	}

	progress := service.NewProgressService(store, current.calendar(), current.logger)
	s, err := progress.Summary(ctx, clientID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Level %d (%d/%d XP, %d total)\n", s.Level, s.XPInLevel, s.XPInLevel+s.XPToNextLevel, s.TotalXP)
	fmt.Fprintf(out, "Streak: %d days (longest %d)\n", s.CurrentStreak, s.LongestStreak)
	fmt.Fprintf(out, "Sessions: %d total, %d this week", s.TotalSessions, s.SessionsThisWeek)
	if s.WeeklyTarget != nil {
		fmt.Fprintf(out, " of %d", *s.WeeklyTarget)
	}
	fmt.Fprintln(out)
	if s.LastWorkoutDate != nil {
		fmt.Fprintf(out, "Last workout: %s\n", s.LastWorkoutDate.Format("2006-01-02"))
	}
	return nil
}
