package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/drill/internal/progress"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show level, streak and solving activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		st, err := svc.practice.Ledger().State(ctx, time.Now())
		if err != nil {
			return err
		}
		counts, err := svc.store.ProblemRepo().Counts(ctx)
		if err != nil {
			return fmt.Errorf("count problems: %w", err)
		}
		times, err := svc.store.AttemptRepo().SuccessTimes(ctx)
		if err != nil {
			return fmt.Errorf("load activity: %w", err)
		}

		fmt.Println(progress.Badge(st))
		fmt.Printf("Next level:  %d/%d XP\n", progress.LevelProgress(st.TotalXP), progress.XPPerLevel)
		fmt.Printf("Solved:      %d/%d\n", counts.Solved, counts.Total)

		activity := progress.DailyActivity(times)
		if len(activity) == 0 {
			fmt.Println("\nNo passing runs yet.")
			return nil
		}
		if days > 0 && len(activity) > days {
			activity = activity[len(activity)-days:]
		}

		peak := 0
		for _, d := range activity {
			peak = max(peak, d.Count)
		}
		fmt.Println("\nTests passed per day")
		fmt.Println(strings.Repeat("─", 52))
		for _, d := range activity {
			bar := strings.Repeat("█", max(1, d.Count*30/peak))
			fmt.Printf("%s  %4d  %s\n", d.Day.Format("2006-01-02"), d.Count, bar)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show wins and failures per problem",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		stats, err := svc.store.AttemptRepo().GlobalStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No attempts yet.")
			return nil
		}

		rows := make([][]string, 0, len(stats))
		for _, s := range stats {
			rows = append(rows, []string{
				s.Title,
				strconv.Itoa(s.Wins),
				strconv.Itoa(s.Fails),
				s.LastAttempt.Local().Format("2006-01-02 15:04"),
			})
		}
		fmt.Println(renderTable([]string{"Problem", "Wins", "Fails", "Last attempt"}, rows))
		return nil
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List solved problems due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		now := time.Now()
		due, err := svc.scheduler.DueForReview(cmd.Context(), now)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("Nothing due for review.")
			return nil
		}

		rows := make([][]string, 0, len(due))
		for _, d := range due {
			rows = append(rows, []string{
				strconv.FormatInt(d.ProblemID, 10),
				d.Title,
				fmt.Sprintf("%d days", d.StaleDays(now)),
			})
		}
		fmt.Println(renderTable([]string{"ID", "Title", "Last practiced"}, rows))
		fmt.Printf("Review threshold: %s\n", svc.scheduler.Threshold())
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("days", 14, "Number of most recent active days to chart (0 = all)")
}
