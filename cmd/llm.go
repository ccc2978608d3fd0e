package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/drill/internal/llm"
	"github.com/abhisek/drill/internal/store"
)

const timeLayout = "2006-01-02 15:04"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		calls, err := svc.store.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(calls) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}

		rows := make([][]string, 0, len(calls))
		for _, e := range calls {
			ok := "✔"
			if !e.Success {
				ok = "✘"
			}
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				e.Timestamp.Local().Format(timeLayout),
				e.Purpose,
				e.Model,
				fmt.Sprintf("%d/%d", e.InputTokens, e.OutputTokens),
				(time.Duration(e.LatencyMs) * time.Millisecond).String(),
				ok,
			})
		}
		fmt.Println(renderTable([]string{"ID", "Time", "Purpose", "Model", "Tokens", "Latency", "OK"}, rows))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		e, err := svc.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("llm call %d not found", id)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Call %d at %s\n", e.ID, e.Timestamp.Local().Format(timeLayout))
		fmt.Printf("%s %s for %q, %d in / %d out tokens, %dms\n",
			e.Provider, e.Model, e.Purpose, e.InputTokens, e.OutputTokens, e.LatencyMs)
		if e.ErrorMessage != "" {
			fmt.Println("Error:", e.ErrorMessage)
		}
		printSection("Prompt", e.RequestBody)
		printSection("Reply", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		repo := svc.store.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(ctx)
		if err != nil {
			return err
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}
		byModel, err := repo.LLMUsageByModel(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(byPurpose))
		for _, u := range byPurpose {
			rows = append(rows, []string{
				u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens), fmt.Sprintf("%dms", u.AvgLatencyMs),
			})
		}
		fmt.Println(renderTable([]string{"Purpose", "Calls", "In", "Out", "Avg"}, rows))

		rows, total, unpriced := costRows(byModel)
		fmt.Println(renderTable([]string{"Model", "Calls", "In", "Out", "Cost"}, rows))
		fmt.Printf("Estimated total: %s\n", formatUSD(total))
		if len(unpriced) > 0 {
			fmt.Printf("No pricing for %s; excluded from the total.\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// costRows prices each model's usage. Models without a known price show
// "?" and are returned in unpriced.
func costRows(usage []store.LLMUsage) (rows [][]string, total float64, unpriced []string) {
	for _, u := range usage {
		cost := "?"
		if p, ok := llm.PriceOf(u.Model); ok {
			c := p.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatUSD(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		rows = append(rows, []string{
			u.Model, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost,
		})
	}
	return rows, total, unpriced
}

func formatUSD(v float64) string {
	if v > 0 && v < 0.01 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func printSection(title, body string) {
	fmt.Printf("\n── %s ──\n", title)
	if body == "" {
		body = "(empty)"
	}
	fmt.Println(strings.TrimRight(body, "\n"))
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "maximum calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "only calls made for this purpose (e.g. hint)")
	llmListCmd.Flags().Duration("since", 0, "only calls newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
