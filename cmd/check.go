package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/drill/internal/hints"
	"github.com/abhisek/drill/internal/progress"
	"github.com/abhisek/drill/internal/store"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Run a problem's tests against your solution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		spent, _ := cmd.Flags().GetDuration("time")

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := svc.practice.Submit(cmd.Context(), id, spent)
		if res == nil {
			return problemErr(id, err)
		}

		v := res.Verdict
		fmt.Println(v.Diagnostic)
		fmt.Printf("\n%s in %s (run %s)\n", v.Kind, v.Elapsed.Round(time.Millisecond), v.RunID)
		if res.Award != nil {
			fmt.Println(progress.RewardMessage(*res.Award))
		} else if v.Success && res.AlreadySolved {
			fmt.Println("Already solved, no XP awarded.")
		}
		// A failed XP update still leaves the attempt recorded.
		return err
	},
}

var hintCmd = &cobra.Command{
	Use:   "hint <id>",
	Short: "Ask the configured LLM for a hint on your current solution",
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

		ctx := cmd.Context()
		hintSvc, err := svc.hintService(ctx)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		sess, err := svc.practice.Open(ctx, id)
		if err != nil {
			return problemErr(id, err)
		}
		src, err := svc.workspace.ReadSolution(sess.Problem)
		if err != nil {
			return err
		}
		last, err := svc.store.AttemptRepo().LastFailure(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load last failure: %w", err)
		}

		h, err := hintSvc.Generate(ctx, hints.InputFor(sess.Problem, src, last))
		if err != nil {
			return fmt.Errorf("generate hint: %w", err)
		}
		fmt.Println(h)
		return nil
	},
}

func init() {
	checkCmd.Flags().Duration("time", 0, "Time spent on the solution, recorded with the attempt")
}
