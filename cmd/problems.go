package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/abhisek/drill/internal/catalog"
	"github.com/abhisek/drill/internal/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import quiz pages as problems",
	Long: "Import quiz pages as problems. With no arguments every .html page in " +
		"the workspace questions directory is imported. Re-importing a page " +
		"refreshes its instructions and tests but keeps progress and notes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		var rep catalog.Report
		if len(args) == 0 {
			if rep, err = svc.importer.ImportDir(ctx, svc.workspace.QuestionsDir); err != nil {
				return err
			}
		} else {
			rep = svc.importer.ImportFiles(ctx, args)
		}

		for _, im := range rep.Imported {
			fmt.Printf("✓ %-5d %s\n", im.ProblemID, im.Title)
		}
		for _, sk := range rep.Skipped {
			fmt.Printf("- skipped %s: %s\n", sk.Path, sk.Reason)
		}
		for _, f := range rep.Failed {
			fmt.Printf("✗ failed %s: %s\n", f.Path, f.Reason)
		}
		fmt.Printf("\nImported %d, skipped %d, failed %d.\n",
			len(rep.Imported), len(rep.Skipped), len(rep.Failed))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List problems with solved and review marks",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		problems, err := svc.store.ProblemRepo().List(ctx)
		if err != nil {
			return fmt.Errorf("list problems: %w", err)
		}
		if len(problems) == 0 {
			fmt.Println("No problems yet. Run `drill import` first.")
			return nil
		}
		due, err := svc.scheduler.DueIDs(ctx, time.Now())
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(problems))
		for _, p := range problems {
			mark := ""
			if p.Solved {
				mark = "✔"
			}
			review := ""
			if due[p.ID] {
				review = "⚠️"
			}
			rows = append(rows, []string{strconv.FormatInt(p.ID, 10), mark, review, p.Title})
		}
		fmt.Println(renderTable([]string{"ID", "Solved", "Review", "Title"}, rows))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a problem's instructions, notes and attempts",
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
		p, err := svc.store.ProblemRepo().Get(ctx, id)
		if err != nil {
			return problemErr(id, err)
		}
		history, err := svc.store.AttemptRepo().History(ctx, id)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:        %d\n", p.ID)
		fmt.Printf("Title:     %s\n", p.Title)
		fmt.Printf("Solution:  %s\n", svc.workspace.SolutionPath(p))
		fmt.Printf("Solved:    %v\n", p.Solved)
		fmt.Printf("Attempts:  %d\n", len(history))
		fmt.Println()
		fmt.Println(sep)
		fmt.Println(p.Instructions)
		if p.Notes != "" {
			fmt.Println(sep)
			fmt.Println("NOTES")
			fmt.Println(sep)
			fmt.Println(p.Notes)
		}
		if len(history) > 0 {
			fmt.Println(sep)
			for _, a := range history[:min(len(history), 5)] {
				ok := "✓"
				if !a.Success {
					ok = "✗"
				}
				fmt.Printf("%s  %s  %-8s %s\n", ok,
					a.Timestamp.Local().Format("2006-01-02 15:04:05"), a.Kind, a.Duration.Round(time.Second))
			}
		}
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes <id> [text]",
	Short: "Show or replace the notes on a problem",
	Args:  cobra.MinimumNArgs(1),
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
		repo := svc.store.ProblemRepo()
		if len(args) == 1 {
			p, err := repo.Get(ctx, id)
			if err != nil {
				return problemErr(id, err)
			}
			if p.Notes == "" {
				fmt.Println("(no notes)")
				return nil
			}
			fmt.Println(p.Notes)
			return nil
		}

		if err := repo.SaveNotes(ctx, id, strings.Join(args[1:], " ")); err != nil {
			return problemErr(id, err)
		}
		fmt.Printf("Saved notes for problem %d.\n", id)
		return nil
	},
}

var resetCodeCmd = &cobra.Command{
	Use:   "reset-code <id>",
	Short: "Overwrite a solution file with the starter code",
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

		path, err := svc.practice.Reset(cmd.Context(), id)
		if err != nil {
			return problemErr(id, err)
		}
		fmt.Printf("Reset %s\n", path)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete problems and their attempt history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, a := range args {
			id, err := parseID(a)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		var errs []error
		for _, id := range ids {
			if err := svc.store.ProblemRepo().Delete(cmd.Context(), id); err != nil {
				errs = append(errs, problemErr(id, err))
				continue
			}
			fmt.Printf("Deleted problem %d.\n", id)
		}
		return errors.Join(errs...)
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func problemErr(id int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("problem %d not found", id)
	}
	return err
}

func renderTable(headers []string, rows [][]string) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Faint(true)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}
