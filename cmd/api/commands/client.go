package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/planner/internal/client"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/grouping"
	"github.com/taskmaster/planner/internal/domain/tasktree"
)

// NewBoardCommand prints the task board of a running server
func NewBoardCommand(configFile *string) *cobra.Command {
	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Print the overdue/today/future/done board",
		Long:  "Fetch every task from a running server and print the board of one category view. With --server the grouping is done by the server instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			expand, _ := cmd.Flags().GetStringSlice("expand")
			remote, _ := cmd.Flags().GetBool("server")

			cfg, appLogger, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			if note := categoryNote(category); note != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), note)
			}

			api := client.New(cfg.Client)

			if remote {
				board, err := api.Board(cmd.Context(), category, "", expand...)
				if err != nil {
					return err
				}
				printBoard(cmd.OutOrStdout(), board.Today, board.Sections)
				return nil
			}

			loc, err := cfg.App.Location()
			if err != nil {
				return err
			}

			store := client.NewStore(api, appLogger)
			if err := store.Load(cmd.Context()); err != nil {
				return err
			}
			if err := expandRows(store, expand); err != nil {
				return err
			}

			today := entities.Today(time.Now(), loc)
			printBoard(cmd.OutOrStdout(), today, store.Board(today, category))
			return nil
		},
	}
	boardCmd.Flags().String("category", "", "Category view, or \"uncategorized\"")
	boardCmd.Flags().StringSlice("expand", nil, "Task ids to expand, or \"all\"")
	boardCmd.Flags().Bool("server", false, "Let the server group the board")

	return boardCmd
}

// NewToggleCommand flips a task between pending and done
func NewToggleCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task done, or pending again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			cfg, appLogger, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			store := client.NewStore(client.New(cfg.Client), appLogger)
			if err := store.Load(cmd.Context()); err != nil {
				return err
			}
			if err := store.Toggle(cmd.Context(), id); err != nil {
				return err
			}

			task, _ := store.Task(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkbox(&task), task.Title)
			return nil
		},
	}
}

// categoryNote warns about a view name outside the known categories. Such
// views still work, they match free-form labels.
func categoryNote(category string) string {
	if category == "" || category == grouping.Uncategorized || entities.IsKnownCategory(category) {
		return ""
	}
	return fmt.Sprintf("note: %q is not one of the standard categories (%s)", category, strings.Join(entities.KnownCategories, ", "))
}

func expandRows(store *client.Store, expand []string) error {
	for _, raw := range expand {
		if raw == "all" {
			parents := tasktree.NewIDSet()
			for _, t := range store.Snapshot().Tasks {
				if t.HasParent() {
					parents.Add(*t.ParentID)
				}
			}
			for id := range parents {
				store.ToggleExpand(id)
			}
			return nil
		}
	}

	for _, raw := range expand {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid task id %q", raw)
		}
		store.ToggleExpand(id)
	}
	return nil
}

func printBoard(w io.Writer, today string, sections []grouping.Section) {
	fmt.Fprintf(w, "Today: %s\n", today)
	for _, section := range sections {
		fmt.Fprintf(w, "\n%s (%d)\n", strings.ToUpper(string(section.Bucket)), section.Count)
		for _, row := range section.Rows {
			marker := " "
			if row.HasChildren {
				marker = "+"
				if row.Expanded {
					marker = "-"
				}
			}

			line := fmt.Sprintf("%s%s %s #%d %s [%s]",
				strings.Repeat("  ", row.Level), marker, checkbox(&row.Task), row.Task.ID, row.Task.Title, row.Task.Quadrant)
			if day, ok := row.Task.ScheduledDay(); ok {
				line += " " + day
			} else if start, end, ok := row.Task.Range(); ok {
				line += " " + start + ".." + end
			}
			if row.HasChildren {
				line += fmt.Sprintf(" (%d/%d)", row.CompletedCount, row.TotalCount)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func checkbox(t *entities.Task) string {
	switch t.Status {
	case entities.TaskStatusDone:
		return "[x]"
	case entities.TaskStatusAbandoned:
		return "[-]"
	default:
		return "[ ]"
	}
}
