package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage a phase's execution tasks"}
	task.AddCommand(taskSeedCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskUpdateCmd())
	task.AddCommand(taskReadyCmd())
	return task
}

func taskRows(items []domain.ExecutionTask) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, t := range items {
		deps := make([]string, len(t.DependsOn))
		for i, d := range t.DependsOn {
			deps[i] = strconv.Itoa(d)
		}
		rows = append(rows, table.Row{t.PhaseNumber, t.TaskNumber, t.Subject, t.Status, strings.Join(deps, ","), t.Revision})
	}
	return rows
}

var taskHeader = table.Row{"Phase", "Task", "Subject", "Status", "Depends on", "Rev"}

func readSeeds(path string) ([]domain.TaskSeed, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var seeds []domain.TaskSeed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, fmt.Errorf("decode task seeds: %w", err)
	}
	return seeds, nil
}

func taskSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed <orchestration-id> <phase>",
		Short: "Seed a phase from a JSON array of tasks (once per phase)",
		Example: `  echo '[{"task_number":1,"subject":"schema"},{"task_number":2,"subject":"api","depends_on":[1]}]' \
    | fm task seed $ORCH 1 --file -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := readSeeds(file)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				ids, err := e.SeedExecutionTasks(ctx, args[0], args[1], seeds)
				if engine.IsAlreadySeeded(err) {
					return fmt.Errorf("phase %s is already seeded; use 'fm task update' to edit tasks", args[1])
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"ids": ids})
				}
				fmt.Printf("seeded %d tasks\n", len(ids))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with task seeds, - for stdin")
	return cmd
}

func taskListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <orchestration-id>",
		Short: "List execution tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase := optionalString(cmd, "phase")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListExecutionTasks(ctx, args[0], phase)
				if err != nil {
					return err
				}
				return printTable(items, taskHeader, taskRows(items))
			})
		},
	}
	cmd.Flags().String("phase", "", "only this phase")
	return cmd
}

func parseTaskArgs(args []string) (string, string, int, error) {
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return "", "", 0, fmt.Errorf("task number %q: %w", args[2], err)
	}
	return args[0], args[1], n, nil
}

func printTask(t domain.ExecutionTask) error {
	return printRecord(t,
		"ID", t.ID,
		"Phase", t.PhaseNumber,
		"Task", t.TaskNumber,
		"Subject", t.Subject,
		"Status", t.Status,
		"Depends on", t.DependsOn,
		"Revision", t.Revision,
		"Model", deref(t.Model),
		"Updated", t.UpdatedAt,
	)
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <orchestration-id> <phase> <task>",
		Short: "Show an execution task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, phase, n, err := parseTaskArgs(args)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.GetExecutionTask(ctx, orch, phase, n)
				if err != nil {
					return err
				}
				return printTask(t)
			})
		},
	}
}

func taskUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <orchestration-id> <phase> <task>",
		Short: "Edit a task or move its status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, phase, n, err := parseTaskArgs(args)
			if err != nil {
				return err
			}
			u := engine.TaskUpdate{
				Subject:     optionalString(cmd, "subject"),
				Description: optionalString(cmd, "description"),
				Model:       optionalString(cmd, "model"),
			}
			if s := optionalString(cmd, "status"); s != nil {
				st := domain.TaskStatus(*s)
				u.Status = &st
			}
			if cmd.Flags().Changed("expect-revision") {
				rev, _ := cmd.Flags().GetInt("expect-revision")
				u.ExpectedRevision = &rev
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.UpdateExecutionTask(ctx, orch, phase, n, u)
				if err != nil {
					return err
				}
				return printTask(t)
			})
		},
	}
	cmd.Flags().String("subject", "", "new subject")
	cmd.Flags().String("description", "", "new description")
	cmd.Flags().String("model", "", "model assigned to the task")
	cmd.Flags().String("status", "", "pending, in_progress, completed or blocked")
	cmd.Flags().Int("expect-revision", 0, "fail unless the stored revision matches")
	return cmd
}

func taskReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready <orchestration-id> <phase>",
		Short: "Pending tasks whose dependencies are completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ReadyExecutionTasks(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printTable(items, taskHeader, taskRows(items))
			})
		},
	}
}
