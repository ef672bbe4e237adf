package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func orchCmd() *cobra.Command {
	orch := &cobra.Command{Use: "orch", Aliases: []string{"orchestration"}, Short: "Manage orchestrations"}
	orch.AddCommand(orchCreateCmd())
	orch.AddCommand(orchListCmd())
	orch.AddCommand(orchShowCmd())
	orch.AddCommand(orchStatusCmd())
	return orch
}

func printOrchestration(o domain.Orchestration) error {
	return printRecord(o,
		"ID", o.ID,
		"Project", o.ProjectID,
		"Feature", o.FeatureName,
		"Status", o.Status,
		"Started", o.StartedAt,
		"Updated", o.UpdatedAt,
		"Completed", deref(o.CompletedAt),
	)
}

func orchCreateCmd() *cobra.Command {
	var projectID, feature string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start an orchestration for a feature",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				o, err := e.CreateOrchestration(ctx, projectID, feature)
				if err != nil {
					return err
				}
				return printOrchestration(o)
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringVar(&feature, "feature", "", "feature name")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("feature")
	return cmd
}

func orchListCmd() *cobra.Command {
	var projectID, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orchestrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListOrchestrations(ctx, projectID, domain.OrchestrationStatus(status))
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, o := range items {
					rows = append(rows, table.Row{o.ID, o.FeatureName, o.Status, o.UpdatedAt})
				}
				return printTable(items, table.Row{"ID", "Feature", "Status", "Updated"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "filter by project id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

func orchShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <orchestration-id>",
		Short: "Show an orchestration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				o, err := e.GetOrchestration(ctx, args[0])
				if err != nil {
					return err
				}
				return printOrchestration(o)
			})
		},
	}
}

func orchStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <orchestration-id> <status>",
		Short: "Set orchestration status (planning, executing, reviewing, complete, blocked)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				o, err := e.SetOrchestrationStatus(ctx, args[0], domain.OrchestrationStatus(args[1]))
				if err != nil {
					return err
				}
				return printOrchestration(o)
			})
		},
	}
}

func phaseCmd() *cobra.Command {
	ph := &cobra.Command{Use: "phase", Short: "Track orchestration phases"}
	ph.AddCommand(phaseSetCmd())
	ph.AddCommand(phaseListCmd())
	return ph
}

func phaseSetCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "set <orchestration-id> <phase>",
		Short: "Create or patch a phase; unset flags keep their stored value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := engine.PhasePatch{
				PlanPath:      optionalString(cmd, "plan"),
				GitRange:      optionalString(cmd, "git-range"),
				PlanningMins:  optionalFloat(cmd, "planning-mins"),
				ExecutionMins: optionalFloat(cmd, "execution-mins"),
				ReviewMins:    optionalFloat(cmd, "review-mins"),
				StartedAt:     optionalString(cmd, "started-at"),
				CompletedAt:   optionalString(cmd, "completed-at"),
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				id, err := e.UpsertPhase(ctx, args[0], args[1], domain.PhaseStatus(status), patch)
				if err != nil {
					return err
				}
				return printID("phase", id)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "phase status")
	cmd.Flags().String("plan", "", "plan path")
	cmd.Flags().String("git-range", "", "git range")
	cmd.Flags().Float64("planning-mins", 0, "planning minutes")
	cmd.Flags().Float64("execution-mins", 0, "execution minutes")
	cmd.Flags().Float64("review-mins", 0, "review minutes")
	cmd.Flags().String("started-at", "", "start time (RFC 3339)")
	cmd.Flags().String("completed-at", "", "completion time (RFC 3339)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func phaseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <orchestration-id>",
		Short: "List phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListPhases(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, p := range items {
					rows = append(rows, table.Row{p.PhaseNumber, p.Status, deref(p.PlanPath), deref(p.GitRange), p.UpdatedAt})
				}
				return printTable(items, table.Row{"Phase", "Status", "Plan", "Git range", "Updated"}, rows)
			})
		},
	}
}
