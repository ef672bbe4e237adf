package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func reviewCmd() *cobra.Command {
	rv := &cobra.Command{Use: "review", Short: "Open and close reviews"}
	rv.AddCommand(reviewCreateCmd())
	rv.AddCommand(reviewCompleteCmd())
	rv.AddCommand(reviewListCmd())
	rv.AddCommand(reviewShowCmd())
	return rv
}

func reviewCreateCmd() *cobra.Command {
	var orch, reviewer string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a review",
		RunE: func(cmd *cobra.Command, args []string) error {
			phase := optionalString(cmd, "phase")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				id, err := e.CreateReview(ctx, orch, phase, reviewer)
				if err != nil {
					return err
				}
				return printID("review", id)
			})
		},
	}
	cmd.Flags().StringVar(&orch, "orch", "", "orchestration id")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer agent")
	cmd.Flags().String("phase", "", "phase under review")
	_ = cmd.MarkFlagRequired("orch")
	_ = cmd.MarkFlagRequired("reviewer")
	return cmd
}

func reviewCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <review-id> <approved|changes_requested|superseded>",
		Short: "Close an open review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.CompleteReview(ctx, args[0], domain.ReviewState(args[1])); err != nil {
					return err
				}
				return printID("review closed", args[0])
			})
		},
	}
}

func reviewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <orchestration-id>",
		Short: "List reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListReviews(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, r := range items {
					rows = append(rows, table.Row{r.ID, deref(r.PhaseNumber), r.ReviewerAgent, r.State, r.StartedAt})
				}
				return printTable(items, table.Row{"ID", "Phase", "Reviewer", "State", "Started"}, rows)
			})
		},
	}
}

func reviewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <review-id>",
		Short: "Show a review and its checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				r, err := e.GetReview(ctx, args[0])
				if err != nil {
					return err
				}
				if err := printRecord(r, "ID", r.ID, "Orchestration", r.OrchestrationID, "Phase", deref(r.PhaseNumber),
					"Reviewer", r.ReviewerAgent, "State", r.State, "Started", r.StartedAt, "Completed", deref(r.CompletedAt)); err != nil {
					return err
				}
				return listChecks(ctx, e, r.ID)
			})
		},
	}
}

func checkCmd() *cobra.Command {
	ck := &cobra.Command{Use: "check", Short: "Run review checks"}
	ck.AddCommand(checkStartCmd())
	ck.AddCommand(checkCompleteCmd())
	ck.AddCommand(&cobra.Command{
		Use:   "list <review-id>",
		Short: "List a review's checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return listChecks(ctx, e, args[0])
			})
		},
	})
	return ck
}

func listChecks(ctx context.Context, e engine.Engine, reviewID string) error {
	items, err := e.ListChecks(ctx, reviewID)
	if err != nil {
		return err
	}
	rows := make([]table.Row, 0, len(items))
	for _, c := range items {
		rows = append(rows, table.Row{c.Name, c.Kind, c.Status, deref(c.DurationMs), deref(c.Comment)})
	}
	return printTable(items, table.Row{"Check", "Kind", "Status", "Duration ms", "Comment"}, rows)
}

func checkStartCmd() *cobra.Command {
	var orch, kind string
	cmd := &cobra.Command{
		Use:   "start <review-id> <name>",
		Short: "Start a named check",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := optionalString(cmd, "command")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				id, err := e.StartCheck(ctx, args[0], orch, args[1], domain.CheckKind(kind), command)
				if err != nil {
					return err
				}
				return printID("check", id)
			})
		},
	}
	cmd.Flags().StringVar(&orch, "orch", "", "orchestration id (default: the review's)")
	cmd.Flags().StringVar(&kind, "kind", string(domain.CheckCLI), "cli or project")
	cmd.Flags().String("command", "", "command being run")
	return cmd
}

func checkCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <review-id> <name> <passed|failed>",
		Short: "Finish a running check",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			comment := optionalString(cmd, "comment")
			output := optionalString(cmd, "output")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := e.CompleteCheck(ctx, args[0], args[1], domain.CheckStatus(args[2]), comment, output)
				if err != nil {
					return err
				}
				return printRecord(c, "Check", c.Name, "Status", c.Status, "Duration ms", deref(c.DurationMs))
			})
		},
	}
}

func gateCmd() *cobra.Command {
	gt := &cobra.Command{Use: "gate", Short: "Plan, review and finalize gates"}
	gt.AddCommand(gateSetCmd())
	gt.AddCommand(gateListCmd())
	return gt
}

func gateSetCmd() *cobra.Command {
	var owner, summary string
	cmd := &cobra.Command{
		Use:   "set <orchestration-id> <plan|review|finalize> <pending|blocked|approved>",
		Short: "Record a gate decision",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			decidedBy := optionalString(cmd, "decided-by")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				id, err := e.UpsertGate(ctx, args[0], domain.GateID(args[1]), domain.GateStatus(args[2]), owner, decidedBy, summary)
				if err != nil {
					return err
				}
				return printID("gate", id)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "gate owner")
	cmd.Flags().StringVar(&summary, "summary", "", "decision summary")
	cmd.Flags().String("decided-by", "", "who decided")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func gateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <orchestration-id>",
		Short: "List gates in pipeline order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListGates(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, g := range items {
					rows = append(rows, table.Row{g.GateID, g.Status, g.Owner, deref(g.DecidedBy), deref(g.DecidedAt), g.Summary})
				}
				return printTable(items, table.Row{"Gate", "Status", "Owner", "Decided by", "Decided at", "Summary"}, rows)
			})
		},
	}
}
