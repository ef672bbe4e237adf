package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func actionCmd() *cobra.Command {
	act := &cobra.Command{Use: "action", Short: "Queue, claim and complete node actions"}
	act.AddCommand(actionSubmitCmd())
	act.AddCommand(actionPendingCmd())
	act.AddCommand(actionClaimCmd())
	act.AddCommand(actionCompleteCmd())
	act.AddCommand(actionShowCmd())
	act.AddCommand(actionRequeueCmd())
	return act
}

func actionSubmitCmd() *cobra.Command {
	var node, orch, typ, payload string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue an action for a node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				id, err := e.SubmitAction(ctx, node, orch, typ, json.RawMessage(payload))
				if err != nil {
					return err
				}
				return printID("action", id)
			})
		},
	}
	cmd.Flags().StringVar(&node, "node", "", "target node id")
	cmd.Flags().StringVar(&orch, "orch", "", "orchestration id")
	cmd.Flags().StringVar(&typ, "type", "", "action type")
	cmd.Flags().StringVar(&payload, "payload", "", "JSON payload (default {})")
	_ = cmd.MarkFlagRequired("node")
	_ = cmd.MarkFlagRequired("orch")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func actionPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending <node-id>",
		Short: "List a node's pending actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.PendingActions(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, a := range items {
					rows = append(rows, table.Row{a.ID, a.Type, a.OrchestrationID, string(a.Payload), a.CreatedAt})
				}
				return printTable(items, table.Row{"ID", "Type", "Orchestration", "Payload", "Created"}, rows)
			})
		},
	}
}

func actionClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <action-id>",
		Short: "Claim a pending action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res, err := e.ClaimAction(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				if !res.Success {
					return fmt.Errorf("claim %s: %s", args[0], res.Reason)
				}
				fmt.Printf("claimed %s\n", args[0])
				return nil
			})
		},
	}
}

func actionCompleteCmd() *cobra.Command {
	var result string
	var failed bool
	cmd := &cobra.Command{
		Use:   "complete <action-id>",
		Short: "Record an action's outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage
			if result != "" {
				raw = json.RawMessage(result)
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.CompleteAction(ctx, args[0], raw, !failed); err != nil {
					return err
				}
				status := domain.ActionCompleted
				if failed {
					status = domain.ActionFailed
				}
				fmt.Printf("action %s %s\n", args[0], status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&result, "result", "", "JSON result")
	cmd.Flags().BoolVar(&failed, "failed", false, "mark the action failed")
	return cmd
}

func actionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <action-id>",
		Short: "Show an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				a, err := e.GetAction(ctx, args[0])
				if err != nil {
					return err
				}
				return printRecord(a,
					"ID", a.ID,
					"Node", a.NodeID,
					"Orchestration", a.OrchestrationID,
					"Type", a.Type,
					"Status", a.Status,
					"Payload", string(a.Payload),
					"Result", string(a.Result),
					"Created", a.CreatedAt,
					"Claimed", deref(a.ClaimedAt),
					"Completed", deref(a.CompletedAt),
				)
			})
		},
	}
}

func actionRequeueCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "requeue",
		Short: "Return claims older than --older-than to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				age := olderThan
				if age == 0 {
					age = e.Config.Actions.ClaimTTL
				}
				n, err := e.RequeueStaleClaims(ctx, age)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]int64{"count": n})
				}
				fmt.Printf("requeued %d actions\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "claim age (default actions.claim_ttl)")
	return cmd
}
