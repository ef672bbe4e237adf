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

func supervisorCmd() *cobra.Command {
	sv := &cobra.Command{Use: "supervisor", Short: "Supervisor state snapshots"}
	var node, updatedAt string
	save := &cobra.Command{
		Use:   "save <feature> <state-json>",
		Short: "Store the snapshot for a feature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				id, err := e.UpsertSupervisorState(ctx, node, args[0], json.RawMessage(args[1]), updatedAt)
				if err != nil {
					return err
				}
				return printID("supervisor state", id)
			})
		},
	}
	save.Flags().StringVar(&node, "node", "", "node id")
	save.Flags().StringVar(&updatedAt, "updated-at", "", "snapshot time (RFC 3339, default now)")

	show := &cobra.Command{
		Use:   "show <feature>",
		Short: "Show the latest snapshot for a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.GetSupervisorState(ctx, node, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(s)
				}
				fmt.Printf("%s (node %s, %s)\n%s\n", s.FeatureName, s.NodeID, s.UpdatedAt, s.State)
				return nil
			})
		},
	}
	show.Flags().StringVar(&node, "node", "", "requesting node id")
	sv.AddCommand(save, show)
	return sv
}

func eventCmd() *cobra.Command {
	ev := &cobra.Command{Use: "event", Short: "Orchestration timeline"}
	ev.AddCommand(eventRecordCmd())
	ev.AddCommand(eventListCmd())
	ev.AddCommand(eventTimelineCmd())
	return ev
}

func eventRecordCmd() *cobra.Command {
	var in engine.EventInput
	cmd := &cobra.Command{
		Use:   "record <orchestration-id>",
		Short: "Append an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.PhaseNumber = optionalString(cmd, "phase")
			in.Detail = optionalString(cmd, "detail")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if in.RecordedAt == "" {
					in.RecordedAt = domain.FormatTime(time.Now())
				}
				id, err := e.RecordEvent(ctx, args[0], in)
				if err != nil {
					return err
				}
				return printID("event", id)
			})
		},
	}
	cmd.Flags().StringVar(&in.EventType, "type", "", "event type")
	cmd.Flags().StringVar(&in.Source, "source", "cli", "event source")
	cmd.Flags().StringVar(&in.Summary, "summary", "", "one-line summary")
	cmd.Flags().StringVar(&in.RecordedAt, "at", "", "event time (RFC 3339, default now)")
	cmd.Flags().String("phase", "", "phase number")
	cmd.Flags().String("detail", "", "free-form detail")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func eventListCmd() *cobra.Command {
	var since string
	var limit int
	cmd := &cobra.Command{
		Use:   "list <orchestration-id>",
		Short: "List events oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListEvents(ctx, args[0], since, limit)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, ev := range items {
					rows = append(rows, table.Row{ev.RecordedAt, ev.EventType, ev.Source, deref(ev.PhaseNumber), ev.Summary})
				}
				return printTable(items, table.Row{"At", "Type", "Source", "Phase", "Summary"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only events after this time")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default timeline.page_size)")
	return cmd
}

func eventTimelineCmd() *cobra.Command {
	var since string
	var limit int
	cmd := &cobra.Command{
		Use:   "timeline <orchestration-id>",
		Short: "Merged view of events, task changes, checks and gates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Timeline(ctx, args[0], since, limit)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, t := range items {
					rows = append(rows, table.Row{t.At, t.Kind, t.Source, deref(t.PhaseNumber), t.Summary})
				}
				return printTable(items, table.Row{"At", "Kind", "Source", "Phase", "Summary"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only entries after this time")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default timeline.page_size)")
	return cmd
}
