package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"foreman/internal/engine"
)

func terminalCmd() *cobra.Command {
	tm := &cobra.Command{Use: "terminal", Short: "Attachable terminal targets"}
	tm.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List agent panes and ad-hoc sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListTerminalTargets(ctx)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, t := range items {
					ctxLabel := ""
					if t.Context != nil {
						ctxLabel = t.Context.Type + " " + t.Context.ID
					}
					rows = append(rows, table.Row{t.Type, t.Label, t.SessionName, t.PaneID, t.CLI, ctxLabel})
				}
				return printTable(items, table.Row{"Type", "Label", "Session", "Pane", "CLI", "Context"}, rows)
			})
		},
	})
	tm.AddCommand(terminalOpenCmd())
	tm.AddCommand(&cobra.Command{
		Use:   "close <session-id>",
		Short: "Close an ad-hoc session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.CloseTerminalSession(ctx, args[0]); err != nil {
					return err
				}
				return printID("session closed", args[0])
			})
		},
	})
	return tm
}

func terminalOpenCmd() *cobra.Command {
	var in engine.SessionInput
	cmd := &cobra.Command{
		Use:   "open <session-name>",
		Short: "Register (or launch) an ad-hoc session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.SessionName = args[0]
			in.ContextType = optionalString(cmd, "context-type")
			in.ContextID = optionalString(cmd, "context-id")
			in.ContextSummary = optionalString(cmd, "context-summary")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.OpenTerminalSession(ctx, in)
				if err != nil {
					return err
				}
				return printRecord(s, "ID", s.ID, "Label", s.Label, "Session", s.SessionName, "Pane", s.PaneID, "Status", s.Status)
			})
		},
	}
	cmd.Flags().StringVar(&in.Label, "label", "", "display label (default session name)")
	cmd.Flags().StringVar(&in.PaneID, "pane", "", "existing pane id; omit to launch through tmux")
	cmd.Flags().StringVar(&in.CLI, "cli", "", "agent CLI running in the session")
	cmd.Flags().StringVar(&in.StartDir, "dir", "", "start directory for launched sessions")
	cmd.Flags().String("context-type", "", "context type (e.g. ticket)")
	cmd.Flags().String("context-id", "", "context id")
	cmd.Flags().String("context-summary", "", "context summary")
	_ = cmd.MarkFlagRequired("cli")
	return cmd
}

func teamCmd() *cobra.Command {
	tc := &cobra.Command{Use: "team", Short: "Agent teams of an orchestration"}
	tc.AddCommand(&cobra.Command{
		Use:   "create <orchestration-id> <name>",
		Short: "Create a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.CreateTeam(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printID("team", t.ID)
			})
		},
	})
	tc.AddCommand(teamAddMemberCmd())
	return tc
}

func teamAddMemberCmd() *cobra.Command {
	var in engine.MemberInput
	cmd := &cobra.Command{
		Use:   "add-member <team-id> <name>",
		Short: "Add an agent pane to a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[1]
			in.Model = optionalString(cmd, "model")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				m, err := e.AddTeamMember(ctx, args[0], in)
				if err != nil {
					return err
				}
				return printID("member", m.ID)
			})
		},
	}
	cmd.Flags().StringVar(&in.Role, "role", "", "member role")
	cmd.Flags().StringVar(&in.CLI, "cli", "", "agent CLI")
	cmd.Flags().StringVar(&in.SessionName, "session", "", "terminal session name")
	cmd.Flags().StringVar(&in.PaneID, "pane", "", "terminal pane id")
	cmd.Flags().String("model", "", "model name")
	_ = cmd.MarkFlagRequired("cli")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("pane")
	return cmd
}
