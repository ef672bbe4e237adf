package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func designCmd() *cobra.Command {
	var body string
	dc := &cobra.Command{Use: "design", Short: "Design documents"}
	create := &cobra.Command{
		Use:   "create <project-id> <title>",
		Short: "Create a design",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				d, err := e.CreateDesign(ctx, args[0], args[1], body)
				if err != nil {
					return err
				}
				return printID("design", d.ID)
			})
		},
	}
	create.Flags().StringVar(&body, "body", "", "design body")
	dc.AddCommand(create)
	return dc
}

func ticketCmd() *cobra.Command {
	var desc string
	tc := &cobra.Command{Use: "ticket", Short: "Project tickets"}
	create := &cobra.Command{
		Use:   "create <project-id> <title>",
		Short: "Create a ticket with the next project number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.CreateTicket(ctx, args[0], args[1], desc)
				if err != nil {
					return err
				}
				return printRecord(t, "ID", t.ID, "Number", t.Number, "Title", t.Title)
			})
		},
	}
	create.Flags().StringVar(&desc, "description", "", "ticket description")
	tc.AddCommand(create)
	return tc
}

func specCmd() *cobra.Command {
	sc := &cobra.Command{Use: "spec", Short: "Specs and their designs"}
	sc.AddCommand(&cobra.Command{
		Use:   "create <project-id> <title>",
		Short: "Create a spec",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.CreateSpec(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printID("spec", s.ID)
			})
		},
	})
	sc.AddCommand(&cobra.Command{
		Use:   "link <spec-id> <design-id>",
		Short: "Link a design to a spec",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				created, err := e.LinkSpecDesign(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !created {
					fmt.Println("already linked")
					return nil
				}
				fmt.Println("linked")
				return nil
			})
		},
	})
	sc.AddCommand(&cobra.Command{
		Use:   "links <spec-id>",
		Short: "List designs linked to a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListSpecDesigns(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, l := range items {
					rows = append(rows, table.Row{l.DesignID, l.CreatedAt})
				}
				return printTable(items, table.Row{"Design", "Linked"}, rows)
			})
		},
	})
	return sc
}

func commentCmd() *cobra.Command {
	cc := &cobra.Command{Use: "comment", Short: "Comments on designs and tickets"}
	cc.AddCommand(commentAddCmd())
	cc.AddCommand(&cobra.Command{
		Use:   "list <design|ticket> <target-id>",
		Short: "List comments on a design or ticket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListComments(ctx, domain.TargetKind(args[0]), args[1])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, c := range items {
					rows = append(rows, table.Row{c.CreatedAt, c.AuthorType, c.AuthorName, c.Body})
				}
				return printTable(items, table.Row{"At", "Author type", "Author", "Body"}, rows)
			})
		},
	})
	return cc
}

func commentAddCmd() *cobra.Command {
	var authorType, author, body string
	cmd := &cobra.Command{
		Use:   "add <project-id> <design|ticket> <target-id>",
		Short: "Comment on a design or ticket",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := e.AddComment(ctx, args[0], engine.CommentInput{
					TargetType: domain.TargetKind(args[1]),
					TargetID:   args[2],
					AuthorType: domain.AuthorType(authorType),
					AuthorName: author,
					Body:       body,
				})
				if err != nil {
					return err
				}
				return printID("comment", c.ID)
			})
		},
	}
	cmd.Flags().StringVar(&authorType, "author-type", string(domain.AuthorHuman), "human or agent")
	cmd.Flags().StringVar(&author, "author", "", "author name")
	cmd.Flags().StringVar(&body, "body", "", "comment text")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func commitCmd() *cobra.Command {
	cc := &cobra.Command{Use: "commit", Short: "Commits produced by an orchestration"}
	var in engine.CommitInput
	record := &cobra.Command{
		Use:   "record <orchestration-id> <sha>",
		Short: "Record a commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.SHA = args[1]
			in.PhaseNumber = optionalString(cmd, "phase")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, err := e.RecordCommit(ctx, args[0], in)
				if err != nil {
					return err
				}
				return printID("commit", c.ID)
			})
		},
	}
	record.Flags().StringVar(&in.Message, "message", "", "commit message")
	record.Flags().StringVar(&in.Author, "author", "", "commit author")
	record.Flags().StringVar(&in.CommittedAt, "at", "", "commit time (RFC 3339, default now)")
	record.Flags().String("phase", "", "phase number")
	cc.AddCommand(record)
	cc.AddCommand(&cobra.Command{
		Use:   "list <orchestration-id>",
		Short: "List recorded commits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListCommits(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, c := range items {
					rows = append(rows, table.Row{c.SHA, deref(c.PhaseNumber), c.Author, c.CommittedAt, c.Message})
				}
				return printTable(items, table.Row{"SHA", "Phase", "Author", "At", "Message"}, rows)
			})
		},
	})
	return cc
}

func planCmd() *cobra.Command {
	pc := &cobra.Command{Use: "plan", Short: "Plan documents of an orchestration"}
	var file string
	save := &cobra.Command{
		Use:   "save <orchestration-id> <path>",
		Short: "Store a plan document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase := optionalString(cmd, "phase")
			var content string
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				content = string(data)
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.SavePlan(ctx, args[0], phase, args[1], content)
				if err != nil {
					return err
				}
				return printID("plan", p.ID)
			})
		},
	}
	save.Flags().StringVarP(&file, "file", "f", "", "read plan content from file")
	save.Flags().String("phase", "", "phase number")
	pc.AddCommand(save)
	pc.AddCommand(&cobra.Command{
		Use:   "list <orchestration-id>",
		Short: "List stored plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListPlans(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, p := range items {
					rows = append(rows, table.Row{p.Path, deref(p.PhaseNumber), p.CreatedAt})
				}
				return printTable(items, table.Row{"Path", "Phase", "Created"}, rows)
			})
		},
	})
	return pc
}
