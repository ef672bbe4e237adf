package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectCreateCmd())
	prj.AddCommand(projectResolveCmd())
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectDeleteCmd())
	return prj
}

func printProject(p domain.Project) error {
	return printRecord(p, "ID", p.ID, "Name", p.Name, "Repo", p.RepoPath, "Created", p.CreatedAt)
}

func projectCreateCmd() *cobra.Command {
	var name, repoPath string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.CreateProject(ctx, name, repoPath)
				if err != nil {
					return err
				}
				return printProject(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&repoPath, "repo", "", "repository path")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}

func projectResolveCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "resolve [repo-path]",
		Short: "Find or create the project for a repository (default: current directory)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := ""
			if len(args) == 1 {
				repoPath = args[0]
			} else {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				repoPath = wd
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.FindOrCreateByRepoPath(ctx, name, repoPath)
				if err != nil {
					return err
				}
				return printProject(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name used when the project is created (default: directory name)")
	return cmd
}

func projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListProjects(ctx)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, p := range items {
					rows = append(rows, table.Row{p.ID, p.Name, p.RepoPath, p.CreatedAt})
				}
				return printTable(items, table.Row{"ID", "Name", "Repo", "Created"}, rows)
			})
		},
	}
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				return printProject(p)
			})
		},
	}
}

func projectDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project with its orchestrations and work items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to delete %s without --force", args[0])
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res, err := e.DeleteProject(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				if !res.Deleted {
					fmt.Printf("project %s not found, nothing deleted\n", args[0])
					return nil
				}
				return printRecord(res,
					"Project", res.DeletedProjectID,
					"Orchestrations", res.DeletedOrchestrations,
					"Designs", res.DeletedDesigns,
					"Tickets", res.DeletedTickets,
					"Specs", res.DeletedSpecs,
					"Comments", res.DeletedComments,
				)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion")
	return cmd
}
