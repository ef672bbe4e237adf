package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"foreman/internal/app"
	"foreman/internal/config"
	"foreman/internal/engine"
)

var rootCmd = &cobra.Command{
	Use:   "fm",
	Short: "Foreman coordination CLI",
	Long: `Foreman is the shared state store for multi-agent development orchestrations.
- Project: a repository, identified by its path.
- Orchestration: one feature being built, split into numbered phases.
- Execution tasks: the dependency graph of a phase, seeded once.
- Actions: commands queued for a node; each is claimed by exactly one worker.
- Reviews, checks and gates: the approval pipeline (plan, review, finalize).
- Timeline: every event, task change, check and gate decision in time order.
- Terminals: agent panes and ad-hoc sessions you can attach to.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/foreman.yml)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(orchCmd())
	rootCmd.AddCommand(phaseCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(actionCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(gateCmd())
	rootCmd.AddCommand(supervisorCmd())
	rootCmd.AddCommand(eventCmd())
	rootCmd.AddCommand(terminalCmd())
	rootCmd.AddCommand(teamCmd())
	rootCmd.AddCommand(designCmd())
	rootCmd.AddCommand(ticketCmd())
	rootCmd.AddCommand(specCmd())
	rootCmd.AddCommand(commentCmd())
	rootCmd.AddCommand(commitCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

func runtimeOptions() app.Options {
	return app.Options{
		Workspace:  viper.GetString("workspace"),
		ConfigPath: viper.GetString("config"),
		LogOutput:  os.Stderr,
	}
}

// withEngine opens the workspace for the duration of fn.
func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) (err error) {
	rt, err := app.Open(ctx, runtimeOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.Background()); err == nil {
			err = cerr
		}
	}()
	return fn(ctx, rt.Engine)
}

// optionalString returns the flag value only when the user set it.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}
