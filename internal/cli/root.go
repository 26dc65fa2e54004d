package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/cli/app"
	"github.com/pantryhub/pantry/internal/cli/commands"
	"github.com/pantryhub/pantry/internal/cli/ui"
	"github.com/pantryhub/pantry/internal/config"
)

var version = "dev" // Will be set during build

type rootFlags struct {
	configPath string
	apiURL     string
	logLevel   string
}

// NewRootCmd builds the command tree. The App is created in the persistent
// pre-run, so configuration errors surface only for commands that need it.
func NewRootCmd(opts app.Options) *cobra.Command {
	if opts.UI == nil {
		opts.UI = ui.Std()
	}
	if opts.Version == "" {
		opts.Version = version
	}

	var flags rootFlags
	rt := &commands.Runtime{}

	rootCmd := &cobra.Command{
		Use:   "pantry",
		Short: "Pantry - household inventory and recipes",
		Long: `Pantry CLI - keep track of what is in your fridge, freezer and pantry.

Manage ingredients and shopping lists, find recipes you can cook with what
you have, and read the latest news. Admins can manage users and content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if commands.IsStandalone(cmd) || cmd.Name() == "help" {
				return nil
			}

			cfg, err := config.Load(flags.configPath, func(c *config.Config) {
				if flags.apiURL != "" {
					c.API.BaseURL = flags.apiURL
				}
				if flags.logLevel != "" {
					c.Logging.Level = flags.logLevel
				}
			})
			if err != nil {
				return fmt.Errorf("failed to load config: %w\nSet PANTRY_API_URL or pass --api-url", err)
			}

			a, err := app.New(cfg, opts)
			if err != nil {
				return err
			}
			rt.App = a

			// Guard the view before it runs
			if path, ok := commands.RouteOf(cmd); ok {
				return a.Enter(cmd.Context(), path)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/pantry/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Backend base URL (overrides PANTRY_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.SetIn(opts.UI.In)
	rootCmd.SetOut(opts.UI.Out)
	rootCmd.SetErr(opts.UI.Err)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{commands.AnnotationStandalone: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pantry version %s\n", opts.Version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(rt))
	rootCmd.AddCommand(commands.NewRegisterCmd(rt))
	rootCmd.AddCommand(commands.NewLogoutCmd(rt))
	rootCmd.AddCommand(commands.NewWhoamiCmd(rt))
	rootCmd.AddCommand(commands.NewStatusCmd(rt))
	rootCmd.AddCommand(commands.NewOpenCmd(rt))
	rootCmd.AddCommand(commands.NewRoutesCmd(rt))
	rootCmd.AddCommand(commands.NewDashboardCmd(rt))
	rootCmd.AddCommand(commands.NewIngredientsCmd(rt))
	rootCmd.AddCommand(commands.NewShoppingCmd(rt))
	rootCmd.AddCommand(commands.NewRecipesCmd(rt))
	rootCmd.AddCommand(commands.NewNewsCmd(rt))
	rootCmd.AddCommand(commands.NewPageCmd(rt))
	rootCmd.AddCommand(commands.NewAdminCmd(rt))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(app.Options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
