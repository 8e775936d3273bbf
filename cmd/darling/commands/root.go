// Package commands implements the CLI commands for darling.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/darling/internal/app"
	"go.trai.ch/darling/internal/build"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/engine/reconciler"
)

// CLI represents the command line interface for darling.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	json    bool
	verbose bool
}

// Application represents the application logic interface.
type Application interface {
	ConfigureOutput(opts app.OutputOptions)
	ManifestPath() string
	Install(ctx context.Context, backend, name string, props domain.Properties) (domain.Entry, error)
	Remove(ctx context.Context, backend, name string) (bool, error)
	Rebuild(ctx context.Context, backends []string) ([]reconciler.RebuildReport, error)
	ImportInstalled(ctx context.Context, backend string) ([]domain.Entry, error)
	Status(ctx context.Context, backends []string) ([]domain.Drift, error)
	Backends() []domain.BackendDescriptor
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "darling",
		Short:         "Declarative package management across package managers",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			c.app.ConfigureOutput(app.OutputOptions{JSON: c.json, Verbose: c.verbose})
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	// -v belongs to --verbose, so --version is registered without a shorthand.
	rootCmd.Flags().Bool("version", false, "Print the application version")
	rootCmd.InitDefaultVersionFlag()

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().BoolVar(&c.json, "json", false, "Print results and logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Show debug output and executed commands")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newRemoveCmd())
	rootCmd.AddCommand(c.newRebuildCmd())
	rootCmd.AddCommand(c.newImportCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newBackendsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
