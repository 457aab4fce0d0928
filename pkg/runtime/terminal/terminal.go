package terminal

import (
	"context"
	"io"
	"os"

	"github.com/finsight/dashis/pkg/runtime/terminal/commands"
	"github.com/finsight/dashis/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter commands.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// Plain switches from the table layout to plain text output.
	Plain bool
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{}
	if opts.Plain {
		cli.reporter = NewReporter(opts.Output)
	} else {
		cli.reporter = export.NewReporter(opts.Output)
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the CLI with a caller-provided context, so a
// context-embedded logger reaches every command.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashis",
		Short: "Financial dashboard data pipeline",
	}

	cmd.AddCommand(commands.NewProcessCmd(cli.reporter))
	cmd.AddCommand(commands.NewAnalyzeCmd(cli.reporter))
	cmd.AddCommand(commands.NewSimulateCmd(cli.reporter))
	cmd.AddCommand(commands.NewScenariosCmd(cli.reporter))
	cmd.AddCommand(commands.NewQualityCmd())
	cmd.AddCommand(commands.NewProfilesCmd())

	return cmd
}
