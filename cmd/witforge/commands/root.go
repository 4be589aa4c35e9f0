package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
)

// RootCmd is the witforge command tree root.
var RootCmd = &cobra.Command{
	Use:   "witforge",
	Short: "witforge - WIT interface and caller stub generation for process workspaces",
	Long: `witforge - WIT interface and caller stub generation.

witforge scans a workspace for process crates, derives a WIT interface
from each crate's annotated impl block, and regenerates the caller
surfaces on top of those interfaces: an async Rust RPC crate and a typed
TypeScript fetch client.

Available commands:
  generate - Run the full generation pipeline
  version  - Show build information

Examples:
  witforge generate                  # Generate everything in the current workspace
  witforge generate --dir ~/app      # Explicit workspace root
  witforge generate --watch          # Regenerate on source changes`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(viper.GetBool("json"), viper.GetBool("verbose")); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug output")
	RootCmd.PersistentFlags().Bool("json", false, "Emit structured JSON logs for tooling")
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("json", RootCmd.PersistentFlags().Lookup("json"))

	// Every flag is also reachable as WITFORGE_<FLAG> for CI pipelines.
	viper.SetEnvPrefix("witforge")
	viper.AutomaticEnv()

	RootCmd.AddCommand(GenerateCmd)
	RootCmd.AddCommand(VersionCmd)
}
