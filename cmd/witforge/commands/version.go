package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/witforge/witforge/version"
)

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("witforge %s\n", info.Version)
		fmt.Printf("  commit:   %s\n", info.CommitHash)
		fmt.Printf("  built:    %s\n", info.BuildTime)
		fmt.Printf("  go:       %s\n", info.GoVersion)
		fmt.Printf("  platform: %s\n", info.Platform)
	},
}
