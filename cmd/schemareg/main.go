// Command schemareg checks a schema registry for breaking changes and
// deprecation policy violations.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version can be overridden at build time via -ldflags.
var Version = "0.1.0-dev"

// newRootCmd builds the command tree. Persistent flags are shared by every check.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemareg",
		Short: "Schema registry compatibility and deprecation checks",
		Long: `schemareg compares the schemas, topic mappings, venue registry and OpenAPI
documents of a registry against a base git reference, and enforces the
deprecation and version overlap policies.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newCompatCmd())
	rootCmd.AddCommand(newDeprecationsCmd())
	rootCmd.AddCommand(newOverlapCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newExamplesCmd())
	rootCmd.AddCommand(newChangelogCmd())
	rootCmd.AddCommand(newTagCmd())

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to schemareg.toml (default: search upwards from the working directory)")
	flags.String("base-ref", "", "git reference to compare against (overrides policy.base_ref)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.String("format", "text", "output format (text|json)")
	flags.Bool("quiet", false, "omit notes and the summary block")
	flags.String("log-level", "warn", "log level written to stderr (debug|info|warn|error)")
	flags.Int("jobs", 0, "max concurrent git reads (0=default)")

	return rootCmd
}

// main exits with status 1 when a check fails or the run cannot complete.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "schemareg: %v\n", err)
		}
		os.Exit(1)
	}
}
