package cli

import "github.com/spf13/cobra"

// RegisterRoutes attaches every command group defined in the cli package to
// the provided root command. Each module exposes its own root command (e.g.
// PoolCmd) which aggregates all micro routes such as ~fill and ~stats.
// Calling RegisterRoutes(root) makes all commands available from the main
// binary so they can be invoked like `brightchain pool stats`.
func RegisterRoutes(root *cobra.Command) {
	root.AddCommand(
		PoolCmd,
		CBLCmd,
		RoundtripCmd,
	)
}
